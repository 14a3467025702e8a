package handler

import (
	"context"

	advertapp "github.com/agriconnect/backend/internal/application/advert"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdvertHandler handles advertising campaign endpoints.
type AdvertHandler struct {
	BaseHandler
	campaignService *advertapp.CampaignService
}

// NewAdvertHandler creates a new AdvertHandler
func NewAdvertHandler(campaignService *advertapp.CampaignService) *AdvertHandler {
	return &AdvertHandler{campaignService: campaignService}
}

// Create drafts a campaign for the caller.
// POST /api/v1/adverts
func (h *AdvertHandler) Create(c *gin.Context) {
	advertiserID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req advertapp.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	campaign, err := h.campaignService.Create(c.Request.Context(), advertiserID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, campaign)
}

// SetCreative updates a draft campaign's creative content.
// PUT /api/v1/adverts/:id/creative
func (h *AdvertHandler) SetCreative(c *gin.Context) {
	advertiserID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	var req advertapp.SetCreativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	campaign, err := h.campaignService.SetCreative(c.Request.Context(), advertiserID, adID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, campaign)
}

// SetTargeting updates a draft campaign's audience targeting.
// PUT /api/v1/adverts/:id/targeting
func (h *AdvertHandler) SetTargeting(c *gin.Context) {
	advertiserID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	var req advertapp.SetTargetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	campaign, err := h.campaignService.SetTargeting(c.Request.Context(), advertiserID, adID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, campaign)
}

// SubmitForReview queues a draft campaign for moderation.
// POST /api/v1/adverts/:id/submit
func (h *AdvertHandler) SubmitForReview(c *gin.Context) {
	h.advertiserAction(c, h.campaignService.SubmitForReview)
}

// Pause suspends delivery of a running campaign.
// POST /api/v1/adverts/:id/pause
func (h *AdvertHandler) Pause(c *gin.Context) {
	h.advertiserAction(c, h.campaignService.Pause)
}

// Resume restarts delivery of a paused campaign.
// POST /api/v1/adverts/:id/resume
func (h *AdvertHandler) Resume(c *gin.Context) {
	h.advertiserAction(c, h.campaignService.Resume)
}

func (h *AdvertHandler) advertiserAction(c *gin.Context, fn func(ctx context.Context, advertiserID, adID uuid.UUID) (*advertapp.CampaignResponse, error)) {
	advertiserID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	campaign, err := fn(c.Request.Context(), advertiserID, adID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, campaign)
}

// Approve clears a campaign to run.
// POST /api/v1/adverts/:id/approve
func (h *AdvertHandler) Approve(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	campaign, err := h.campaignService.Approve(c.Request.Context(), adID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, campaign)
}

// Reject declines a campaign with a reason for the advertiser.
// POST /api/v1/adverts/:id/reject
func (h *AdvertHandler) Reject(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	var req advertapp.RejectCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	campaign, err := h.campaignService.Reject(c.Request.Context(), adID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, campaign)
}

// Get returns one of the caller's campaigns.
// GET /api/v1/adverts/:id
func (h *AdvertHandler) Get(c *gin.Context) {
	advertiserID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	campaign, err := h.campaignService.Get(c.Request.Context(), advertiserID, adID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, campaign)
}

// List returns the caller's campaigns.
// GET /api/v1/adverts
func (h *AdvertHandler) List(c *gin.Context) {
	advertiserID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	filter := shared.DefaultFilter()
	page, pageSize := parsePagination(c)
	filter.Page = page
	filter.PageSize = pageSize
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	campaigns, err := h.campaignService.List(c.Request.Context(), advertiserID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, campaigns)
}

// Performance returns daily delivery stats for a campaign.
// GET /api/v1/adverts/:id/performance
func (h *AdvertHandler) Performance(c *gin.Context) {
	advertiserID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	from, to, err := parseTimeRange(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stats, err := h.campaignService.Performance(c.Request.Context(), advertiserID, adID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
