package handler

import (
	advertapp "github.com/agriconnect/backend/internal/application/advert"
	"github.com/agriconnect/backend/internal/domain/advert"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlacementHandler handles ad slot administration and public ad serving.
type PlacementHandler struct {
	BaseHandler
	placementService *advertapp.PlacementService
	servingService   *advertapp.ServingService
}

// NewPlacementHandler creates a new PlacementHandler
func NewPlacementHandler(placementService *advertapp.PlacementService, servingService *advertapp.ServingService) *PlacementHandler {
	return &PlacementHandler{
		placementService: placementService,
		servingService:   servingService,
	}
}

// Create registers an ad placement slot.
// POST /api/v1/adverts/placements
func (h *PlacementHandler) Create(c *gin.Context) {
	var req advertapp.CreatePlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	placement, err := h.placementService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, placement)
}

// List returns all placements.
// GET /api/v1/adverts/placements
func (h *PlacementHandler) List(c *gin.Context) {
	placements, err := h.placementService.List(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, placements)
}

// SetActive opens or closes a placement for delivery.
// PATCH /api/v1/adverts/placements/:id/active
func (h *PlacementHandler) SetActive(c *gin.Context) {
	placementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid placement ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	placement, err := h.placementService.SetActive(c.Request.Context(), placementID, req.Active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, placement)
}

// Serve returns the ads to show at a placement location. Public so
// unauthenticated pages can fill their slots.
// GET /api/v1/adverts/serve
func (h *PlacementHandler) Serve(c *gin.Context) {
	location := advert.PlacementLocation(c.Query("location"))
	if !location.IsValid() {
		h.BadRequest(c, "Invalid placement location")
		return
	}

	ads, err := h.servingService.Serve(c.Request.Context(), location, c.Query("region"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ads)
}

// RecordImpression counts one ad view.
// POST /api/v1/adverts/:id/impressions
func (h *PlacementHandler) RecordImpression(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	if err := h.servingService.RecordImpression(c.Request.Context(), adID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RecordClick counts one ad click.
// POST /api/v1/adverts/:id/clicks
func (h *PlacementHandler) RecordClick(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	if err := h.servingService.RecordClick(c.Request.Context(), adID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
