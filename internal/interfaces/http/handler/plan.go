package handler

import (
	subscriptionapp "github.com/agriconnect/backend/internal/application/subscription"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlanHandler handles subscription plan administration and lookup.
type PlanHandler struct {
	BaseHandler
	planService *subscriptionapp.PlanService
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planService *subscriptionapp.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// Create registers a subscription plan.
// POST /api/v1/subscriptions/plans
func (h *PlanHandler) Create(c *gin.Context) {
	var req subscriptionapp.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// ListActive returns purchasable plans, optionally for one audience.
// GET /api/v1/subscriptions/plans
func (h *PlanHandler) ListActive(c *gin.Context) {
	plans, err := h.planService.ListActive(c.Request.Context(), c.Query("audience"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plans)
}

// ListAll returns every plan including retired ones.
// GET /api/v1/subscriptions/plans/all
func (h *PlanHandler) ListAll(c *gin.Context) {
	filter := shared.DefaultFilter()
	page, pageSize := parsePagination(c)
	filter.Page = page
	filter.PageSize = pageSize

	plans, err := h.planService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plans)
}

// Get returns a plan by ID.
// GET /api/v1/subscriptions/plans/:id
func (h *PlanHandler) Get(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	plan, err := h.planService.Get(c.Request.Context(), planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// UpdatePricing changes what a plan costs going forward.
// PUT /api/v1/subscriptions/plans/:id/pricing
func (h *PlanHandler) UpdatePricing(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req subscriptionapp.UpdatePlanPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.UpdatePricing(c.Request.Context(), planID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// UpdateLimits changes a plan's metered quotas.
// PUT /api/v1/subscriptions/plans/:id/limits
func (h *PlanHandler) UpdateLimits(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req subscriptionapp.PlanLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.UpdateLimits(c.Request.Context(), planID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// SetActive opens or closes a plan for new subscriptions.
// PATCH /api/v1/subscriptions/plans/:id/active
func (h *PlanHandler) SetActive(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.SetActive(c.Request.Context(), planID, req.Active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// Delete removes a plan that never sold.
// DELETE /api/v1/subscriptions/plans/:id
func (h *PlanHandler) Delete(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	if err := h.planService.Delete(c.Request.Context(), planID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
