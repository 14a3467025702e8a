package handler

import (
	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SMSProviderHandler handles SMS provider administration.
type SMSProviderHandler struct {
	BaseHandler
	providerService *commsapp.ProviderService
}

// NewSMSProviderHandler creates a new SMSProviderHandler
func NewSMSProviderHandler(providerService *commsapp.ProviderService) *SMSProviderHandler {
	return &SMSProviderHandler{providerService: providerService}
}

// Create registers an SMS provider.
// POST /api/v1/comms/providers
func (h *SMSProviderHandler) Create(c *gin.Context) {
	var req commsapp.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	provider, err := h.providerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, provider)
}

// Get returns a provider by ID.
// GET /api/v1/comms/providers/:id
func (h *SMSProviderHandler) Get(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid provider ID")
		return
	}

	provider, err := h.providerService.GetByID(c.Request.Context(), providerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, provider)
}

// List returns providers ordered by priority.
// GET /api/v1/comms/providers
func (h *SMSProviderHandler) List(c *gin.Context) {
	filter := shared.DefaultFilter()
	page, pageSize := parsePagination(c)
	filter.Page = page
	filter.PageSize = pageSize

	providers, err := h.providerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, providers)
}

// SetActive enables or disables a provider for routing.
// PATCH /api/v1/comms/providers/:id/active
func (h *SMSProviderHandler) SetActive(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid provider ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.providerService.SetActive(c.Request.Context(), providerID, req.Active); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Provider updated"})
}

// Delete removes a provider.
// DELETE /api/v1/comms/providers/:id
func (h *SMSProviderHandler) Delete(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid provider ID")
		return
	}

	if err := h.providerService.Delete(c.Request.Context(), providerID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
