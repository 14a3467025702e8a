package handler

import (
	tradeapp "github.com/agriconnect/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShippingHandler handles shipping method administration and lookup.
type ShippingHandler struct {
	BaseHandler
	shippingService *tradeapp.ShippingService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(shippingService *tradeapp.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService}
}

// Create registers a shipping method.
// POST /api/v1/trade/shipping-methods
func (h *ShippingHandler) Create(c *gin.Context) {
	var req tradeapp.CreateShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	method, err := h.shippingService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, method)
}

// ListActive returns methods currently offered at checkout.
// GET /api/v1/trade/shipping-methods
func (h *ShippingHandler) ListActive(c *gin.Context) {
	methods, err := h.shippingService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, methods)
}

// SetActiveRequest toggles a shipping method's availability.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive enables or disables a shipping method.
// PATCH /api/v1/trade/shipping-methods/:id/active
func (h *ShippingHandler) SetActive(c *gin.Context) {
	methodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipping method ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if _, err := h.shippingService.SetActive(c.Request.Context(), methodID, req.Active); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Shipping method updated"})
}

// Delete removes a shipping method.
// DELETE /api/v1/trade/shipping-methods/:id
func (h *ShippingHandler) Delete(c *gin.Context) {
	methodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipping method ID")
		return
	}

	if err := h.shippingService.Delete(c.Request.Context(), methodID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
