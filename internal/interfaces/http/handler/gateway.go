package handler

import (
	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GatewayHandler handles payment gateway administration.
type GatewayHandler struct {
	BaseHandler
	gatewayService *paymentapp.GatewayService
}

// NewGatewayHandler creates a new GatewayHandler
func NewGatewayHandler(gatewayService *paymentapp.GatewayService) *GatewayHandler {
	return &GatewayHandler{gatewayService: gatewayService}
}

// Create registers a gateway configuration.
// POST /api/v1/payments/gateways
func (h *GatewayHandler) Create(c *gin.Context) {
	var req paymentapp.CreateGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	gateway, err := h.gatewayService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, gateway)
}

// ListActive returns gateways selectable at checkout.
// GET /api/v1/payments/gateways
func (h *GatewayHandler) ListActive(c *gin.Context) {
	gateways, err := h.gatewayService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gateways)
}

// SetFeeRequest updates a gateway's fee percentage.
type SetFeeRequest struct {
	FeePercent decimal.Decimal `json:"fee_percent" binding:"required"`
}

// SetFee updates the transaction fee charged by a gateway.
// PUT /api/v1/payments/gateways/:id/fee
func (h *GatewayHandler) SetFee(c *gin.Context) {
	gatewayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid gateway ID")
		return
	}

	var req SetFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	gateway, err := h.gatewayService.SetFee(c.Request.Context(), gatewayID, req.FeePercent)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gateway)
}

// SetActive enables or disables a gateway at checkout.
// PATCH /api/v1/payments/gateways/:id/active
func (h *GatewayHandler) SetActive(c *gin.Context) {
	gatewayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid gateway ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	gateway, err := h.gatewayService.SetActive(c.Request.Context(), gatewayID, req.Active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gateway)
}

// Delete removes a gateway configuration.
// DELETE /api/v1/payments/gateways/:id
func (h *GatewayHandler) Delete(c *gin.Context) {
	gatewayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid gateway ID")
		return
	}

	if err := h.gatewayService.Delete(c.Request.Context(), gatewayID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
