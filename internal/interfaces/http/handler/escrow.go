package handler

import (
	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EscrowHandler handles escrow account endpoints.
type EscrowHandler struct {
	BaseHandler
	escrowService *paymentapp.EscrowService
}

// NewEscrowHandler creates a new EscrowHandler
func NewEscrowHandler(escrowService *paymentapp.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrowService: escrowService}
}

// GetByOrder returns the escrow account for an order the caller is
// party to.
// GET /api/v1/payments/orders/:id/escrow
func (h *EscrowHandler) GetByOrder(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	account, err := h.escrowService.GetByOrder(c.Request.Context(), orderID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// ReleaseMilestoneRequest names the milestone to pay out.
type ReleaseMilestoneRequest struct {
	Milestone string `json:"milestone" binding:"required,oneof=order_confirmed goods_shipped goods_delivered quality_confirmed"`
}

// ReleaseMilestone pays out one milestone's share to the seller.
// POST /api/v1/payments/orders/:id/escrow/release-milestone
func (h *EscrowHandler) ReleaseMilestone(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req ReleaseMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.escrowService.ReleaseMilestone(c.Request.Context(), orderID, payment.MilestoneType(req.Milestone))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// ReleaseAll pays out every remaining milestone at once.
// POST /api/v1/payments/orders/:id/escrow/release
func (h *EscrowHandler) ReleaseAll(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	account, err := h.escrowService.ReleaseAll(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}
