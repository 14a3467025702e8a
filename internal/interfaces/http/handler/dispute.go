package handler

import (
	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DisputeHandler handles order dispute endpoints.
type DisputeHandler struct {
	BaseHandler
	disputeService *paymentapp.DisputeService
}

// NewDisputeHandler creates a new DisputeHandler
func NewDisputeHandler(disputeService *paymentapp.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// Raise opens a dispute on one of the caller's orders.
// POST /api/v1/payments/orders/:id/disputes
func (h *DisputeHandler) Raise(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req paymentapp.RaiseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputeService.Raise(c.Request.Context(), buyerID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, dispute)
}

// StartReview moves a dispute into moderator review.
// POST /api/v1/payments/disputes/:id/review
func (h *DisputeHandler) StartReview(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	dispute, err := h.disputeService.StartReview(c.Request.Context(), disputeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dispute)
}

// Resolve settles a dispute, optionally refunding the buyer.
// POST /api/v1/payments/disputes/:id/resolve
func (h *DisputeHandler) Resolve(c *gin.Context) {
	moderatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	var req paymentapp.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputeService.Resolve(c.Request.Context(), moderatorID, disputeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dispute)
}

// Close archives a resolved dispute.
// POST /api/v1/payments/disputes/:id/close
func (h *DisputeHandler) Close(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	dispute, err := h.disputeService.Close(c.Request.Context(), disputeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dispute)
}

// Get returns a dispute by ID.
// GET /api/v1/payments/disputes/:id
func (h *DisputeHandler) Get(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	dispute, err := h.disputeService.Get(c.Request.Context(), disputeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dispute)
}

// ListByStatus returns disputes in a given status for moderation.
// GET /api/v1/payments/disputes
func (h *DisputeHandler) ListByStatus(c *gin.Context) {
	status := c.DefaultQuery("status", "open")

	filter := shared.DefaultFilter()
	page, pageSize := parsePagination(c)
	filter.Page = page
	filter.PageSize = pageSize

	disputes, err := h.disputeService.ListByStatus(c.Request.Context(), status, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, disputes)
}
