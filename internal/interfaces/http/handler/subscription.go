package handler

import (
	subscriptionapp "github.com/agriconnect/backend/internal/application/subscription"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/subscription"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubscriptionHandler handles the caller's subscription lifecycle.
type SubscriptionHandler struct {
	BaseHandler
	subscriptionService *subscriptionapp.SubscriptionService
	usageService        *subscriptionapp.UsageService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService *subscriptionapp.SubscriptionService, usageService *subscriptionapp.UsageService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		usageService:        usageService,
	}
}

// Subscribe puts the caller on a plan.
// POST /api/v1/subscriptions
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req subscriptionapp.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, sub)
}

// Cancel stops the caller's subscription at period end.
// POST /api/v1/subscriptions/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req subscriptionapp.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sub, err := h.subscriptionService.Cancel(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sub)
}

// Current returns the caller's active subscription.
// GET /api/v1/subscriptions/current
func (h *SubscriptionHandler) Current(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	sub, err := h.subscriptionService.Current(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sub)
}

// History returns the caller's past subscriptions.
// GET /api/v1/subscriptions/history
func (h *SubscriptionHandler) History(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	filter := shared.DefaultFilter()
	page, pageSize := parsePagination(c)
	filter.Page = page
	filter.PageSize = pageSize

	subs, err := h.subscriptionService.History(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subs)
}

// ListInvoices returns the invoices of one of the caller's subscriptions.
// GET /api/v1/subscriptions/:id/invoices
func (h *SubscriptionHandler) ListInvoices(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	subscriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid subscription ID")
		return
	}

	invoices, err := h.subscriptionService.ListInvoices(c.Request.Context(), userID, subscriptionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoices)
}

// Usage returns how much of a metered quota the caller has left.
// GET /api/v1/subscriptions/usage
func (h *SubscriptionHandler) Usage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	kind := subscription.UsageKind(c.DefaultQuery("kind", string(subscription.UsageProductListings)))
	remaining, err := h.usageService.Remaining(c.Request.Context(), userID, kind)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"kind": kind, "remaining": remaining})
}
