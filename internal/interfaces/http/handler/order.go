package handler

import (
	"context"

	tradeapp "github.com/agriconnect/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles marketplace order endpoints.
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create places an order against one seller's listings.
// POST /api/v1/trade/orders
func (h *OrderHandler) Create(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req tradeapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), buyerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// Get returns an order visible to the caller.
// GET /api/v1/trade/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), orderID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByNumber looks an order up by its human-readable number.
// GET /api/v1/trade/orders/number/:number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	order, err := h.orderService.GetByNumber(c.Request.Context(), c.Param("number"), actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// ListPurchases returns the caller's orders as a buyer.
// GET /api/v1/trade/orders/purchases
func (h *OrderHandler) ListPurchases(c *gin.Context) {
	buyerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	filter, ok := h.bindOrderFilter(c)
	if !ok {
		return
	}

	orders, total, err := h.orderService.ListByBuyer(c.Request.Context(), buyerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// ListSales returns the caller's orders as a seller.
// GET /api/v1/trade/orders/sales
func (h *OrderHandler) ListSales(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	filter, ok := h.bindOrderFilter(c)
	if !ok {
		return
	}

	orders, total, err := h.orderService.ListBySeller(c.Request.Context(), sellerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Confirm accepts a pending order (seller).
// POST /api/v1/trade/orders/:id/confirm
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.orderService.Confirm)
}

// StartProcessing begins preparing a paid order (seller).
// POST /api/v1/trade/orders/:id/process
func (h *OrderHandler) StartProcessing(c *gin.Context) {
	h.transition(c, h.orderService.StartProcessing)
}

// Ship marks an order shipped with a tracking number (seller).
// POST /api/v1/trade/orders/:id/ship
func (h *OrderHandler) Ship(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req tradeapp.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Ship(c.Request.Context(), orderID, sellerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// MarkDelivered records delivery of a shipped order.
// POST /api/v1/trade/orders/:id/deliver
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	h.transition(c, h.orderService.MarkDelivered)
}

// Complete confirms receipt and releases escrow (buyer).
// POST /api/v1/trade/orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.orderService.Complete)
}

// Cancel cancels an order that has not shipped.
// POST /api/v1/trade/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req tradeapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Refund refunds a paid order (admin).
// POST /api/v1/trade/orders/:id/refund
func (h *OrderHandler) Refund(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req tradeapp.RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Refund(c.Request.Context(), orderID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

func (h *OrderHandler) bindOrderFilter(c *gin.Context) (tradeapp.OrderListFilter, bool) {
	var filter tradeapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return filter, false
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}
	return filter, true
}

// transition runs a simple actor-scoped status change identified by the path ID.
func (h *OrderHandler) transition(c *gin.Context, fn func(ctx context.Context, orderID, actorID uuid.UUID) (*tradeapp.OrderResponse, error)) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := fn(c.Request.Context(), orderID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}
