package trade

import (
	"context"
	"fmt"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderCancelledHandler releases warehouse reservations when an order
// is cancelled. Orders cancelled straight from pending never held
// stock, so the handler checks the status history first.
type OrderCancelledHandler struct {
	reserver  StockReserver
	orderRepo trade.OrderRepository
	logger    *zap.Logger
}

// NewOrderCancelledHandler creates a new handler for order cancelled events
func NewOrderCancelledHandler(reserver StockReserver, orderRepo trade.OrderRepository, logger *zap.Logger) *OrderCancelledHandler {
	return &OrderCancelledHandler{
		reserver:  reserver,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderCancelledHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderCancelled}
}

// Handle releases reserved stock for a cancelled order
func (h *OrderCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelled, ok := event.(*trade.OrderCancelledEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderCancelled, event.EventType())
	}

	order, err := h.orderRepo.FindByID(ctx, cancelled.OrderID)
	if err != nil {
		return err
	}
	if !wasConfirmed(order) {
		h.logger.Debug("Cancelled order never held stock, nothing to release",
			zap.String("order_id", cancelled.OrderID.String()))
		return nil
	}

	h.logger.Info("Releasing reservations for cancelled order",
		zap.String("order_id", cancelled.OrderID.String()),
		zap.String("order_number", cancelled.OrderNumber),
		zap.String("reason", cancelled.Reason))

	for _, item := range cancelled.Items {
		if err := h.reserver.ReleaseForOrder(ctx, cancelled.OrderID, item.ProductID, item.Quantity); err != nil {
			h.logger.Error("Failed to release reservation",
				zap.String("order_id", cancelled.OrderID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
			return err
		}
	}

	return nil
}

// wasConfirmed reports whether the order ever passed through confirmed,
// which is when reservations are taken
func wasConfirmed(order *trade.Order) bool {
	for _, change := range order.StatusHistory {
		if change.To == trade.OrderStatusConfirmed {
			return true
		}
	}
	return false
}
