package trade

import (
	"context"
	"fmt"

	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/identity"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockDeducter removes reserved warehouse stock at shipment
type StockDeducter interface {
	DeductForOrder(ctx context.Context, orderID, productID uuid.UUID, quantity decimal.Decimal) error
}

// OrderShippedHandler deducts reserved stock when an order leaves the
// warehouse and sends the buyer a delivery update
type OrderShippedHandler struct {
	deducter StockDeducter
	userRepo identity.UserRepository
	notifier OrderNotifier
	logger   *zap.Logger
}

// OrderShippedHandlerOption is a functional option for configuring the handler
type OrderShippedHandlerOption func(*OrderShippedHandler)

// WithDeliveryNotifier enables the delivery-update SMS to the buyer
func WithDeliveryNotifier(notifier OrderNotifier, userRepo identity.UserRepository) OrderShippedHandlerOption {
	return func(h *OrderShippedHandler) {
		h.notifier = notifier
		h.userRepo = userRepo
	}
}

// NewOrderShippedHandler creates a new handler for order shipped events
func NewOrderShippedHandler(deducter StockDeducter, logger *zap.Logger, opts ...OrderShippedHandlerOption) *OrderShippedHandler {
	h := &OrderShippedHandler{
		deducter: deducter,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *OrderShippedHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderShipped}
}

// Handle deducts reserved stock for every item of the shipped order
func (h *OrderShippedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	shipped, ok := event.(*trade.OrderShippedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderShipped, event.EventType())
	}

	h.logger.Info("Deducting stock for shipped order",
		zap.String("order_id", shipped.OrderID.String()),
		zap.String("order_number", shipped.OrderNumber),
		zap.String("tracking_number", shipped.TrackingNumber))

	for _, item := range shipped.Items {
		if err := h.deducter.DeductForOrder(ctx, shipped.OrderID, item.ProductID, item.Quantity); err != nil {
			h.logger.Error("Stock deduction failed",
				zap.String("order_id", shipped.OrderID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
			return err
		}
	}

	h.notifyBuyer(ctx, shipped)

	return nil
}

func (h *OrderShippedHandler) notifyBuyer(ctx context.Context, event *trade.OrderShippedEvent) {
	if h.notifier == nil || h.userRepo == nil {
		return
	}

	buyer, err := h.userRepo.FindByID(ctx, event.BuyerID)
	if err != nil {
		h.logger.Warn("Could not look up buyer for delivery SMS",
			zap.String("buyer_id", event.BuyerID.String()),
			zap.Error(err))
		return
	}

	if _, err := h.notifier.SendTemplated(ctx, commsapp.SendTemplatedRequest{
		Recipient: buyer.Phone,
		Type:      comms.MessageTypeDeliveryUpdate,
		Language:  buyer.Language,
		UserID:    &buyer.ID,
		Variables: map[string]string{
			"order_number":    event.OrderNumber,
			"tracking_number": event.TrackingNumber,
		},
	}); err != nil {
		h.logger.Warn("Delivery update SMS failed",
			zap.String("order_number", event.OrderNumber),
			zap.Error(err))
	}
}
