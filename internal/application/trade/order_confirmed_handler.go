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

// StockReserver holds and releases warehouse stock for orders
type StockReserver interface {
	ReserveForOrder(ctx context.Context, orderID, productID uuid.UUID, quantity decimal.Decimal) error
	ReleaseForOrder(ctx context.Context, orderID, productID uuid.UUID, quantity decimal.Decimal) error
}

// OrderNotifier sends templated messages to order parties
type OrderNotifier interface {
	SendTemplated(ctx context.Context, req commsapp.SendTemplatedRequest) (*commsapp.MessageResponse, error)
}

// OrderConfirmedHandler reserves warehouse stock when a seller accepts
// an order. If any line fails to reserve, previously reserved lines are
// released so a partially held order never reaches fulfilment.
type OrderConfirmedHandler struct {
	reserver StockReserver
	userRepo identity.UserRepository
	notifier OrderNotifier
	logger   *zap.Logger
}

// OrderConfirmedHandlerOption is a functional option for configuring the handler
type OrderConfirmedHandlerOption func(*OrderConfirmedHandler)

// WithConfirmationNotifier enables the order-confirmation SMS to the buyer
func WithConfirmationNotifier(notifier OrderNotifier, userRepo identity.UserRepository) OrderConfirmedHandlerOption {
	return func(h *OrderConfirmedHandler) {
		h.notifier = notifier
		h.userRepo = userRepo
	}
}

// NewOrderConfirmedHandler creates a new handler for order confirmed events
func NewOrderConfirmedHandler(reserver StockReserver, logger *zap.Logger, opts ...OrderConfirmedHandlerOption) *OrderConfirmedHandler {
	h := &OrderConfirmedHandler{
		reserver: reserver,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *OrderConfirmedHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderConfirmed}
}

// Handle reserves stock for every item of the confirmed order
func (h *OrderConfirmedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	confirmed, ok := event.(*trade.OrderConfirmedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderConfirmed, event.EventType())
	}

	h.logger.Info("Reserving stock for confirmed order",
		zap.String("order_id", confirmed.OrderID.String()),
		zap.String("order_number", confirmed.OrderNumber),
		zap.Int("items", len(confirmed.Items)))

	reserved := confirmed.Items[:0:0]
	for _, item := range confirmed.Items {
		if err := h.reserver.ReserveForOrder(ctx, confirmed.OrderID, item.ProductID, item.Quantity); err != nil {
			h.logger.Error("Stock reservation failed, rolling back",
				zap.String("order_id", confirmed.OrderID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
			for _, held := range reserved {
				if relErr := h.reserver.ReleaseForOrder(ctx, confirmed.OrderID, held.ProductID, held.Quantity); relErr != nil {
					h.logger.Error("Failed to release reservation during rollback",
						zap.String("product_id", held.ProductID.String()),
						zap.Error(relErr))
				}
			}
			return err
		}
		reserved = append(reserved, item)
	}

	h.notifyBuyer(ctx, confirmed)

	return nil
}

func (h *OrderConfirmedHandler) notifyBuyer(ctx context.Context, event *trade.OrderConfirmedEvent) {
	if h.notifier == nil || h.userRepo == nil {
		return
	}

	buyer, err := h.userRepo.FindByID(ctx, event.BuyerID)
	if err != nil {
		h.logger.Warn("Could not look up buyer for confirmation SMS",
			zap.String("buyer_id", event.BuyerID.String()),
			zap.Error(err))
		return
	}

	if _, err := h.notifier.SendTemplated(ctx, commsapp.SendTemplatedRequest{
		Recipient: buyer.Phone,
		Type:      comms.MessageTypeOrderConfirmation,
		Language:  buyer.Language,
		UserID:    &buyer.ID,
		Variables: map[string]string{
			"order_number": event.OrderNumber,
			"total":        event.Total.StringFixed(2),
			"currency":     event.Currency,
		},
	}); err != nil {
		h.logger.Warn("Order confirmation SMS failed",
			zap.String("order_number", event.OrderNumber),
			zap.Error(err))
	}
}
