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
	"go.uber.org/zap"
)

// OrderPaidHandler notifies both parties by SMS when payment lands
type OrderPaidHandler struct {
	userRepo identity.UserRepository
	notifier OrderNotifier
	logger   *zap.Logger
}

// NewOrderPaidHandler creates a new handler for order paid events
func NewOrderPaidHandler(notifier OrderNotifier, userRepo identity.UserRepository, logger *zap.Logger) *OrderPaidHandler {
	return &OrderPaidHandler{
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderPaidHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPaid}
}

// Handle sends a payment notification to the buyer and the seller
func (h *OrderPaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*trade.OrderPaidEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderPaid, event.EventType())
	}

	h.logger.Info("Sending payment notifications",
		zap.String("order_id", paid.OrderID.String()),
		zap.String("order_number", paid.OrderNumber),
		zap.String("payment_status", string(paid.PaymentStatus)))

	h.notify(ctx, paid, paid.BuyerID)
	h.notify(ctx, paid, paid.SellerID)

	return nil
}

func (h *OrderPaidHandler) notify(ctx context.Context, event *trade.OrderPaidEvent, userID uuid.UUID) {
	user, err := h.userRepo.FindByID(ctx, userID)
	if err != nil {
		h.logger.Warn("Could not look up user for payment SMS",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return
	}

	if _, err := h.notifier.SendTemplated(ctx, commsapp.SendTemplatedRequest{
		Recipient: user.Phone,
		Type:      comms.MessageTypePaymentNotification,
		Language:  user.Language,
		UserID:    &user.ID,
		Variables: map[string]string{
			"order_number": event.OrderNumber,
			"total":        event.Total.StringFixed(2),
			"currency":     event.Currency,
		},
	}); err != nil {
		h.logger.Warn("Payment notification SMS failed",
			zap.String("order_number", event.OrderNumber),
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}
