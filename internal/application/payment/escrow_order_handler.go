package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EscrowOrderHandler drives staged escrow releases off order lifecycle
// events. Orders paid outside escrow have no account, which is not an
// error here.
type EscrowOrderHandler struct {
	escrowService *EscrowService
	logger        *zap.Logger
}

// NewEscrowOrderHandler creates a handler bound to the escrow service
func NewEscrowOrderHandler(escrowService *EscrowService, logger *zap.Logger) *EscrowOrderHandler {
	return &EscrowOrderHandler{
		escrowService: escrowService,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler processes
func (h *EscrowOrderHandler) EventTypes() []string {
	return []string{
		trade.EventTypeOrderShipped,
		trade.EventTypeOrderDelivered,
		trade.EventTypeOrderCompleted,
	}
}

// Handle releases the milestone matching the order's progress
func (h *EscrowOrderHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderShippedEvent:
		return h.release(ctx, e.OrderID, e.OrderNumber, payment.MilestoneGoodsShipped, nil)
	case *trade.OrderDeliveredEvent:
		deliveredAt := time.Now()
		return h.release(ctx, e.OrderID, e.OrderNumber, payment.MilestoneGoodsDelivered, &deliveredAt)
	case *trade.OrderCompletedEvent:
		return h.release(ctx, e.OrderID, e.OrderNumber, payment.MilestoneQualityConfirmed, nil)
	default:
		return fmt.Errorf("unexpected event type: %T", event)
	}
}

func (h *EscrowOrderHandler) release(ctx context.Context, orderID uuid.UUID, orderNumber string, milestone payment.MilestoneType, deliveredAt *time.Time) error {
	if deliveredAt != nil {
		if err := h.escrowService.MarkDelivered(ctx, orderID, *deliveredAt); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				h.logger.Debug("No escrow account for order, skipping",
					zap.String("order_number", orderNumber))
				return nil
			}
			var domainErr *shared.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "INVALID_STATE" {
				return err
			}
		}
	}

	if _, err := h.escrowService.ReleaseMilestone(ctx, orderID, milestone); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Debug("No escrow account for order, skipping",
				zap.String("order_number", orderNumber))
			return nil
		}
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "ALREADY_RELEASED" {
			return nil
		}
		return err
	}

	h.logger.Info("Escrow milestone released for order",
		zap.String("order_number", orderNumber),
		zap.String("milestone", string(milestone)))
	return nil
}
