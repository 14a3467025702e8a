package telemetry

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/trade"
)

// EventRecorder turns domain events into business metric samples. It
// subscribes to the event bus like any other handler so the application
// layer stays free of telemetry concerns.
type EventRecorder struct {
	metrics *BusinessMetrics
}

// NewEventRecorder creates a new EventRecorder
func NewEventRecorder(metrics *BusinessMetrics) *EventRecorder {
	return &EventRecorder{metrics: metrics}
}

// EventTypes returns the event types this recorder samples
func (r *EventRecorder) EventTypes() []string {
	return []string{
		trade.EventTypeOrderCreated,
		trade.EventTypeOrderPaid,
		payment.EventTransactionSucceeded,
		payment.EventTransactionFailed,
	}
}

// Handle records the metric for a domain event. Unknown event shapes
// are ignored, a metrics handler must never fail the bus.
func (r *EventRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderCreatedEvent:
		r.metrics.RecordOrderCreated(ctx, string(e.OrderType))
	case *trade.OrderPaidEvent:
		amountMinor := e.Total.Mul(decimal.NewFromInt(100)).IntPart()
		r.metrics.RecordOrderAmount(ctx, string(e.OrderType), amountMinor)
	case *payment.TransactionSucceededEvent:
		r.metrics.RecordPayment(ctx, string(e.Gateway), string(e.Type), PaymentStatusSuccess)
	case *payment.TransactionFailedEvent:
		r.metrics.RecordPayment(ctx, string(e.Gateway), string(e.Type), PaymentStatusFailed)
	}
	return nil
}
