package telemetry_test

import (
	"context"
	"testing"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/agriconnect/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func newTestRecorder(t *testing.T) *telemetry.EventRecorder {
	t.Helper()
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: meter})
	require.NoError(t, err)
	return telemetry.NewEventRecorder(bm)
}

func TestEventRecorder_EventTypes(t *testing.T) {
	rec := newTestRecorder(t)

	types := rec.EventTypes()

	assert.Contains(t, types, trade.EventTypeOrderCreated)
	assert.Contains(t, types, trade.EventTypeOrderPaid)
	assert.Contains(t, types, payment.EventTransactionSucceeded)
	assert.Contains(t, types, payment.EventTransactionFailed)
}

func TestEventRecorder_Handle(t *testing.T) {
	rec := newTestRecorder(t)
	ctx := context.Background()

	// Should not panic or fail on any of the subscribed event shapes
	err := rec.Handle(ctx, &trade.OrderCreatedEvent{OrderType: trade.OrderTypeRegular})
	assert.NoError(t, err)

	err = rec.Handle(ctx, &trade.OrderPaidEvent{
		OrderType: trade.OrderTypeBulk,
		Total:     decimal.NewFromFloat(150.50),
	})
	assert.NoError(t, err)

	err = rec.Handle(ctx, &payment.TransactionSucceededEvent{
		Type:    payment.TransactionTypePayment,
		Gateway: payment.GatewayPaystack,
	})
	assert.NoError(t, err)

	err = rec.Handle(ctx, &payment.TransactionFailedEvent{
		Type:    payment.TransactionTypePayment,
		Gateway: payment.GatewayMTNMoMo,
	})
	assert.NoError(t, err)
}

func TestEventRecorder_Handle_UnknownEvent(t *testing.T) {
	rec := newTestRecorder(t)

	// Events outside the subscription set are ignored, never an error
	err := rec.Handle(context.Background(), &trade.OrderCompletedEvent{})
	assert.NoError(t, err)
}
