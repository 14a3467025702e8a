// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides marketplace business metrics.
// It tracks order creation, payment activity, SMS delivery and stock health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderCreatedTotal *Counter
	orderAmountTotal  *Counter
	paymentTotal      *Counter
	smsSentTotal      *Counter

	// Gauge metrics (point-in-time values)
	stockReservedQuantity *FloatGauge
	stockLowCount         *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	stockProvider StockMetricsProvider
}

// StockMetricsProvider provides warehouse stock data for periodic metrics
// collection. This interface allows the telemetry layer to query stock state
// without depending on the warehouse domain directly.
type StockMetricsProvider interface {
	// ReservedQuantityByWarehouse returns total reserved quantity per warehouse
	ReservedQuantityByWarehouse(ctx context.Context) (map[string]float64, error)

	// LowStockCount returns count of stock records below their alert threshold
	LowStockCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	StockProvider   StockMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	// Initialize counter metrics
	var err error

	// Order metrics
	bm.orderCreatedTotal, err = NewCounter(
		cfg.Meter,
		"agriconnect_order_created_total",
		"Total number of orders created",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"agriconnect_order_amount_total",
		"Total order amount in minor currency units (pesewas)",
		"{pesewas}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"agriconnect_payment_total",
		"Total number of payment transactions",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	// Messaging metrics
	bm.smsSentTotal, err = NewCounter(
		cfg.Meter,
		"agriconnect_sms_sent_total",
		"Total number of SMS messages handed to a provider",
		"{messages}",
	)
	if err != nil {
		return nil, err
	}

	// Stock gauge metrics
	bm.stockReservedQuantity, err = NewFloatGauge(
		cfg.Meter,
		"agriconnect_stock_reserved_quantity",
		"Current reserved stock quantity",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	bm.stockLowCount, err = NewGauge(
		cfg.Meter,
		"agriconnect_stock_low_count",
		"Number of stock records below their alert threshold",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderCreated records an order creation event.
// This should be called from the application layer when an order is created.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, orderType string) {
	bm.orderCreatedTotal.Inc(ctx,
		AttrOrderType.String(orderType),
	)
}

// RecordOrderAmount records the order amount.
// Amount should be in the smallest currency unit (pesewas).
func (bm *BusinessMetrics) RecordOrderAmount(ctx context.Context, orderType string, amountMinor int64) {
	bm.orderAmountTotal.Add(ctx, amountMinor,
		AttrOrderType.String(orderType),
	)
}

// RecordOrderWithAmount is a convenience method that records both order count and amount.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, orderType string, amount decimal.Decimal) {
	bm.RecordOrderCreated(ctx, orderType)

	// Convert to pesewas (multiply by 100)
	amountMinor := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOrderAmount(ctx, orderType, amountMinor)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// PaymentStatus represents the outcome of a payment for metrics labeling.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// RecordPayment records a payment transaction.
// This should be called when a gateway webhook is processed.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, gateway, paymentMethod string, status PaymentStatus) {
	bm.paymentTotal.Inc(ctx,
		AttrPaymentGateway.String(gateway),
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentStatus.String(string(status)),
	)
}

// =============================================================================
// Messaging Metrics
// =============================================================================

// RecordSMSSent records an SMS handed to a provider.
func (bm *BusinessMetrics) RecordSMSSent(ctx context.Context, provider, messageType string) {
	bm.smsSentTotal.Inc(ctx,
		AttrSMSProvider.String(provider),
		AttrMessageType.String(messageType),
	)
}

// =============================================================================
// Stock Metrics
// =============================================================================

// RecordReservedQuantity records the current reserved stock quantity for a warehouse.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordReservedQuantity(ctx context.Context, warehouseID string, quantity float64) {
	bm.stockReservedQuantity.Record(ctx, quantity,
		AttrWarehouseID.String(warehouseID),
	)
}

// RecordLowStockCount records the number of stock records below their alert threshold.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.stockLowCount.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects stock metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectStockMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectStockMetrics(ctx)
		}
	}
}

// collectStockMetrics collects stock gauge metrics.
func (bm *BusinessMetrics) collectStockMetrics(ctx context.Context) {
	if bm.stockProvider == nil {
		bm.logger.Debug("No stock provider configured, skipping stock metrics collection")
		return
	}

	reservedByWarehouse, err := bm.stockProvider.ReservedQuantityByWarehouse(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get reserved stock quantities", zap.Error(err))
	} else {
		for warehouseID, quantity := range reservedByWarehouse {
			bm.RecordReservedQuantity(ctx, warehouseID, quantity)
		}
	}

	lowStockCount, err := bm.stockProvider.LowStockCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get low stock count", zap.Error(err))
	} else {
		bm.RecordLowStockCount(ctx, lowStockCount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrPaymentGateway = attribute.Key("gateway")
	AttrSMSProvider    = attribute.Key("sms_provider")
	AttrMessageType    = attribute.Key("message_type")
)
