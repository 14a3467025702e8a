package trade

import (
	"strings"
	"testing"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder(OrderTypeRegular, uuid.New(), uuid.New(), valueobject.GHS)
	require.NoError(t, err)
	return order
}

func addTestItem(t *testing.T, o *Order, qty float64, price float64) *OrderItem {
	t.Helper()
	item, err := o.AddItem(uuid.New(), "Maize", "kg", decimal.NewFromFloat(qty), valueobject.NewMoneyGHSFromFloat(price))
	require.NoError(t, err)
	return item
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	n := NewOrderNumber(now)
	assert.True(t, strings.HasPrefix(n, "AG20260314150926"))
	assert.Len(t, n, 20)
}

func TestNewOrderValidation(t *testing.T) {
	buyer := uuid.New()

	_, err := NewOrder(OrderType("weird"), buyer, uuid.New(), valueobject.GHS)
	assert.Error(t, err)

	_, err = NewOrder(OrderTypeRegular, uuid.Nil, uuid.New(), valueobject.GHS)
	assert.Error(t, err)

	_, err = NewOrder(OrderTypeRegular, buyer, buyer, valueobject.GHS)
	assert.Error(t, err)

	_, err = NewOrder(OrderTypeRegular, buyer, uuid.New(), "XXX")
	assert.Error(t, err)
}

func TestOrderTotals(t *testing.T) {
	o := newTestOrder(t)
	addTestItem(t, o, 10, 5)   // 50
	addTestItem(t, o, 2, 12.5) // 25

	assert.Equal(t, "75", o.Subtotal.String())

	require.NoError(t, o.SetCharges(decimal.NewFromInt(5), decimal.NewFromInt(10), decimal.NewFromInt(8)))
	// total = 75 + 5 + 10 - 8
	assert.Equal(t, "82", o.TotalAmount.String())
}

func TestOrderItemRules(t *testing.T) {
	o := newTestOrder(t)
	item := addTestItem(t, o, 10, 5)

	// same product twice is rejected
	_, err := o.AddItem(item.ProductID, "Maize", "kg", decimal.NewFromInt(1), valueobject.NewMoneyGHSFromFloat(5))
	assert.Error(t, err)

	// currency mismatch is rejected
	kes, err := valueobject.NewMoneyFromFloat(5, valueobject.KES)
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), "Beans", "kg", decimal.NewFromInt(1), kes)
	assert.Error(t, err)

	require.NoError(t, o.UpdateItemQuantity(item.ID, decimal.NewFromInt(4)))
	assert.Equal(t, "20", o.Subtotal.String())

	require.NoError(t, o.RemoveItem(item.ID))
	assert.Empty(t, o.Items)
}

func TestOrderLifecycle(t *testing.T) {
	o := newTestOrder(t)
	addTestItem(t, o, 10, 5)

	require.NoError(t, o.Confirm(nil))
	require.NoError(t, o.MarkPaid(false, nil))
	require.NoError(t, o.StartProcessing(nil))
	require.NoError(t, o.Ship("TRK-123", nil))
	require.NoError(t, o.MarkDelivered(nil))
	require.NoError(t, o.Complete(nil))

	assert.Equal(t, OrderStatusCompleted, o.Status)
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)

	// every transition is in the history
	assert.Len(t, o.StatusHistory, 6)
	assert.Equal(t, OrderStatusPending, o.StatusHistory[0].From)
	assert.Equal(t, OrderStatusCompleted, o.StatusHistory[5].To)
}

func TestOrderInvalidTransitions(t *testing.T) {
	o := newTestOrder(t)
	addTestItem(t, o, 10, 5)

	// cannot ship or pay a pending order
	assert.Error(t, o.Ship("TRK", nil))
	assert.Error(t, o.MarkPaid(false, nil))

	// cannot confirm an empty order
	empty := newTestOrder(t)
	assert.Error(t, empty.Confirm(nil))
}

func TestOrderCancelOnlyBeforeShipment(t *testing.T) {
	o := newTestOrder(t)
	addTestItem(t, o, 10, 5)
	require.NoError(t, o.Confirm(nil))
	require.NoError(t, o.MarkPaid(false, nil))

	assert.True(t, o.IsCancellable())
	require.NoError(t, o.StartProcessing(nil))
	require.NoError(t, o.Ship("TRK-9", nil))

	assert.False(t, o.IsCancellable())
	assert.Error(t, o.Cancel("changed my mind", nil))
}

func TestOrderRefundOnlyAfterPayment(t *testing.T) {
	o := newTestOrder(t)
	addTestItem(t, o, 10, 5)
	require.NoError(t, o.Confirm(nil))

	// unpaid order cannot be refunded
	assert.Error(t, o.Refund("quality issue", nil))

	require.NoError(t, o.MarkPaid(false, nil))
	require.NoError(t, o.Refund("quality issue", nil))
	assert.Equal(t, OrderStatusRefunded, o.Status)
	assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)

	// terminal
	assert.Error(t, o.Cancel("x", nil))
}

func TestOrderEscrowFlow(t *testing.T) {
	o := newTestOrder(t)
	addTestItem(t, o, 10, 5)
	require.NoError(t, o.Confirm(nil))
	require.NoError(t, o.MarkPaid(true, nil))
	assert.Equal(t, PaymentStatusEscrow, o.PaymentStatus)

	require.NoError(t, o.MarkDisputed())
	assert.Equal(t, PaymentStatusDisputed, o.PaymentStatus)

	// disputed funds cannot be released
	assert.Error(t, o.ReleaseEscrow())
}

func TestOrderTotalWeightKg(t *testing.T) {
	o := newTestOrder(t)
	addTestItem(t, o, 10, 5) // 10 kg
	_, err := o.AddItem(uuid.New(), "Cassava", "tons", decimal.NewFromFloat(0.5), valueobject.NewMoneyGHSFromFloat(800))
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), "Plantain", "bunches", decimal.NewFromInt(3), valueobject.NewMoneyGHSFromFloat(30))
	require.NoError(t, err)

	// 10 kg + 500 kg, bunches ignored
	assert.Equal(t, "510", o.TotalWeightKg().String())
}

func TestOrderChargesValidation(t *testing.T) {
	o := newTestOrder(t)
	addTestItem(t, o, 2, 10) // subtotal 20

	err := o.SetCharges(decimal.Zero, decimal.Zero, decimal.NewFromInt(25))
	require.Error(t, err)
	domainErr := &shared.DomainError{}
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DISCOUNT", domainErr.Code)
}

func TestShippingMethodQuote(t *testing.T) {
	m, err := NewShippingMethod("Road Freight", "GH Logistics", decimal.NewFromInt(20), decimal.NewFromFloat(0.5), 2, 5)
	require.NoError(t, err)

	cost, err := m.QuoteCost(decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "70", cost.Amount().String())

	_, err = m.QuoteCost(decimal.NewFromInt(-1))
	assert.Error(t, err)

	_, err = NewShippingMethod("", "", decimal.Zero, decimal.Zero, 1, 3)
	assert.Error(t, err)
	_, err = NewShippingMethod("X", "", decimal.Zero, decimal.Zero, 5, 3)
	assert.Error(t, err)
}
