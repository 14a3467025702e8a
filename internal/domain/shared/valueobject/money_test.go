package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoneyFromString("120.50", GHS)
	require.NoError(t, err)
	assert.Equal(t, GHS, m.Currency())
	assert.Equal(t, "120.5", m.Amount().String())

	_, err = NewMoney(decimal.NewFromInt(1), "")
	assert.Error(t, err)

	_, err = NewMoneyFromString("not-a-number", GHS)
	assert.Error(t, err)
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyGHSFromFloat(100)
	b := NewMoneyGHSFromFloat(25.5)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "125.5", sum.Amount().String())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "74.5", diff.Amount().String())

	product := a.Multiply(decimal.NewFromInt(3))
	assert.Equal(t, "300", product.Amount().String())

	pct := a.Percentage(decimal.NewFromInt(40))
	assert.Equal(t, "40", pct.Amount().String())
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	ghs := NewMoneyGHSFromFloat(10)
	ngn, err := NewMoneyFromFloat(10, NGN)
	require.NoError(t, err)

	_, err = ghs.Add(ngn)
	assert.Error(t, err)
	_, err = ghs.Subtract(ngn)
	assert.Error(t, err)
	_, err = ghs.LessThan(ngn)
	assert.Error(t, err)
}

func TestMoneyComparison(t *testing.T) {
	a := NewMoneyGHSFromFloat(10)
	b := NewMoneyGHSFromFloat(20)

	less, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, greater)

	assert.True(t, a.Equals(NewMoneyGHSFromFloat(10)))
	assert.False(t, a.Equals(b))
	assert.True(t, ZeroGHS().IsZero())
	assert.True(t, a.IsPositive())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyGHSFromFloat(99.99)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestIsSupportedCurrency(t *testing.T) {
	assert.True(t, IsSupportedCurrency(GHS))
	assert.True(t, IsSupportedCurrency(KES))
	assert.False(t, IsSupportedCurrency("XXX"))
}
