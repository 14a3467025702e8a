package trade

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingMethod is a priced delivery option.
// Cost = BaseCost + CostPerKg * weight.
type ShippingMethod struct {
	shared.BaseAggregateRoot
	Name      string               `gorm:"type:varchar(100);not null"`
	Carrier   string               `gorm:"type:varchar(100)"`
	BaseCost  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	CostPerKg decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Currency  valueobject.Currency `gorm:"type:varchar(3);not null;default:'GHS'"`
	MinDays   int                  `gorm:"not null;default:1"`
	MaxDays   int                  `gorm:"not null;default:7"`
	Active    bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

// NewShippingMethod creates a new shipping method
func NewShippingMethod(name, carrier string, baseCost, costPerKg decimal.Decimal, minDays, maxDays int) (*ShippingMethod, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Shipping method name cannot be empty")
	}
	if baseCost.IsNegative() || costPerKg.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Shipping costs cannot be negative")
	}
	if minDays < 0 || maxDays < minDays {
		return nil, shared.NewDomainError("INVALID_DAYS", "Delivery window must satisfy 0 <= min <= max")
	}

	return &ShippingMethod{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Carrier:           carrier,
		BaseCost:          baseCost,
		CostPerKg:         costPerKg,
		Currency:          valueobject.DefaultCurrency,
		MinDays:           minDays,
		MaxDays:           maxDays,
		Active:            true,
	}, nil
}

// QuoteCost returns the shipping cost for the given weight in kilograms
func (m *ShippingMethod) QuoteCost(weightKg decimal.Decimal) (valueobject.Money, error) {
	if weightKg.IsNegative() {
		return valueobject.Money{}, shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	cost := m.BaseCost.Add(m.CostPerKg.Mul(weightKg))
	return valueobject.NewMoney(cost, m.Currency)
}

// Deactivate hides the method from checkout
func (m *ShippingMethod) Deactivate() {
	m.Active = false
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// Activate re-enables the method
func (m *ShippingMethod) Activate() {
	m.Active = true
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// ShippingMethodRepository defines the interface for shipping method persistence
type ShippingMethodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ShippingMethod, error)
	FindActive(ctx context.Context) ([]ShippingMethod, error)
	Save(ctx context.Context, method *ShippingMethod) error
	Delete(ctx context.Context, id uuid.UUID) error
}
