package payment

import (
	"context"
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GatewayCode identifies a payment gateway integration
type GatewayCode string

const (
	GatewayPaystack    GatewayCode = "paystack"
	GatewayFlutterwave GatewayCode = "flutterwave"
	GatewayMTNMoMo     GatewayCode = "mtn_momo"
	GatewayStripe      GatewayCode = "stripe"
)

// IsValid checks if the gateway code is valid
func (c GatewayCode) IsValid() bool {
	switch c {
	case GatewayPaystack, GatewayFlutterwave, GatewayMTNMoMo, GatewayStripe:
		return true
	}
	return false
}

// PaymentMethod is how the buyer pays
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentGateway is a configured gateway with its fee schedule
type PaymentGateway struct {
	shared.BaseAggregateRoot
	Code          GatewayCode     `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(100);not null"`
	Currencies    string          `gorm:"type:varchar(255);not null"` // comma-separated ISO codes
	Methods       string          `gorm:"type:varchar(255);not null"` // comma-separated methods
	FeePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Active        bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentGateway) TableName() string {
	return "payment_gateways"
}

// NewPaymentGateway creates a gateway configuration
func NewPaymentGateway(code GatewayCode, name string, currencies []valueobject.Currency, methods []PaymentMethod) (*PaymentGateway, error) {
	if !code.IsValid() {
		return nil, shared.NewDomainError("INVALID_GATEWAY", "Unknown gateway code")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Gateway name cannot be empty")
	}
	if len(currencies) == 0 {
		return nil, shared.NewDomainError("INVALID_CURRENCIES", "Gateway needs at least one currency")
	}
	if len(methods) == 0 {
		return nil, shared.NewDomainError("INVALID_METHODS", "Gateway needs at least one payment method")
	}

	curr := make([]string, 0, len(currencies))
	for _, c := range currencies {
		if !valueobject.IsSupportedCurrency(c) {
			return nil, shared.NewDomainError("INVALID_CURRENCIES", "Unsupported currency "+string(c))
		}
		curr = append(curr, string(c))
	}
	meth := make([]string, 0, len(methods))
	for _, m := range methods {
		meth = append(meth, string(m))
	}

	return &PaymentGateway{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Currencies:        strings.Join(curr, ","),
		Methods:           strings.Join(meth, ","),
		FeePercentage:     decimal.Zero,
		Active:            true,
	}, nil
}

// SupportsCurrency reports whether the gateway settles in the currency
func (g *PaymentGateway) SupportsCurrency(c valueobject.Currency) bool {
	for _, s := range strings.Split(g.Currencies, ",") {
		if s == string(c) {
			return true
		}
	}
	return false
}

// SupportsMethod reports whether the gateway offers the payment method
func (g *PaymentGateway) SupportsMethod(m PaymentMethod) bool {
	for _, s := range strings.Split(g.Methods, ",") {
		if s == string(m) {
			return true
		}
	}
	return false
}

// SetFee sets the gateway fee percentage (0-100)
func (g *PaymentGateway) SetFee(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_FEE", "Fee percentage must be between 0 and 100")
	}
	g.FeePercentage = pct
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
	return nil
}

// FeeFor returns the gateway fee for an amount
func (g *PaymentGateway) FeeFor(amount valueobject.Money) valueobject.Money {
	return amount.Percentage(g.FeePercentage).Round()
}

// Activate enables the gateway
func (g *PaymentGateway) Activate() {
	g.Active = true
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
}

// Deactivate removes the gateway from checkout
func (g *PaymentGateway) Deactivate() {
	g.Active = false
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
}

// GatewayRepository defines the interface for gateway persistence
type GatewayRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentGateway, error)
	FindByCode(ctx context.Context, code GatewayCode) (*PaymentGateway, error)
	FindActive(ctx context.Context) ([]PaymentGateway, error)
	Save(ctx context.Context, gateway *PaymentGateway) error
	Delete(ctx context.Context, id uuid.UUID) error
}
