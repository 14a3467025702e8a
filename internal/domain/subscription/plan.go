package subscription

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PlanTier orders plans from free to enterprise
type PlanTier string

const (
	TierFree       PlanTier = "free"
	TierBasic      PlanTier = "basic"
	TierPremium    PlanTier = "premium"
	TierEnterprise PlanTier = "enterprise"
)

// IsValid checks if the plan tier is valid
func (t PlanTier) IsValid() bool {
	switch t {
	case TierFree, TierBasic, TierPremium, TierEnterprise:
		return true
	}
	return false
}

// PlanAudience is the user segment a plan targets
type PlanAudience string

const (
	AudienceFarmer      PlanAudience = "farmer"
	AudienceBuyer       PlanAudience = "buyer"
	AudienceInstitution PlanAudience = "institution"
)

// IsValid checks if the plan audience is valid
func (a PlanAudience) IsValid() bool {
	switch a {
	case AudienceFarmer, AudienceBuyer, AudienceInstitution:
		return true
	}
	return false
}

// BillingPeriod is the renewal cadence of a plan
type BillingPeriod string

const (
	PeriodMonthly   BillingPeriod = "monthly"
	PeriodQuarterly BillingPeriod = "quarterly"
	PeriodYearly    BillingPeriod = "yearly"
)

// IsValid checks if the billing period is valid
func (p BillingPeriod) IsValid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// Months returns the length of the billing period in months
func (p BillingPeriod) Months() int {
	switch p {
	case PeriodQuarterly:
		return 3
	case PeriodYearly:
		return 12
	default:
		return 1
	}
}

// PlanLimits caps what a subscriber can consume per billing period.
// A limit of -1 means unlimited.
type PlanLimits struct {
	ProductListings int  `json:"product_listings"`
	SMSCredits      int  `json:"sms_credits"`
	WarehouseAccess bool `json:"warehouse_access"`
}

// SubscriptionPlan defines a purchasable tier with limits and features
type SubscriptionPlan struct {
	shared.BaseAggregateRoot
	Name            string               `gorm:"type:varchar(100);not null"`
	Tier            PlanTier             `gorm:"type:varchar(20);not null;index"`
	Audience        PlanAudience         `gorm:"type:varchar(20);not null;index"`
	Description     string               `gorm:"type:text"`
	Price           decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	Period          BillingPeriod        `gorm:"type:varchar(20);not null"`
	Features        datatypes.JSON       `gorm:"type:jsonb"`
	ProductListings int                  `gorm:"not null;default:0"`
	SMSCredits      int                  `gorm:"not null;default:0"`
	WarehouseAccess bool                 `gorm:"not null;default:false"`
	Active          bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// NewSubscriptionPlan creates a plan. Free tier plans must be priced at zero,
// paid tiers must carry a positive price.
func NewSubscriptionPlan(name string, tier PlanTier, audience PlanAudience, price valueobject.Money, period BillingPeriod, limits PlanLimits) (*SubscriptionPlan, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Plan name cannot be empty")
	}
	if !tier.IsValid() {
		return nil, shared.NewDomainError("INVALID_TIER", "Unknown plan tier")
	}
	if !audience.IsValid() {
		return nil, shared.NewDomainError("INVALID_AUDIENCE", "Unknown plan audience")
	}
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Unknown billing period")
	}
	if tier == TierFree && !price.IsZero() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Free tier plans must cost nothing")
	}
	if tier != TierFree && !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Paid plans must have a positive price")
	}
	if limits.ProductListings < -1 || limits.SMSCredits < -1 {
		return nil, shared.NewDomainError("INVALID_LIMITS", "Limits must be -1 (unlimited) or non-negative")
	}

	return &SubscriptionPlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Tier:              tier,
		Audience:          audience,
		Price:             price.Amount(),
		Currency:          price.Currency(),
		Period:            period,
		ProductListings:   limits.ProductListings,
		SMSCredits:        limits.SMSCredits,
		WarehouseAccess:   limits.WarehouseAccess,
		Active:            true,
	}, nil
}

// UpdatePricing changes the plan price for future subscriptions
func (p *SubscriptionPlan) UpdatePricing(price valueobject.Money) error {
	if p.Tier != TierFree && !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Paid plans must have a positive price")
	}
	p.Price = price.Amount()
	p.Currency = price.Currency()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UpdateLimits changes the consumption caps for future periods
func (p *SubscriptionPlan) UpdateLimits(limits PlanLimits) error {
	if limits.ProductListings < -1 || limits.SMSCredits < -1 {
		return shared.NewDomainError("INVALID_LIMITS", "Limits must be -1 (unlimited) or non-negative")
	}
	p.ProductListings = limits.ProductListings
	p.SMSCredits = limits.SMSCredits
	p.WarehouseAccess = limits.WarehouseAccess
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Activate makes the plan purchasable
func (p *SubscriptionPlan) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate hides the plan from new subscribers, existing ones keep it
func (p *SubscriptionPlan) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// PriceMoney returns the price as a Money value object
func (p *SubscriptionPlan) PriceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Price, p.Currency)
	return m
}

// PlanRepository defines the interface for plan persistence
type PlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SubscriptionPlan, error)
	FindActive(ctx context.Context, audience PlanAudience) ([]SubscriptionPlan, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]SubscriptionPlan, error)
	Save(ctx context.Context, plan *SubscriptionPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
}
