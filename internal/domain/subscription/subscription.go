package subscription

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SubscriptionStatus tracks a user subscription through its life
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// UsageKind names a metered plan resource
type UsageKind string

const (
	UsageProductListings UsageKind = "product_listings"
	UsageSMSCredits      UsageKind = "sms_credits"
)

// UserSubscription binds a user to a plan for a billing period
// and meters their consumption against the plan limits.
type UserSubscription struct {
	shared.BaseAggregateRoot
	UserID             uuid.UUID          `gorm:"type:uuid;not null;index"`
	PlanID             uuid.UUID          `gorm:"type:uuid;not null;index"`
	Plan               *SubscriptionPlan  `gorm:"foreignKey:PlanID"`
	Status             SubscriptionStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	PeriodStart        time.Time          `gorm:"not null"`
	PeriodEnd          time.Time          `gorm:"not null;index"`
	AutoRenew          bool               `gorm:"not null;default:true"`
	ListingsUsed       int                `gorm:"not null;default:0"`
	SMSCreditsUsed     int                `gorm:"not null;default:0"`
	CancelledAt        *time.Time
	CancellationReason string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

// NewUserSubscription starts a subscription on a plan from the given time
func NewUserSubscription(userID uuid.UUID, plan *SubscriptionPlan, start time.Time) (*UserSubscription, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if plan == nil {
		return nil, shared.NewDomainError("INVALID_PLAN", "Plan is required")
	}
	if !plan.Active {
		return nil, shared.NewDomainError("PLAN_INACTIVE", "Plan is not open for new subscriptions")
	}

	sub := &UserSubscription{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		PlanID:            plan.ID,
		Plan:              plan,
		Status:            SubscriptionStatusActive,
		PeriodStart:       start,
		PeriodEnd:         start.AddDate(0, plan.Period.Months(), 0),
		AutoRenew:         true,
	}

	sub.AddDomainEvent(NewSubscriptionStartedEvent(sub))

	return sub, nil
}

// IsActive reports whether the subscription grants access right now
func (s *UserSubscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && !now.After(s.PeriodEnd)
}

// limitFor returns the plan cap for a usage kind, -1 meaning unlimited
func (s *UserSubscription) limitFor(kind UsageKind) int {
	if s.Plan == nil {
		return 0
	}
	switch kind {
	case UsageProductListings:
		return s.Plan.ProductListings
	case UsageSMSCredits:
		return s.Plan.SMSCredits
	}
	return 0
}

// usedFor returns current consumption for a usage kind
func (s *UserSubscription) usedFor(kind UsageKind) int {
	switch kind {
	case UsageProductListings:
		return s.ListingsUsed
	case UsageSMSCredits:
		return s.SMSCreditsUsed
	}
	return 0
}

// Remaining returns how much of a metered resource is left, -1 for unlimited
func (s *UserSubscription) Remaining(kind UsageKind) int {
	limit := s.limitFor(kind)
	if limit < 0 {
		return -1
	}
	remaining := limit - s.usedFor(kind)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Consume meters usage against the plan limit for the current period
func (s *UserSubscription) Consume(kind UsageKind, amount int) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Usage amount must be positive")
	}
	if s.Status != SubscriptionStatusActive {
		return shared.NewDomainError("SUBSCRIPTION_INACTIVE", "Subscription is not active")
	}

	limit := s.limitFor(kind)
	if limit >= 0 && s.usedFor(kind)+amount > limit {
		return shared.ErrQuotaExceeded
	}

	switch kind {
	case UsageProductListings:
		s.ListingsUsed += amount
	case UsageSMSCredits:
		s.SMSCreditsUsed += amount
	default:
		return shared.NewDomainError("INVALID_USAGE", "Unknown usage kind")
	}

	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// ReleaseUsage gives back metered usage, for example when a listing is deleted
func (s *UserSubscription) ReleaseUsage(kind UsageKind, amount int) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Usage amount must be positive")
	}

	switch kind {
	case UsageProductListings:
		s.ListingsUsed -= amount
		if s.ListingsUsed < 0 {
			s.ListingsUsed = 0
		}
	case UsageSMSCredits:
		s.SMSCreditsUsed -= amount
		if s.SMSCreditsUsed < 0 {
			s.SMSCreditsUsed = 0
		}
	default:
		return shared.NewDomainError("INVALID_USAGE", "Unknown usage kind")
	}

	s.UpdatedAt = time.Now()
	return nil
}

// Renew extends the period by one plan period from the current end
// and resets the usage counters.
func (s *UserSubscription) Renew() error {
	if s.Status == SubscriptionStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cancelled subscriptions cannot renew")
	}
	if s.Plan == nil {
		return shared.NewDomainError("INVALID_PLAN", "Plan must be loaded to renew")
	}

	s.PeriodStart = s.PeriodEnd
	s.PeriodEnd = s.PeriodEnd.AddDate(0, s.Plan.Period.Months(), 0)
	s.Status = SubscriptionStatusActive
	s.ListingsUsed = 0
	s.SMSCreditsUsed = 0
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSubscriptionRenewedEvent(s))

	return nil
}

// MarkPastDue flags a renewal whose payment failed
func (s *UserSubscription) MarkPastDue() error {
	if s.Status != SubscriptionStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active subscriptions can go past due")
	}
	s.Status = SubscriptionStatusPastDue
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Cancel turns off auto-renew, access continues until period end
func (s *UserSubscription) Cancel(reason string) error {
	if s.Status == SubscriptionStatusCancelled || s.Status == SubscriptionStatusExpired {
		return shared.NewDomainError("INVALID_STATE", "Subscription is already closed")
	}

	now := time.Now()
	s.Status = SubscriptionStatusCancelled
	s.AutoRenew = false
	s.CancelledAt = &now
	s.CancellationReason = reason
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSubscriptionCancelledEvent(s))

	return nil
}

// Expire closes a subscription whose period lapsed without renewal
func (s *UserSubscription) Expire(now time.Time) error {
	if s.Status == SubscriptionStatusExpired {
		return nil
	}
	if now.Before(s.PeriodEnd) {
		return shared.NewDomainError("INVALID_STATE", "Subscription period has not ended")
	}

	s.Status = SubscriptionStatusExpired
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSubscriptionExpiredEvent(s))

	return nil
}

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UserSubscription, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*UserSubscription, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]UserSubscription, error)
	FindLapsed(ctx context.Context, now time.Time, limit int) ([]UserSubscription, error)
	FindDueForRenewal(ctx context.Context, before time.Time, limit int) ([]UserSubscription, error)
	Save(ctx context.Context, sub *UserSubscription) error
}
