package subscription

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
)

// Event type constants for the subscription domain
const (
	EventSubscriptionStarted   = "subscription.started"
	EventSubscriptionRenewed   = "subscription.renewed"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionExpired   = "subscription.expired"
)

// SubscriptionStartedEvent is raised when a user subscribes to a plan
type SubscriptionStartedEvent struct {
	shared.BaseDomainEvent
	UserID      string    `json:"user_id"`
	PlanID      string    `json:"plan_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// NewSubscriptionStartedEvent creates a new subscription started event
func NewSubscriptionStartedEvent(s *UserSubscription) *SubscriptionStartedEvent {
	return &SubscriptionStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSubscriptionStarted, "UserSubscription", s.ID),
		UserID:          s.UserID.String(),
		PlanID:          s.PlanID.String(),
		PeriodStart:     s.PeriodStart,
		PeriodEnd:       s.PeriodEnd,
	}
}

// SubscriptionRenewedEvent is raised when a subscription period extends
type SubscriptionRenewedEvent struct {
	shared.BaseDomainEvent
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	PeriodEnd time.Time `json:"period_end"`
}

// NewSubscriptionRenewedEvent creates a new subscription renewed event
func NewSubscriptionRenewedEvent(s *UserSubscription) *SubscriptionRenewedEvent {
	return &SubscriptionRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSubscriptionRenewed, "UserSubscription", s.ID),
		UserID:          s.UserID.String(),
		PlanID:          s.PlanID.String(),
		PeriodEnd:       s.PeriodEnd,
	}
}

// SubscriptionCancelledEvent is raised when a user cancels
type SubscriptionCancelledEvent struct {
	shared.BaseDomainEvent
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

// NewSubscriptionCancelledEvent creates a new subscription cancelled event
func NewSubscriptionCancelledEvent(s *UserSubscription) *SubscriptionCancelledEvent {
	return &SubscriptionCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSubscriptionCancelled, "UserSubscription", s.ID),
		UserID:          s.UserID.String(),
		Reason:          s.CancellationReason,
	}
}

// SubscriptionExpiredEvent is raised when a lapsed subscription closes
type SubscriptionExpiredEvent struct {
	shared.BaseDomainEvent
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
}

// NewSubscriptionExpiredEvent creates a new subscription expired event
func NewSubscriptionExpiredEvent(s *UserSubscription) *SubscriptionExpiredEvent {
	return &SubscriptionExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSubscriptionExpired, "UserSubscription", s.ID),
		UserID:          s.UserID.String(),
		PlanID:          s.PlanID.String(),
	}
}
