package advert

import (
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for the advert domain
const (
	EventAdApproved        = "advert.approved"
	EventAdBudgetExhausted = "advert.budget_exhausted"
)

// AdApprovedEvent is raised when a campaign passes review
type AdApprovedEvent struct {
	shared.BaseDomainEvent
	AdvertiserID string `json:"advertiser_id"`
	Title        string `json:"title"`
}

// NewAdApprovedEvent creates a new ad approved event
func NewAdApprovedEvent(a *Advertisement) *AdApprovedEvent {
	return &AdApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventAdApproved, "Advertisement", a.ID),
		AdvertiserID:    a.AdvertiserID.String(),
		Title:           a.Title,
	}
}

// AdBudgetExhaustedEvent is raised when spend reaches budget and the ad pauses
type AdBudgetExhaustedEvent struct {
	shared.BaseDomainEvent
	AdvertiserID string          `json:"advertiser_id"`
	Budget       decimal.Decimal `json:"budget"`
}

// NewAdBudgetExhaustedEvent creates a new budget exhausted event
func NewAdBudgetExhaustedEvent(a *Advertisement) *AdBudgetExhaustedEvent {
	return &AdBudgetExhaustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventAdBudgetExhausted, "Advertisement", a.ID),
		AdvertiserID:    a.AdvertiserID.String(),
		Budget:          a.Budget,
	}
}
