package advert

import (
	"context"
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdStatus tracks an advertisement through review and delivery
type AdStatus string

const (
	AdStatusDraft         AdStatus = "draft"
	AdStatusPendingReview AdStatus = "pending_review"
	AdStatusActive        AdStatus = "active"
	AdStatusPaused        AdStatus = "paused"
	AdStatusCompleted     AdStatus = "completed"
	AdStatusRejected      AdStatus = "rejected"
)

// CostModel is how the advertiser is charged
type CostModel string

const (
	CostModelCPM CostModel = "cpm" // per thousand impressions
	CostModelCPC CostModel = "cpc" // per click
)

// IsValid checks if the cost model is valid
func (c CostModel) IsValid() bool {
	return c == CostModelCPM || c == CostModelCPC
}

// Advertisement is a paid campaign served into a placement
type Advertisement struct {
	shared.BaseAggregateRoot
	AdvertiserID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	PlacementID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	Title          string               `gorm:"type:varchar(200);not null"`
	Content        string               `gorm:"type:text"`
	MediaURL       string               `gorm:"type:varchar(500)"`
	TargetURL      string               `gorm:"type:varchar(500)"`
	TargetAudience string               `gorm:"type:varchar(50)"`
	TargetRegions  string               `gorm:"type:varchar(255)"` // comma-separated, empty means all
	Budget         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountSpent    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	CostModel      CostModel            `gorm:"type:varchar(10);not null"`
	Rate           decimal.Decimal      `gorm:"type:decimal(18,4);not null"` // per 1000 impressions or per click
	StartAt        time.Time            `gorm:"not null"`
	EndAt          time.Time            `gorm:"not null;index"`
	Status         AdStatus             `gorm:"type:varchar(20);not null;default:'draft';index"`
	Impressions    int64                `gorm:"not null;default:0"`
	Clicks         int64                `gorm:"not null;default:0"`
	RejectedReason string               `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Advertisement) TableName() string {
	return "advertisements"
}

// NewAdvertisement creates a draft campaign
func NewAdvertisement(advertiserID, placementID uuid.UUID, title string, budget valueobject.Money, model CostModel, rate decimal.Decimal, startAt, endAt time.Time) (*Advertisement, error) {
	if advertiserID == uuid.Nil || placementID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Advertiser and placement are required")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Advertisement title cannot be empty")
	}
	if !budget.IsPositive() {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget must be positive")
	}
	if !model.IsValid() {
		return nil, shared.NewDomainError("INVALID_COST_MODEL", "Cost model must be cpm or cpc")
	}
	if !rate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_RATE", "Rate must be positive")
	}
	if !endAt.After(startAt) {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Campaign end must be after its start")
	}

	return &Advertisement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AdvertiserID:      advertiserID,
		PlacementID:       placementID,
		Title:             title,
		Budget:            budget.Amount(),
		AmountSpent:       decimal.Zero,
		Currency:          budget.Currency(),
		CostModel:         model,
		Rate:              rate,
		StartAt:           startAt,
		EndAt:             endAt,
		Status:            AdStatusDraft,
	}, nil
}

// SetCreative fills in the ad content
func (a *Advertisement) SetCreative(content, mediaURL, targetURL string) error {
	if a.Status != AdStatusDraft && a.Status != AdStatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Creative can only change before approval")
	}
	a.Content = content
	a.MediaURL = mediaURL
	a.TargetURL = targetURL
	a.UpdatedAt = time.Now()
	return nil
}

// SetTargeting restricts the audience and regions the ad serves to
func (a *Advertisement) SetTargeting(audience string, regions []string) {
	a.TargetAudience = audience
	a.TargetRegions = strings.Join(regions, ",")
	a.UpdatedAt = time.Now()
}

// SubmitForReview sends a draft to moderation
func (a *Advertisement) SubmitForReview() error {
	if a.Status != AdStatusDraft && a.Status != AdStatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Only drafts can be submitted for review")
	}
	if a.Content == "" && a.MediaURL == "" {
		return shared.NewDomainError("MISSING_CREATIVE", "Advertisement needs content or media before review")
	}

	a.Status = AdStatusPendingReview
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Approve activates a reviewed campaign
func (a *Advertisement) Approve() error {
	if a.Status != AdStatusPendingReview {
		return shared.NewDomainError("INVALID_STATE", "Only pending advertisements can be approved")
	}

	a.Status = AdStatusActive
	a.RejectedReason = ""
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAdApprovedEvent(a))

	return nil
}

// Reject declines a reviewed campaign with a reason
func (a *Advertisement) Reject(reason string) error {
	if a.Status != AdStatusPendingReview {
		return shared.NewDomainError("INVALID_STATE", "Only pending advertisements can be rejected")
	}

	a.Status = AdStatusRejected
	a.RejectedReason = reason
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Pause stops delivery, the advertiser can resume later
func (a *Advertisement) Pause() error {
	if a.Status != AdStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active advertisements can be paused")
	}

	a.Status = AdStatusPaused
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Resume restarts delivery of a paused campaign with budget left
func (a *Advertisement) Resume() error {
	if a.Status != AdStatusPaused {
		return shared.NewDomainError("INVALID_STATE", "Only paused advertisements can resume")
	}
	if a.BudgetRemaining().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("BUDGET_EXHAUSTED", "Campaign budget is exhausted")
	}

	a.Status = AdStatusActive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Complete closes a campaign whose schedule ended
func (a *Advertisement) Complete() error {
	if a.Status != AdStatusActive && a.Status != AdStatusPaused {
		return shared.NewDomainError("INVALID_STATE", "Only running advertisements can complete")
	}

	a.Status = AdStatusCompleted
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// RecordImpression counts one view and accrues CPM spend.
// The campaign auto-pauses when the budget runs out.
func (a *Advertisement) RecordImpression() error {
	if a.Status != AdStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Advertisement is not serving")
	}

	a.Impressions++
	if a.CostModel == CostModelCPM {
		a.accrueSpend(a.Rate.Div(decimal.NewFromInt(1000)))
	}
	a.UpdatedAt = time.Now()

	return nil
}

// RecordClick counts one click and accrues CPC spend
func (a *Advertisement) RecordClick() error {
	if a.Status != AdStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Advertisement is not serving")
	}

	a.Clicks++
	if a.CostModel == CostModelCPC {
		a.accrueSpend(a.Rate)
	}
	a.UpdatedAt = time.Now()

	return nil
}

// accrueSpend adds to the spent amount, capping at budget and auto-pausing
func (a *Advertisement) accrueSpend(amount decimal.Decimal) {
	a.AmountSpent = a.AmountSpent.Add(amount)
	if a.AmountSpent.GreaterThanOrEqual(a.Budget) {
		a.AmountSpent = a.Budget
		a.Status = AdStatusPaused
		a.AddDomainEvent(NewAdBudgetExhaustedEvent(a))
	}
}

// BudgetRemaining is what the campaign can still spend
func (a *Advertisement) BudgetRemaining() decimal.Decimal {
	return a.Budget.Sub(a.AmountSpent)
}

// CTR returns clicks over impressions, zero when nothing served
func (a *Advertisement) CTR() decimal.Decimal {
	if a.Impressions == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(a.Clicks).Div(decimal.NewFromInt(a.Impressions)).Round(4)
}

// Servable reports whether the ad can serve right now for a region
func (a *Advertisement) Servable(now time.Time, region string) bool {
	if a.Status != AdStatusActive {
		return false
	}
	if now.Before(a.StartAt) || now.After(a.EndAt) {
		return false
	}
	if a.BudgetRemaining().LessThanOrEqual(decimal.Zero) {
		return false
	}
	return a.targetsRegion(region)
}

func (a *Advertisement) targetsRegion(region string) bool {
	if a.TargetRegions == "" || region == "" {
		return true
	}
	for _, r := range strings.Split(a.TargetRegions, ",") {
		if strings.EqualFold(strings.TrimSpace(r), region) {
			return true
		}
	}
	return false
}

// AdvertisementRepository defines the interface for advertisement persistence
type AdvertisementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Advertisement, error)
	FindByAdvertiser(ctx context.Context, advertiserID uuid.UUID, filter shared.Filter) ([]Advertisement, error)
	FindServable(ctx context.Context, placementID uuid.UUID, now time.Time, limit int) ([]Advertisement, error)
	FindEnded(ctx context.Context, now time.Time, limit int) ([]Advertisement, error)
	Save(ctx context.Context, ad *Advertisement) error
	IncrementCounters(ctx context.Context, id uuid.UUID, impressions, clicks int64, spend decimal.Decimal) error
}
