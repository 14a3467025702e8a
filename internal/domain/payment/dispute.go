package payment

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DisputeReason classifies why the buyer opened the dispute
type DisputeReason string

const (
	DisputeReasonNotDelivered  DisputeReason = "not_delivered"
	DisputeReasonQualityIssue  DisputeReason = "quality_issue"
	DisputeReasonWrongItem     DisputeReason = "wrong_item"
	DisputeReasonQuantityShort DisputeReason = "quantity_short"
	DisputeReasonOther         DisputeReason = "other"
)

// IsValid checks if the dispute reason is valid
func (r DisputeReason) IsValid() bool {
	switch r {
	case DisputeReasonNotDelivered, DisputeReasonQualityIssue, DisputeReasonWrongItem,
		DisputeReasonQuantityShort, DisputeReasonOther:
		return true
	}
	return false
}

// DisputeStatus tracks a dispute through resolution
type DisputeStatus string

const (
	DisputeStatusOpen           DisputeStatus = "open"
	DisputeStatusUnderReview    DisputeStatus = "under_review"
	DisputeStatusResolvedBuyer  DisputeStatus = "resolved_buyer"
	DisputeStatusResolvedSeller DisputeStatus = "resolved_seller"
	DisputeStatusClosed         DisputeStatus = "closed"
)

// Dispute is a buyer claim against an escrowed order
type Dispute struct {
	shared.BaseAggregateRoot
	EscrowAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	RaisedBy        uuid.UUID       `gorm:"type:uuid;not null"`
	Reason          DisputeReason   `gorm:"type:varchar(30);not null"`
	Description     string          `gorm:"type:text;not null"`
	Status          DisputeStatus   `gorm:"type:varchar(20);not null;default:'open';index"`
	RefundAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Resolution      string          `gorm:"type:text"`
	ResolvedBy      *uuid.UUID      `gorm:"type:uuid"`
	ResolvedAt      *time.Time
}

// TableName returns the table name for GORM
func (Dispute) TableName() string {
	return "payment_disputes"
}

// NewDispute opens a dispute against an escrow account
func NewDispute(escrowAccountID, orderID, raisedBy uuid.UUID, reason DisputeReason, description string) (*Dispute, error) {
	if escrowAccountID == uuid.Nil || orderID == uuid.Nil || raisedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Escrow account, order and raiser are required")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Unknown dispute reason")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Dispute description cannot be empty")
	}

	d := &Dispute{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EscrowAccountID:   escrowAccountID,
		OrderID:           orderID,
		RaisedBy:          raisedBy,
		Reason:            reason,
		Description:       description,
		Status:            DisputeStatusOpen,
		RefundAmount:      decimal.Zero,
	}

	d.AddDomainEvent(NewDisputeOpenedEvent(d))

	return d, nil
}

// StartReview moves the dispute to moderator review
func (d *Dispute) StartReview() error {
	if d.Status != DisputeStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Only open disputes can enter review")
	}

	d.Status = DisputeStatusUnderReview
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// ResolveForBuyer closes the dispute with a refund to the buyer
func (d *Dispute) ResolveForBuyer(resolvedBy uuid.UUID, refundAmount decimal.Decimal, resolution string) error {
	if d.Status != DisputeStatusOpen && d.Status != DisputeStatusUnderReview {
		return shared.NewDomainError("INVALID_STATE", "Dispute is already resolved")
	}
	if !refundAmount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}

	now := time.Now()
	d.Status = DisputeStatusResolvedBuyer
	d.RefundAmount = refundAmount
	d.Resolution = resolution
	d.ResolvedBy = &resolvedBy
	d.ResolvedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()

	return nil
}

// ResolveForSeller closes the dispute without a refund
func (d *Dispute) ResolveForSeller(resolvedBy uuid.UUID, resolution string) error {
	if d.Status != DisputeStatusOpen && d.Status != DisputeStatusUnderReview {
		return shared.NewDomainError("INVALID_STATE", "Dispute is already resolved")
	}

	now := time.Now()
	d.Status = DisputeStatusResolvedSeller
	d.Resolution = resolution
	d.ResolvedBy = &resolvedBy
	d.ResolvedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()

	return nil
}

// Close marks a resolved dispute fully settled
func (d *Dispute) Close() error {
	if d.Status != DisputeStatusResolvedBuyer && d.Status != DisputeStatusResolvedSeller {
		return shared.NewDomainError("INVALID_STATE", "Only resolved disputes can be closed")
	}

	d.Status = DisputeStatusClosed
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// DisputeRepository defines the interface for dispute persistence
type DisputeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Dispute, error)
	FindByEscrowAccount(ctx context.Context, escrowAccountID uuid.UUID) ([]Dispute, error)
	FindByStatus(ctx context.Context, status DisputeStatus, filter shared.Filter) ([]Dispute, error)
	Save(ctx context.Context, dispute *Dispute) error
}
