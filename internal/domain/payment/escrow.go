package payment

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EscrowStatus tracks the lifecycle of an escrow account
type EscrowStatus string

const (
	EscrowStatusCreated        EscrowStatus = "created"
	EscrowStatusFunded         EscrowStatus = "funded"
	EscrowStatusPartialRelease EscrowStatus = "partial_release"
	EscrowStatusReleased       EscrowStatus = "released"
	EscrowStatusRefunded       EscrowStatus = "refunded"
	EscrowStatusDisputed       EscrowStatus = "disputed"
)

// MilestoneType identifies the trigger that releases a portion of escrow
type MilestoneType string

const (
	MilestoneOrderConfirmed   MilestoneType = "order_confirmed"
	MilestoneGoodsShipped     MilestoneType = "goods_shipped"
	MilestoneGoodsDelivered   MilestoneType = "goods_delivered"
	MilestoneQualityConfirmed MilestoneType = "quality_confirmed"
)

// IsValid checks if the milestone type is valid
func (m MilestoneType) IsValid() bool {
	switch m {
	case MilestoneOrderConfirmed, MilestoneGoodsShipped, MilestoneGoodsDelivered, MilestoneQualityConfirmed:
		return true
	}
	return false
}

// DefaultAutoReleaseDays is how long after delivery funds release without buyer action
const DefaultAutoReleaseDays = 7

// EscrowMilestone is one staged release within an escrow account
type EscrowMilestone struct {
	shared.BaseEntity
	EscrowAccountID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type              MilestoneType   `gorm:"type:varchar(30);not null"`
	ReleasePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Released          bool            `gorm:"not null;default:false"`
	ReleasedAt        *time.Time
	TransactionID     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (EscrowMilestone) TableName() string {
	return "escrow_milestones"
}

// EscrowAccount holds buyer funds until delivery milestones complete
type EscrowAccount struct {
	shared.BaseAggregateRoot
	OrderID         uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	BuyerID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	SellerID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	TotalAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	ReleasedAmount  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	RefundedAmount  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	Status          EscrowStatus         `gorm:"type:varchar(20);not null;default:'created';index"`
	Milestones      []EscrowMilestone    `gorm:"foreignKey:EscrowAccountID"`
	AutoReleaseDays int                  `gorm:"not null;default:7"`
	FundedAt        *time.Time
	DeliveredAt     *time.Time
	ClosedAt        *time.Time
}

// TableName returns the table name for GORM
func (EscrowAccount) TableName() string {
	return "escrow_accounts"
}

// MilestonePlan pairs a milestone type with its release percentage
type MilestonePlan struct {
	Type       MilestoneType
	Percentage decimal.Decimal
}

// DefaultMilestonePlan releases 20% on shipment, 50% on delivery and the
// remaining 30% once the buyer confirms quality.
func DefaultMilestonePlan() []MilestonePlan {
	return []MilestonePlan{
		{Type: MilestoneGoodsShipped, Percentage: decimal.NewFromInt(20)},
		{Type: MilestoneGoodsDelivered, Percentage: decimal.NewFromInt(50)},
		{Type: MilestoneQualityConfirmed, Percentage: decimal.NewFromInt(30)},
	}
}

// NewEscrowAccount creates an escrow account with a milestone plan.
// The percentages across all milestones must sum to exactly 100.
func NewEscrowAccount(orderID, buyerID, sellerID uuid.UUID, amount valueobject.Money, plan []MilestonePlan) (*EscrowAccount, error) {
	if orderID == uuid.Nil || buyerID == uuid.Nil || sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order, buyer and seller are required")
	}
	if buyerID == sellerID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Buyer and seller cannot be the same user")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Escrow amount must be positive")
	}
	if len(plan) == 0 {
		plan = DefaultMilestonePlan()
	}

	total := decimal.Zero
	seen := make(map[MilestoneType]bool, len(plan))
	for _, p := range plan {
		if !p.Type.IsValid() {
			return nil, shared.NewDomainError("INVALID_MILESTONE", "Unknown milestone type")
		}
		if seen[p.Type] {
			return nil, shared.NewDomainError("DUPLICATE_MILESTONE", "Milestone types must be unique")
		}
		if !p.Percentage.IsPositive() {
			return nil, shared.NewDomainError("INVALID_MILESTONE", "Milestone percentage must be positive")
		}
		seen[p.Type] = true
		total = total.Add(p.Percentage)
	}
	if !total.Equal(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_MILESTONE_PLAN", "Milestone percentages must sum to 100")
	}

	account := &EscrowAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		BuyerID:           buyerID,
		SellerID:          sellerID,
		TotalAmount:       amount.Amount(),
		ReleasedAmount:    decimal.Zero,
		RefundedAmount:    decimal.Zero,
		Currency:          amount.Currency(),
		Status:            EscrowStatusCreated,
		AutoReleaseDays:   DefaultAutoReleaseDays,
	}

	for _, p := range plan {
		account.Milestones = append(account.Milestones, EscrowMilestone{
			BaseEntity:        shared.NewBaseEntity(),
			EscrowAccountID:   account.ID,
			Type:              p.Type,
			ReleasePercentage: p.Percentage,
		})
	}

	return account, nil
}

// Fund records buyer payment arriving into escrow
func (e *EscrowAccount) Fund() error {
	if e.Status != EscrowStatusCreated {
		return shared.NewDomainError("INVALID_STATE", "Escrow account is already funded or closed")
	}

	now := time.Now()
	e.Status = EscrowStatusFunded
	e.FundedAt = &now
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewEscrowFundedEvent(e))

	return nil
}

// MarkDelivered stamps delivery so the auto-release clock starts
func (e *EscrowAccount) MarkDelivered(at time.Time) error {
	if e.Status != EscrowStatusFunded && e.Status != EscrowStatusPartialRelease {
		return shared.NewDomainError("INVALID_STATE", "Escrow must hold funds before delivery is recorded")
	}
	e.DeliveredAt = &at
	e.UpdatedAt = time.Now()
	return nil
}

// ReleaseMilestone pays out the portion tied to a completed milestone.
// It returns the amount released so the caller can create the payout transaction.
func (e *EscrowAccount) ReleaseMilestone(milestoneType MilestoneType) (valueobject.Money, error) {
	var zero valueobject.Money
	if e.Status != EscrowStatusFunded && e.Status != EscrowStatusPartialRelease {
		return zero, shared.NewDomainError("INVALID_STATE", "Only funded escrow accounts can release")
	}

	var milestone *EscrowMilestone
	for i := range e.Milestones {
		if e.Milestones[i].Type == milestoneType {
			milestone = &e.Milestones[i]
			break
		}
	}
	if milestone == nil {
		return zero, shared.NewDomainError("MILESTONE_NOT_FOUND", "No such milestone on this escrow account")
	}
	if milestone.Released {
		return zero, shared.NewDomainError("ALREADY_RELEASED", "Milestone has already been released")
	}

	amount := e.TotalAmount.Mul(milestone.ReleasePercentage).Div(decimal.NewFromInt(100)).Round(2)
	if e.ReleasedAmount.Add(e.RefundedAmount).Add(amount).GreaterThan(e.TotalAmount) {
		return zero, shared.NewDomainError("OVER_RELEASE", "Release would exceed the escrowed total")
	}

	now := time.Now()
	milestone.Released = true
	milestone.ReleasedAt = &now
	e.ReleasedAmount = e.ReleasedAmount.Add(amount)
	e.UpdatedAt = now
	e.IncrementVersion()

	if e.allMilestonesReleased() {
		e.Status = EscrowStatusReleased
		e.ClosedAt = &now
	} else {
		e.Status = EscrowStatusPartialRelease
	}

	e.AddDomainEvent(NewEscrowReleasedEvent(e, milestoneType, amount))

	released, err := valueobject.NewMoney(amount, e.Currency)
	if err != nil {
		return zero, err
	}
	return released, nil
}

// ReleaseAll releases every outstanding milestone, used by auto-release
// after the delivery confirmation window lapses.
func (e *EscrowAccount) ReleaseAll() (valueobject.Money, error) {
	var zero valueobject.Money
	if e.Status != EscrowStatusFunded && e.Status != EscrowStatusPartialRelease {
		return zero, shared.NewDomainError("INVALID_STATE", "Only funded escrow accounts can release")
	}

	total := decimal.Zero
	for i := range e.Milestones {
		if e.Milestones[i].Released {
			continue
		}
		amount, err := e.ReleaseMilestone(e.Milestones[i].Type)
		if err != nil {
			return zero, err
		}
		total = total.Add(amount.Amount())
	}

	released, err := valueobject.NewMoney(total, e.Currency)
	if err != nil {
		return zero, err
	}
	return released, nil
}

// DueForAutoRelease reports whether the delivery window has lapsed
// without the buyer disputing, so remaining funds should release.
func (e *EscrowAccount) DueForAutoRelease(now time.Time) bool {
	if e.Status != EscrowStatusFunded && e.Status != EscrowStatusPartialRelease {
		return false
	}
	if e.DeliveredAt == nil {
		return false
	}
	return now.After(e.DeliveredAt.AddDate(0, 0, e.AutoReleaseDays))
}

// Dispute freezes releases while a dispute is resolved
func (e *EscrowAccount) Dispute() error {
	if e.Status != EscrowStatusFunded && e.Status != EscrowStatusPartialRelease {
		return shared.NewDomainError("INVALID_STATE", "Only held escrow funds can be disputed")
	}

	e.Status = EscrowStatusDisputed
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// ResolveDispute returns the account to held state after a dispute closes
// in the seller's favor, allowing releases to continue.
func (e *EscrowAccount) ResolveDispute() error {
	if e.Status != EscrowStatusDisputed {
		return shared.NewDomainError("INVALID_STATE", "Escrow account is not disputed")
	}

	if e.ReleasedAmount.IsPositive() {
		e.Status = EscrowStatusPartialRelease
	} else {
		e.Status = EscrowStatusFunded
	}
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// Refund returns held funds to the buyer, full or partial.
// released + refunded can never exceed the escrowed total.
func (e *EscrowAccount) Refund(amount decimal.Decimal) error {
	if e.Status != EscrowStatusFunded && e.Status != EscrowStatusPartialRelease && e.Status != EscrowStatusDisputed {
		return shared.NewDomainError("INVALID_STATE", "Only held escrow funds can be refunded")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	if e.ReleasedAmount.Add(e.RefundedAmount).Add(amount).GreaterThan(e.TotalAmount) {
		return shared.NewDomainError("OVER_REFUND", "Refund would exceed the escrowed total")
	}

	now := time.Now()
	e.RefundedAmount = e.RefundedAmount.Add(amount)
	e.UpdatedAt = now
	e.IncrementVersion()

	if e.ReleasedAmount.Add(e.RefundedAmount).Equal(e.TotalAmount) {
		e.Status = EscrowStatusRefunded
		e.ClosedAt = &now
	}

	e.AddDomainEvent(NewEscrowRefundedEvent(e, amount))

	return nil
}

// HeldAmount is what remains in escrow
func (e *EscrowAccount) HeldAmount() decimal.Decimal {
	return e.TotalAmount.Sub(e.ReleasedAmount).Sub(e.RefundedAmount)
}

func (e *EscrowAccount) allMilestonesReleased() bool {
	for i := range e.Milestones {
		if !e.Milestones[i].Released {
			return false
		}
	}
	return true
}

// EscrowRepository defines the interface for escrow persistence
type EscrowRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*EscrowAccount, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*EscrowAccount, error)
	FindDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]EscrowAccount, error)
	Save(ctx context.Context, account *EscrowAccount) error
}
