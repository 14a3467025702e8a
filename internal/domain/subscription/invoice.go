package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus tracks payment of a subscription invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

// SubscriptionInvoice bills one billing period of a subscription
type SubscriptionInvoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber  string               `gorm:"type:varchar(30);not null;uniqueIndex"`
	SubscriptionID uuid.UUID            `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	PeriodStart    time.Time            `gorm:"not null"`
	PeriodEnd      time.Time            `gorm:"not null"`
	Status         InvoiceStatus        `gorm:"type:varchar(20);not null;default:'pending';index"`
	TransactionID  *uuid.UUID           `gorm:"type:uuid"`
	PaidAt         *time.Time
	DueAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SubscriptionInvoice) TableName() string {
	return "subscription_invoices"
}

// NewInvoiceNumber builds a human-readable invoice number
func NewInvoiceNumber(now time.Time, sequence int64) string {
	return fmt.Sprintf("INV-%s-%06d", now.Format("200601"), sequence)
}

// NewSubscriptionInvoice bills a subscription period
func NewSubscriptionInvoice(number string, sub *UserSubscription, amount valueobject.Money, dueAt time.Time) (*SubscriptionInvoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if sub == nil {
		return nil, shared.NewDomainError("INVALID_SUBSCRIPTION", "Subscription is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount cannot be negative")
	}

	return &SubscriptionInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     number,
		SubscriptionID:    sub.ID,
		UserID:            sub.UserID,
		Amount:            amount.Amount(),
		Currency:          amount.Currency(),
		PeriodStart:       sub.PeriodStart,
		PeriodEnd:         sub.PeriodEnd,
		Status:            InvoiceStatusPending,
		DueAt:             dueAt,
	}, nil
}

// MarkPaid links the settling transaction and closes the invoice
func (i *SubscriptionInvoice) MarkPaid(transactionID uuid.UUID) error {
	if i.Status != InvoiceStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending invoices can be paid")
	}

	now := time.Now()
	i.Status = InvoiceStatusPaid
	i.TransactionID = &transactionID
	i.PaidAt = &now
	i.UpdatedAt = now
	i.IncrementVersion()

	return nil
}

// Void cancels an unpaid invoice
func (i *SubscriptionInvoice) Void() error {
	if i.Status != InvoiceStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending invoices can be voided")
	}

	i.Status = InvoiceStatusVoid
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// IsOverdue reports whether a pending invoice passed its due date
func (i *SubscriptionInvoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusPending && now.After(i.DueAt)
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SubscriptionInvoice, error)
	FindByNumber(ctx context.Context, number string) (*SubscriptionInvoice, error)
	FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]SubscriptionInvoice, error)
	FindOverdue(ctx context.Context, now time.Time, limit int) ([]SubscriptionInvoice, error)
	NextSequence(ctx context.Context) (int64, error)
	Save(ctx context.Context, invoice *SubscriptionInvoice) error
}
