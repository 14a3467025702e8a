package payment

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies the money flow
type TransactionType string

const (
	TransactionTypePayment       TransactionType = "payment"
	TransactionTypeRefund        TransactionType = "refund"
	TransactionTypePayout        TransactionType = "payout"
	TransactionTypeEscrowFund    TransactionType = "escrow_fund"
	TransactionTypeEscrowRelease TransactionType = "escrow_release"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeRefund, TransactionTypePayout,
		TransactionTypeEscrowFund, TransactionTypeEscrowRelease:
		return true
	}
	return false
}

// TransactionStatus tracks a transaction through the gateway
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusSuccess    TransactionStatus = "success"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// IsFinal reports whether the status is terminal
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

// Transaction records one money movement through a gateway.
// Reference is the platform-wide unique identifier handed to gateways.
type Transaction struct {
	shared.BaseAggregateRoot
	Reference        string               `gorm:"type:varchar(30);not null;uniqueIndex"`
	OrderID          *uuid.UUID           `gorm:"type:uuid;index"`
	UserID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	GatewayCode      GatewayCode          `gorm:"type:varchar(20);not null"`
	Type             TransactionType      `gorm:"type:varchar(20);not null"`
	Amount           decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency         valueobject.Currency `gorm:"type:varchar(3);not null"`
	Fee              decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Method           PaymentMethod        `gorm:"type:varchar(20)"`
	Status           TransactionStatus    `gorm:"type:varchar(20);not null;default:'pending';index"`
	GatewayReference string               `gorm:"type:varchar(100);index"`
	GatewayResponse  string               `gorm:"type:text"`
	FailureReason    string               `gorm:"type:varchar(255)"`
	CompletedAt      *time.Time
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// NewTransaction creates a pending transaction. The reference comes from
// the application layer's ID generator so it is unique across nodes.
func NewTransaction(reference string, txType TransactionType, userID uuid.UUID, gateway GatewayCode, amount valueobject.Money) (*Transaction, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Transaction reference cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown transaction type")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !gateway.IsValid() {
		return nil, shared.NewDomainError("INVALID_GATEWAY", "Unknown gateway code")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}

	tx := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		UserID:            userID,
		GatewayCode:       gateway,
		Type:              txType,
		Amount:            amount.Amount(),
		Currency:          amount.Currency(),
		Fee:               decimal.Zero,
		Status:            TransactionStatusPending,
	}

	tx.AddDomainEvent(NewTransactionCreatedEvent(tx))

	return tx, nil
}

// WithOrder links the transaction to an order
func (t *Transaction) WithOrder(orderID uuid.UUID) *Transaction {
	t.OrderID = &orderID
	return t
}

// WithMethod records the payment method
func (t *Transaction) WithMethod(method PaymentMethod) *Transaction {
	t.Method = method
	return t
}

// SetFee records the gateway fee taken from the amount
func (t *Transaction) SetFee(fee decimal.Decimal) error {
	if fee.IsNegative() || fee.GreaterThan(t.Amount) {
		return shared.NewDomainError("INVALID_FEE", "Fee must be between zero and the amount")
	}
	t.Fee = fee
	t.UpdatedAt = time.Now()
	return nil
}

// MarkProcessing records the gateway accepting the transaction
func (t *Transaction) MarkProcessing(gatewayReference string) error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transactions can start processing")
	}

	t.Status = TransactionStatusProcessing
	t.GatewayReference = gatewayReference
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// MarkSuccess records gateway confirmation
func (t *Transaction) MarkSuccess(gatewayResponse string) error {
	if t.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", "Transaction already finished")
	}

	now := time.Now()
	t.Status = TransactionStatusSuccess
	t.GatewayResponse = gatewayResponse
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransactionSucceededEvent(t))

	return nil
}

// MarkFailed records gateway rejection
func (t *Transaction) MarkFailed(reason, gatewayResponse string) error {
	if t.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", "Transaction already finished")
	}

	now := time.Now()
	t.Status = TransactionStatusFailed
	t.FailureReason = reason
	t.GatewayResponse = gatewayResponse
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTransactionFailedEvent(t))

	return nil
}

// Cancel abandons a transaction that never reached the gateway
func (t *Transaction) Cancel() error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transactions can be cancelled")
	}

	now := time.Now()
	t.Status = TransactionStatusCancelled
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	return nil
}

// GetAmountMoney returns the amount as a Money value object
func (t *Transaction) GetAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(t.Amount, t.Currency)
	return m
}

// NetAmount returns the amount after gateway fees
func (t *Transaction) NetAmount() decimal.Decimal {
	return t.Amount.Sub(t.Fee)
}

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByReference(ctx context.Context, reference string) (*Transaction, error)
	FindByGatewayReference(ctx context.Context, gatewayReference string) (*Transaction, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Transaction, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Transaction, error)
	FindByStatus(ctx context.Context, status TransactionStatus, filter shared.Filter) ([]Transaction, error)
	Save(ctx context.Context, tx *Transaction) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
