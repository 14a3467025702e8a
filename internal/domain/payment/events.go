package payment

import (
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for the payment domain
const (
	EventTransactionCreated   = "payment.transaction.created"
	EventTransactionSucceeded = "payment.transaction.succeeded"
	EventTransactionFailed    = "payment.transaction.failed"
	EventEscrowFunded         = "payment.escrow.funded"
	EventEscrowReleased       = "payment.escrow.released"
	EventEscrowRefunded       = "payment.escrow.refunded"
	EventDisputeOpened        = "payment.dispute.opened"
)

// TransactionCreatedEvent is raised when a transaction is initiated
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"reference"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Gateway   GatewayCode     `json:"gateway"`
}

// NewTransactionCreatedEvent creates a new transaction created event
func NewTransactionCreatedEvent(tx *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTransactionCreated, "Transaction", tx.ID),
		Reference:       tx.Reference,
		Type:            tx.Type,
		Amount:          tx.Amount,
		Currency:        string(tx.Currency),
		Gateway:         tx.GatewayCode,
	}
}

// TransactionSucceededEvent is raised when the gateway confirms a transaction
type TransactionSucceededEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"reference"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Gateway   GatewayCode     `json:"gateway"`
	OrderID   string          `json:"order_id,omitempty"`
}

// NewTransactionSucceededEvent creates a new transaction succeeded event
func NewTransactionSucceededEvent(tx *Transaction) *TransactionSucceededEvent {
	e := &TransactionSucceededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTransactionSucceeded, "Transaction", tx.ID),
		Reference:       tx.Reference,
		Type:            tx.Type,
		Amount:          tx.Amount,
		Currency:        string(tx.Currency),
		Gateway:         tx.GatewayCode,
	}
	if tx.OrderID != nil {
		e.OrderID = tx.OrderID.String()
	}
	return e
}

// TransactionFailedEvent is raised when the gateway rejects a transaction
type TransactionFailedEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"reference"`
	Type      TransactionType `json:"type"`
	Gateway   GatewayCode     `json:"gateway"`
	Reason    string          `json:"reason"`
}

// NewTransactionFailedEvent creates a new transaction failed event
func NewTransactionFailedEvent(tx *Transaction) *TransactionFailedEvent {
	return &TransactionFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTransactionFailed, "Transaction", tx.ID),
		Reference:       tx.Reference,
		Type:            tx.Type,
		Gateway:         tx.GatewayCode,
		Reason:          tx.FailureReason,
	}
}

// EscrowFundedEvent is raised when buyer funds land in escrow
type EscrowFundedEvent struct {
	shared.BaseDomainEvent
	OrderID  string          `json:"order_id"`
	BuyerID  string          `json:"buyer_id"`
	SellerID string          `json:"seller_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewEscrowFundedEvent creates a new escrow funded event
func NewEscrowFundedEvent(e *EscrowAccount) *EscrowFundedEvent {
	return &EscrowFundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEscrowFunded, "EscrowAccount", e.ID),
		OrderID:         e.OrderID.String(),
		BuyerID:         e.BuyerID.String(),
		SellerID:        e.SellerID.String(),
		Amount:          e.TotalAmount,
		Currency:        string(e.Currency),
	}
}

// EscrowReleasedEvent is raised when a milestone releases funds to the seller
type EscrowReleasedEvent struct {
	shared.BaseDomainEvent
	OrderID   string          `json:"order_id"`
	SellerID  string          `json:"seller_id"`
	Milestone MilestoneType   `json:"milestone"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Final     bool            `json:"final"`
}

// NewEscrowReleasedEvent creates a new escrow released event
func NewEscrowReleasedEvent(e *EscrowAccount, milestone MilestoneType, amount decimal.Decimal) *EscrowReleasedEvent {
	return &EscrowReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEscrowReleased, "EscrowAccount", e.ID),
		OrderID:         e.OrderID.String(),
		SellerID:        e.SellerID.String(),
		Milestone:       milestone,
		Amount:          amount,
		Currency:        string(e.Currency),
		Final:           e.Status == EscrowStatusReleased,
	}
}

// EscrowRefundedEvent is raised when escrow funds return to the buyer
type EscrowRefundedEvent struct {
	shared.BaseDomainEvent
	OrderID  string          `json:"order_id"`
	BuyerID  string          `json:"buyer_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewEscrowRefundedEvent creates a new escrow refunded event
func NewEscrowRefundedEvent(e *EscrowAccount, amount decimal.Decimal) *EscrowRefundedEvent {
	return &EscrowRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEscrowRefunded, "EscrowAccount", e.ID),
		OrderID:         e.OrderID.String(),
		BuyerID:         e.BuyerID.String(),
		Amount:          amount,
		Currency:        string(e.Currency),
	}
}

// DisputeOpenedEvent is raised when a buyer opens a dispute
type DisputeOpenedEvent struct {
	shared.BaseDomainEvent
	OrderID string        `json:"order_id"`
	Reason  DisputeReason `json:"reason"`
}

// NewDisputeOpenedEvent creates a new dispute opened event
func NewDisputeOpenedEvent(d *Dispute) *DisputeOpenedEvent {
	return &DisputeOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDisputeOpened, "Dispute", d.ID),
		OrderID:         d.OrderID.String(),
		Reason:          d.Reason,
	}
}
