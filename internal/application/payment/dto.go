package payment

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest starts a gateway checkout for an order
type InitiatePaymentRequest struct {
	OrderID     uuid.UUID `json:"order_id" binding:"required"`
	GatewayCode string    `json:"gateway_code" binding:"required,oneof=paystack flutterwave mtn_momo stripe"`
	Method      string    `json:"method" binding:"required,oneof=card mobile_money bank_transfer"`
	CallbackURL string    `json:"callback_url" binding:"omitempty,url"`
}

// InitiatePaymentResponse carries the checkout handoff to the client
type InitiatePaymentResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	CheckoutURL string              `json:"checkout_url"`
}

// TransactionResponse is the outward representation of a transaction
type TransactionResponse struct {
	ID               uuid.UUID       `json:"id"`
	Reference        string          `json:"reference"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	UserID           uuid.UUID       `json:"user_id"`
	GatewayCode      string          `json:"gateway_code"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Fee              decimal.Decimal `json:"fee"`
	Method           string          `json:"method,omitempty"`
	Status           string          `json:"status"`
	GatewayReference string          `json:"gateway_reference,omitempty"`
	FailureReason    string          `json:"failure_reason,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a domain transaction
func ToTransactionResponse(t *payment.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:               t.ID,
		Reference:        t.Reference,
		OrderID:          t.OrderID,
		UserID:           t.UserID,
		GatewayCode:      string(t.GatewayCode),
		Type:             string(t.Type),
		Amount:           t.Amount,
		Currency:         string(t.Currency),
		Fee:              t.Fee,
		Method:           string(t.Method),
		Status:           string(t.Status),
		GatewayReference: t.GatewayReference,
		FailureReason:    t.FailureReason,
		CompletedAt:      t.CompletedAt,
		CreatedAt:        t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions
func ToTransactionResponses(txs []payment.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = ToTransactionResponse(&txs[i])
	}
	return responses
}

// MilestoneResponse is one staged release of an escrow account
type MilestoneResponse struct {
	Type              string          `json:"type"`
	ReleasePercentage decimal.Decimal `json:"release_percentage"`
	Released          bool            `json:"released"`
	ReleasedAt        *time.Time      `json:"released_at,omitempty"`
}

// EscrowResponse is the outward representation of an escrow account
type EscrowResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderID         uuid.UUID           `json:"order_id"`
	BuyerID         uuid.UUID           `json:"buyer_id"`
	SellerID        uuid.UUID           `json:"seller_id"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ReleasedAmount  decimal.Decimal     `json:"released_amount"`
	RefundedAmount  decimal.Decimal     `json:"refunded_amount"`
	HeldAmount      decimal.Decimal     `json:"held_amount"`
	Currency        string              `json:"currency"`
	Status          string              `json:"status"`
	Milestones      []MilestoneResponse `json:"milestones"`
	AutoReleaseDays int                 `json:"auto_release_days"`
	FundedAt        *time.Time          `json:"funded_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	ClosedAt        *time.Time          `json:"closed_at,omitempty"`
}

// ToEscrowResponse converts a domain escrow account
func ToEscrowResponse(e *payment.EscrowAccount) EscrowResponse {
	milestones := make([]MilestoneResponse, len(e.Milestones))
	for i, m := range e.Milestones {
		milestones[i] = MilestoneResponse{
			Type:              string(m.Type),
			ReleasePercentage: m.ReleasePercentage,
			Released:          m.Released,
			ReleasedAt:        m.ReleasedAt,
		}
	}
	return EscrowResponse{
		ID:              e.ID,
		OrderID:         e.OrderID,
		BuyerID:         e.BuyerID,
		SellerID:        e.SellerID,
		TotalAmount:     e.TotalAmount,
		ReleasedAmount:  e.ReleasedAmount,
		RefundedAmount:  e.RefundedAmount,
		HeldAmount:      e.HeldAmount(),
		Currency:        string(e.Currency),
		Status:          string(e.Status),
		Milestones:      milestones,
		AutoReleaseDays: e.AutoReleaseDays,
		FundedAt:        e.FundedAt,
		DeliveredAt:     e.DeliveredAt,
		ClosedAt:        e.ClosedAt,
	}
}

// RaiseDisputeRequest opens a dispute against held escrow funds
type RaiseDisputeRequest struct {
	Reason      string `json:"reason" binding:"required,oneof=not_delivered quality_issue wrong_item quantity_short other"`
	Description string `json:"description" binding:"required"`
}

// ResolveDisputeRequest settles a dispute
type ResolveDisputeRequest struct {
	InFavorOfBuyer bool            `json:"in_favor_of_buyer"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
	Resolution     string          `json:"resolution" binding:"required"`
}

// DisputeResponse is the outward representation of a dispute
type DisputeResponse struct {
	ID              uuid.UUID       `json:"id"`
	EscrowAccountID uuid.UUID       `json:"escrow_account_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	RaisedBy        uuid.UUID       `json:"raised_by"`
	Reason          string          `json:"reason"`
	Description     string          `json:"description"`
	Status          string          `json:"status"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`
	Resolution      string          `json:"resolution,omitempty"`
	ResolvedBy      *uuid.UUID      `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToDisputeResponse converts a domain dispute
func ToDisputeResponse(d *payment.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:              d.ID,
		EscrowAccountID: d.EscrowAccountID,
		OrderID:         d.OrderID,
		RaisedBy:        d.RaisedBy,
		Reason:          string(d.Reason),
		Description:     d.Description,
		Status:          string(d.Status),
		RefundAmount:    d.RefundAmount,
		Resolution:      d.Resolution,
		ResolvedBy:      d.ResolvedBy,
		ResolvedAt:      d.ResolvedAt,
		CreatedAt:       d.CreatedAt,
	}
}

// CreateGatewayRequest registers a payment gateway (admin)
type CreateGatewayRequest struct {
	Code       string   `json:"code" binding:"required,oneof=paystack flutterwave mtn_momo stripe"`
	Name       string   `json:"name" binding:"required"`
	Currencies []string `json:"currencies" binding:"required,min=1"`
	Methods    []string `json:"methods" binding:"required,min=1"`
}

// GatewayResponse is the outward representation of a gateway
type GatewayResponse struct {
	ID         uuid.UUID       `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	FeePercent decimal.Decimal `json:"fee_percent"`
	Active     bool            `json:"active"`
}
