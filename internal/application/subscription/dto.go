package subscription

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanLimitsRequest caps plan consumption, -1 meaning unlimited
type PlanLimitsRequest struct {
	ProductListings int  `json:"product_listings" binding:"min=-1"`
	SMSCredits      int  `json:"sms_credits" binding:"min=-1"`
	WarehouseAccess bool `json:"warehouse_access"`
}

// CreatePlanRequest registers a purchasable plan (admin)
type CreatePlanRequest struct {
	Name        string            `json:"name" binding:"required,max=100"`
	Tier        string            `json:"tier" binding:"required,oneof=free basic premium enterprise"`
	Audience    string            `json:"audience" binding:"required,oneof=farmer buyer institution"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Period      string            `json:"period" binding:"required,oneof=monthly quarterly yearly"`
	Limits      PlanLimitsRequest `json:"limits"`
}

// UpdatePlanPricingRequest changes a plan's price for future periods
type UpdatePlanPricingRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// SubscribeRequest starts a subscription on a plan
type SubscribeRequest struct {
	PlanID uuid.UUID `json:"plan_id" binding:"required"`
}

// CancelSubscriptionRequest turns off auto-renew
type CancelSubscriptionRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// PlanResponse is the outward representation of a plan
type PlanResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Tier            string          `json:"tier"`
	Audience        string          `json:"audience"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	Period          string          `json:"period"`
	ProductListings int             `json:"product_listings"`
	SMSCredits      int             `json:"sms_credits"`
	WarehouseAccess bool            `json:"warehouse_access"`
	Active          bool            `json:"active"`
}

// ToPlanResponse converts a domain plan
func ToPlanResponse(p *subscription.SubscriptionPlan) PlanResponse {
	return PlanResponse{
		ID:              p.ID,
		Name:            p.Name,
		Tier:            string(p.Tier),
		Audience:        string(p.Audience),
		Description:     p.Description,
		Price:           p.Price,
		Currency:        string(p.Currency),
		Period:          string(p.Period),
		ProductListings: p.ProductListings,
		SMSCredits:      p.SMSCredits,
		WarehouseAccess: p.WarehouseAccess,
		Active:          p.Active,
	}
}

// ToPlanResponses converts a slice of plans
func ToPlanResponses(plans []subscription.SubscriptionPlan) []PlanResponse {
	responses := make([]PlanResponse, len(plans))
	for i := range plans {
		responses[i] = ToPlanResponse(&plans[i])
	}
	return responses
}

// SubscriptionResponse is the outward representation of a subscription
type SubscriptionResponse struct {
	ID                uuid.UUID     `json:"id"`
	UserID            uuid.UUID     `json:"user_id"`
	PlanID            uuid.UUID     `json:"plan_id"`
	Plan              *PlanResponse `json:"plan,omitempty"`
	Status            string        `json:"status"`
	PeriodStart       time.Time     `json:"period_start"`
	PeriodEnd         time.Time     `json:"period_end"`
	AutoRenew         bool          `json:"auto_renew"`
	ListingsUsed      int           `json:"listings_used"`
	SMSCreditsUsed    int           `json:"sms_credits_used"`
	RemainingListings int           `json:"remaining_listings"`
	RemainingSMS      int           `json:"remaining_sms"`
	CancelledAt       *time.Time    `json:"cancelled_at,omitempty"`
}

// ToSubscriptionResponse converts a domain subscription
func ToSubscriptionResponse(s *subscription.UserSubscription) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:                s.ID,
		UserID:            s.UserID,
		PlanID:            s.PlanID,
		Status:            string(s.Status),
		PeriodStart:       s.PeriodStart,
		PeriodEnd:         s.PeriodEnd,
		AutoRenew:         s.AutoRenew,
		ListingsUsed:      s.ListingsUsed,
		SMSCreditsUsed:    s.SMSCreditsUsed,
		RemainingListings: s.Remaining(subscription.UsageProductListings),
		RemainingSMS:      s.Remaining(subscription.UsageSMSCredits),
		CancelledAt:       s.CancelledAt,
	}
	if s.Plan != nil {
		plan := ToPlanResponse(s.Plan)
		resp.Plan = &plan
	}
	return resp
}

// InvoiceResponse is the outward representation of an invoice
type InvoiceResponse struct {
	ID             uuid.UUID       `json:"id"`
	InvoiceNumber  string          `json:"invoice_number"`
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	Status         string          `json:"status"`
	DueAt          time.Time       `json:"due_at"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// ToInvoiceResponse converts a domain invoice
func ToInvoiceResponse(i *subscription.SubscriptionInvoice) InvoiceResponse {
	return InvoiceResponse{
		ID:             i.ID,
		InvoiceNumber:  i.InvoiceNumber,
		SubscriptionID: i.SubscriptionID,
		Amount:         i.Amount,
		Currency:       string(i.Currency),
		PeriodStart:    i.PeriodStart,
		PeriodEnd:      i.PeriodEnd,
		Status:         string(i.Status),
		DueAt:          i.DueAt,
		PaidAt:         i.PaidAt,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []subscription.SubscriptionInvoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}
