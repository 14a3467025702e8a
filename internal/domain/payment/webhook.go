package payment

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WebhookStatus tracks processing of an inbound gateway notification
type WebhookStatus string

const (
	WebhookStatusReceived  WebhookStatus = "received"
	WebhookStatusProcessed WebhookStatus = "processed"
	WebhookStatusFailed    WebhookStatus = "failed"
	WebhookStatusIgnored   WebhookStatus = "ignored"
)

// PaymentWebhook stores every gateway callback for idempotent processing.
// EventID is the gateway's own identifier, a repeat delivery of the same
// event is recorded once and never reprocessed.
type PaymentWebhook struct {
	shared.BaseAggregateRoot
	GatewayCode GatewayCode   `gorm:"type:varchar(20);not null;uniqueIndex:idx_webhooks_gateway_event"`
	EventID     string        `gorm:"type:varchar(100);not null;uniqueIndex:idx_webhooks_gateway_event"`
	EventType   string        `gorm:"type:varchar(50);not null"`
	Payload     string        `gorm:"type:text;not null"`
	Status      WebhookStatus `gorm:"type:varchar(20);not null;default:'received'"`
	Error       string        `gorm:"type:varchar(255)"`
	ProcessedAt *time.Time
}

// TableName returns the table name for GORM
func (PaymentWebhook) TableName() string {
	return "payment_webhooks"
}

// NewPaymentWebhook records an inbound gateway event
func NewPaymentWebhook(gateway GatewayCode, eventID, eventType, payload string) (*PaymentWebhook, error) {
	if !gateway.IsValid() {
		return nil, shared.NewDomainError("INVALID_GATEWAY", "Unknown gateway code")
	}
	if eventID == "" {
		return nil, shared.NewDomainError("INVALID_EVENT", "Webhook event ID cannot be empty")
	}
	if eventType == "" {
		return nil, shared.NewDomainError("INVALID_EVENT", "Webhook event type cannot be empty")
	}

	return &PaymentWebhook{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		GatewayCode:       gateway,
		EventID:           eventID,
		EventType:         eventType,
		Payload:           payload,
		Status:            WebhookStatusReceived,
	}, nil
}

// MarkProcessed records successful handling
func (w *PaymentWebhook) MarkProcessed() error {
	if w.Status == WebhookStatusProcessed {
		return shared.NewDomainError("ALREADY_PROCESSED", "Webhook has already been processed")
	}

	now := time.Now()
	w.Status = WebhookStatusProcessed
	w.ProcessedAt = &now
	w.UpdatedAt = now
	w.IncrementVersion()

	return nil
}

// MarkFailed records a handler error, the scheduler retries failed webhooks
func (w *PaymentWebhook) MarkFailed(errMsg string) {
	w.Status = WebhookStatusFailed
	w.Error = errMsg
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// MarkIgnored records an event type we do not act on
func (w *PaymentWebhook) MarkIgnored() {
	now := time.Now()
	w.Status = WebhookStatusIgnored
	w.ProcessedAt = &now
	w.UpdatedAt = now
	w.IncrementVersion()
}

// WebhookRepository defines the interface for webhook persistence
type WebhookRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentWebhook, error)
	FindByEventID(ctx context.Context, gateway GatewayCode, eventID string) (*PaymentWebhook, error)
	FindFailed(ctx context.Context, limit int) ([]PaymentWebhook, error)
	Save(ctx context.Context, webhook *PaymentWebhook) error
}
