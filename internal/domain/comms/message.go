package comms

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MessageStatus tracks an SMS through its delivery lifecycle
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusQueued    MessageStatus = "queued"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusFailed    MessageStatus = "failed"
)

// SMSMessage is one outbound SMS and its provider bookkeeping
type SMSMessage struct {
	shared.BaseAggregateRoot
	Recipient         string          `gorm:"type:varchar(20);not null;index"`
	SenderID          string          `gorm:"type:varchar(11)"`
	Content           string          `gorm:"type:text;not null"`
	MessageType       MessageType     `gorm:"type:varchar(30);not null;index"`
	Language          string          `gorm:"type:varchar(10)"`
	Status            MessageStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	ProviderCode      ProviderCode    `gorm:"type:varchar(30)"`
	ProviderMessageID string          `gorm:"type:varchar(100);index"`
	ProviderResponse  string          `gorm:"type:text"`
	FailureReason     string          `gorm:"type:varchar(255)"`
	Cost              decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`
	UserID            *uuid.UUID      `gorm:"type:uuid;index"`
	QueuedAt          *time.Time
	SentAt            *time.Time
	DeliveredAt       *time.Time
}

// TableName returns the table name for GORM
func (SMSMessage) TableName() string {
	return "sms_messages"
}

// NewSMSMessage creates a message awaiting dispatch
func NewSMSMessage(recipient, content string, msgType MessageType, lang string, userID *uuid.UUID) (*SMSMessage, error) {
	if err := ValidatePhone(recipient); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Message content cannot be empty")
	}
	if !msgType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MESSAGE_TYPE", "Unknown message type")
	}

	return &SMSMessage{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Recipient:         recipient,
		Content:           content,
		MessageType:       msgType,
		Language:          lang,
		Status:            MessageStatusPending,
		Cost:              decimal.Zero,
	}, nil
}

// Queue records that the message was handed to a provider
func (m *SMSMessage) Queue(provider *SMSProvider) error {
	if m.Status != MessageStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending messages can be queued")
	}

	now := time.Now()
	m.Status = MessageStatusQueued
	m.ProviderCode = provider.Code
	m.SenderID = provider.SenderID
	m.Cost = provider.CostPerSMS
	m.QueuedAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	return nil
}

// MarkSent records the provider's acceptance
func (m *SMSMessage) MarkSent(providerMessageID, providerResponse string) error {
	if m.Status != MessageStatusQueued && m.Status != MessageStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Message was already dispatched")
	}

	now := time.Now()
	m.Status = MessageStatusSent
	m.ProviderMessageID = providerMessageID
	m.ProviderResponse = providerResponse
	m.SentAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	return nil
}

// MarkDelivered records a delivery confirmation from the provider
func (m *SMSMessage) MarkDelivered() error {
	if m.Status != MessageStatusSent {
		return shared.NewDomainError("INVALID_STATE", "Only sent messages can be delivered")
	}

	now := time.Now()
	m.Status = MessageStatusDelivered
	m.DeliveredAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	return nil
}

// MarkFailed records a dispatch or delivery failure
func (m *SMSMessage) MarkFailed(reason string) error {
	if m.Status == MessageStatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Delivered messages cannot fail")
	}

	m.Status = MessageStatusFailed
	m.FailureReason = reason
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// IsFinal reports whether the message reached a terminal state
func (m *SMSMessage) IsFinal() bool {
	return m.Status == MessageStatusDelivered || m.Status == MessageStatusFailed
}

// ValidatePhone checks a phone number is E.164-shaped
func ValidatePhone(phone string) error {
	if len(phone) < 8 || len(phone) > 16 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number must be 8-16 characters")
	}
	if phone[0] != '+' {
		return shared.NewDomainError("INVALID_PHONE", "Phone number must start with +")
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			return shared.NewDomainError("INVALID_PHONE", "Phone number may only contain digits after +")
		}
	}
	return nil
}

// SMSMessageRepository defines the interface for message persistence
type SMSMessageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SMSMessage, error)
	FindByProviderMessageID(ctx context.Context, providerMessageID string) (*SMSMessage, error)
	FindByRecipient(ctx context.Context, recipient string, filter shared.Filter) ([]SMSMessage, error)
	FindByStatus(ctx context.Context, status MessageStatus, filter shared.Filter) ([]SMSMessage, error)

	// FindUndelivered finds sent messages older than the cutoff lacking a
	// delivery confirmation, for the status-poll job
	FindUndelivered(ctx context.Context, cutoff time.Time) ([]SMSMessage, error)

	// CountSentToday counts messages dispatched through a provider since midnight
	CountSentToday(ctx context.Context, provider ProviderCode, now time.Time) (int64, error)

	Save(ctx context.Context, message *SMSMessage) error
}
