package comms

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/comms"
)

// SMSGateway sends messages through an external SMS provider.
// Implementations live in infrastructure/sms.
type SMSGateway interface {
	// Send dispatches a queued message and returns the provider's message ID
	Send(ctx context.Context, message *comms.SMSMessage, provider *comms.SMSProvider) (string, error)

	// DeliveryStatus polls the provider for a previously sent message
	DeliveryStatus(ctx context.Context, providerMessageID string) (comms.MessageStatus, error)
}

// EmailSender delivers transactional email, used for email OTP codes
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Throttle rate-limits OTP requests per identifier.
// Implementations live in infrastructure/cache.
type Throttle interface {
	// Allow reports whether another request fits in the window and
	// counts this one when it does
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
