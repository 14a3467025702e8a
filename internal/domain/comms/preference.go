package comms

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CommunicationPreference stores a user's channel and language choices
type CommunicationPreference struct {
	shared.BaseAggregateRoot
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	SMSEnabled        bool      `gorm:"not null;default:true"`
	EmailEnabled      bool      `gorm:"not null;default:true"`
	MarketingEnabled  bool      `gorm:"not null;default:false"`
	PreferredLanguage string    `gorm:"type:varchar(10);not null;default:'en'"`
	QuietHoursStart   *int      // hour of day 0-23, nil disables quiet hours
	QuietHoursEnd     *int
}

// TableName returns the table name for GORM
func (CommunicationPreference) TableName() string {
	return "communication_preferences"
}

// NewCommunicationPreference creates defaults for a user
func NewCommunicationPreference(userID uuid.UUID) (*CommunicationPreference, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}

	return &CommunicationPreference{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		SMSEnabled:        true,
		EmailEnabled:      true,
		PreferredLanguage: "en",
	}, nil
}

// SetLanguage sets the preferred language, resolved against the
// supported template languages
func (p *CommunicationPreference) SetLanguage(lang string) {
	p.PreferredLanguage = MatchLanguage(lang)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetChannels toggles the delivery channels
func (p *CommunicationPreference) SetChannels(sms, email, marketing bool) {
	p.SMSEnabled = sms
	p.EmailEnabled = email
	p.MarketingEnabled = marketing
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetQuietHours suppresses non-critical messages between start and end hours
func (p *CommunicationPreference) SetQuietHours(start, end int) error {
	if start < 0 || start > 23 || end < 0 || end > 23 {
		return shared.NewDomainError("INVALID_HOURS", "Quiet hours must be between 0 and 23")
	}
	p.QuietHoursStart = &start
	p.QuietHoursEnd = &end
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ClearQuietHours disables quiet hours
func (p *CommunicationPreference) ClearQuietHours() {
	p.QuietHoursStart = nil
	p.QuietHoursEnd = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// InQuietHours reports whether t falls inside the user's quiet window.
// Windows may wrap midnight (e.g. 21 to 6).
func (p *CommunicationPreference) InQuietHours(t time.Time) bool {
	if p.QuietHoursStart == nil || p.QuietHoursEnd == nil {
		return false
	}
	hour := t.Hour()
	start, end := *p.QuietHoursStart, *p.QuietHoursEnd
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// AllowsMessage reports whether a message of the given type may be sent
// over SMS at time t. OTPs always pass: blocking them locks users out.
func (p *CommunicationPreference) AllowsMessage(msgType MessageType, t time.Time) bool {
	if msgType == MessageTypeOTP {
		return true
	}
	if !p.SMSEnabled {
		return false
	}
	if msgType == MessageTypeMarketing && !p.MarketingEnabled {
		return false
	}
	return !p.InQuietHours(t)
}

// PreferenceRepository defines the interface for preference persistence
type PreferenceRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*CommunicationPreference, error)
	Save(ctx context.Context, pref *CommunicationPreference) error
}

// CommunicationChannel names a delivery channel in the log
type CommunicationChannel string

const (
	ChannelSMS   CommunicationChannel = "sms"
	ChannelEmail CommunicationChannel = "email"
)

// CommunicationLog is an append-only record of every outbound communication
type CommunicationLog struct {
	shared.BaseEntity
	UserID      *uuid.UUID           `gorm:"type:uuid;index"`
	Channel     CommunicationChannel `gorm:"type:varchar(10);not null"`
	Recipient   string               `gorm:"type:varchar(255);not null;index"`
	MessageType MessageType          `gorm:"type:varchar(30);not null"`
	Subject     string               `gorm:"type:varchar(255)"`
	Succeeded   bool                 `gorm:"not null"`
	Detail      string               `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (CommunicationLog) TableName() string {
	return "communication_logs"
}

// NewCommunicationLog records one outbound communication attempt
func NewCommunicationLog(userID *uuid.UUID, channel CommunicationChannel, recipient string, msgType MessageType, succeeded bool, detail string) *CommunicationLog {
	return &CommunicationLog{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Channel:     channel,
		Recipient:   recipient,
		MessageType: msgType,
		Succeeded:   succeeded,
		Detail:      detail,
	}
}

// CommunicationLogRepository defines the interface for log persistence
type CommunicationLogRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]CommunicationLog, error)
	FindByRecipient(ctx context.Context, recipient string, filter shared.Filter) ([]CommunicationLog, error)
	Save(ctx context.Context, log *CommunicationLog) error
}
