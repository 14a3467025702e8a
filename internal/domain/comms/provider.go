package comms

import (
	"context"
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProviderCode identifies an SMS gateway integration
type ProviderCode string

const (
	ProviderAVRSMS         ProviderCode = "avrsms"
	ProviderHubtel         ProviderCode = "hubtel"
	ProviderAfricasTalking ProviderCode = "africas_talking"
	ProviderTwilio         ProviderCode = "twilio"
)

// IsValid checks if the provider code is valid
func (c ProviderCode) IsValid() bool {
	switch c {
	case ProviderAVRSMS, ProviderHubtel, ProviderAfricasTalking, ProviderTwilio:
		return true
	}
	return false
}

// phonePrefixCountries maps dialing prefixes to ISO country codes.
// Longest prefix wins; unknown prefixes default to GH.
var phonePrefixCountries = map[string]string{
	"+233": "GH",
	"+234": "NG",
	"+254": "KE",
	"+256": "UG",
	"+27":  "ZA",
}

// CountryFromPhone derives the ISO country code from an E.164 number
func CountryFromPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	best := ""
	for prefix := range phonePrefixCountries {
		if strings.HasPrefix(phone, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return "GH"
	}
	return phonePrefixCountries[best]
}

// SMSProvider is a configured SMS gateway with routing metadata
type SMSProvider struct {
	shared.BaseAggregateRoot
	Code       ProviderCode    `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name       string          `gorm:"type:varchar(100);not null"`
	Countries  string          `gorm:"type:varchar(255)"` // comma-separated ISO codes; empty serves all
	CostPerSMS decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`
	Priority   int             `gorm:"not null;default:0"` // higher wins
	DailyLimit int             `gorm:"not null;default:0"` // 0 = unlimited
	Active     bool            `gorm:"not null;default:true"`
	SenderID   string          `gorm:"type:varchar(11)"`
}

// TableName returns the table name for GORM
func (SMSProvider) TableName() string {
	return "sms_providers"
}

// NewSMSProvider creates a provider configuration
func NewSMSProvider(code ProviderCode, name string, countries []string, priority int) (*SMSProvider, error) {
	if !code.IsValid() {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Unknown provider code")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Provider name cannot be empty")
	}

	normalized := make([]string, 0, len(countries))
	for _, c := range countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if len(c) != 2 {
			return nil, shared.NewDomainError("INVALID_COUNTRY", "Country codes must be two-letter ISO codes")
		}
		normalized = append(normalized, c)
	}

	return &SMSProvider{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Countries:         strings.Join(normalized, ","),
		CostPerSMS:        decimal.Zero,
		Priority:          priority,
		Active:            true,
	}, nil
}

// SupportsCountry reports whether the provider routes to the country.
// A provider with no country list serves every country.
func (p *SMSProvider) SupportsCountry(country string) bool {
	if p.Countries == "" {
		return true
	}
	country = strings.ToUpper(country)
	for _, c := range strings.Split(p.Countries, ",") {
		if c == country {
			return true
		}
	}
	return false
}

// SetCost sets the per-message cost
func (p *SMSProvider) SetCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Cost cannot be negative")
	}
	p.CostPerSMS = cost
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetSenderID sets the alphanumeric sender ID (max 11 chars per GSM spec)
func (p *SMSProvider) SetSenderID(senderID string) error {
	if len(senderID) > 11 {
		return shared.NewDomainError("INVALID_SENDER_ID", "Sender ID cannot exceed 11 characters")
	}
	p.SenderID = senderID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetDailyLimit caps messages per day through this provider
func (p *SMSProvider) SetDailyLimit(limit int) error {
	if limit < 0 {
		return shared.NewDomainError("INVALID_LIMIT", "Daily limit cannot be negative")
	}
	p.DailyLimit = limit
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Activate enables the provider for routing
func (p *SMSProvider) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate removes the provider from routing
func (p *SMSProvider) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SelectProvider picks the highest-priority active provider that
// supports the recipient's country
func SelectProvider(providers []SMSProvider, recipientPhone string) (*SMSProvider, error) {
	country := CountryFromPhone(recipientPhone)

	var best *SMSProvider
	for idx := range providers {
		p := &providers[idx]
		if !p.Active || !p.SupportsCountry(country) {
			continue
		}
		if best == nil || p.Priority > best.Priority {
			best = p
		}
	}
	if best == nil {
		return nil, shared.NewDomainError("NO_PROVIDER", "No active SMS provider covers this destination")
	}
	return best, nil
}

// SMSProviderRepository defines the interface for provider persistence
type SMSProviderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SMSProvider, error)
	FindByCode(ctx context.Context, code ProviderCode) (*SMSProvider, error)
	FindActive(ctx context.Context) ([]SMSProvider, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]SMSProvider, error)
	Save(ctx context.Context, provider *SMSProvider) error
	Delete(ctx context.Context, id uuid.UUID) error
}
