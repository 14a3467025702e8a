package comms

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// MessageType classifies outbound messages and selects templates
type MessageType string

const (
	MessageTypeOTP                 MessageType = "otp"
	MessageTypeOrderConfirmation   MessageType = "order_confirmation"
	MessageTypePaymentNotification MessageType = "payment_notification"
	MessageTypeDeliveryUpdate      MessageType = "delivery_update"
	MessageTypePriceAlert          MessageType = "price_alert"
	MessageTypeWeatherAlert        MessageType = "weather_alert"
	MessageTypeMarketing           MessageType = "marketing"
	MessageTypeWelcome             MessageType = "welcome"
)

// IsValid checks if the message type is valid
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeOTP, MessageTypeOrderConfirmation, MessageTypePaymentNotification,
		MessageTypeDeliveryUpdate, MessageTypePriceAlert, MessageTypeWeatherAlert,
		MessageTypeMarketing, MessageTypeWelcome:
		return true
	}
	return false
}

// SupportedLanguages are the BCP-47 tags templates can be authored in.
// English first: it is the matcher fallback.
var SupportedLanguages = []language.Tag{
	language.English,          // en
	language.MustParse("tw"),  // Twi
	language.MustParse("ee"),  // Ewe
	language.MustParse("gaa"), // Ga
	language.MustParse("ha"),  // Hausa
	language.MustParse("yo"),  // Yoruba
	language.MustParse("ig"),  // Igbo
	language.Swahili,          // sw
	language.MustParse("lg"),  // Luganda
	language.Amharic,          // am
	language.French,           // fr
	language.Afrikaans,        // af
	language.Zulu,             // zu
	language.MustParse("xh"),  // Xhosa
	language.Portuguese,       // pt
}

// languageMatcher picks the best supported language for a user preference
var languageMatcher = language.NewMatcher(SupportedLanguages)

// MatchLanguage resolves a user's preferred language tag to one of the
// supported template languages, falling back to English
func MatchLanguage(preferred string) string {
	tag, err := language.Parse(preferred)
	if err != nil {
		return "en"
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return "en"
	}
	base, _ := SupportedLanguages[idx].Base()
	return base.String()
}

// SMSTemplate is a reusable message body with {variable} placeholders
type SMSTemplate struct {
	shared.BaseAggregateRoot
	Type           MessageType `gorm:"type:varchar(30);not null;uniqueIndex:idx_template_type_lang,priority:1"`
	Language       string      `gorm:"type:varchar(10);not null;uniqueIndex:idx_template_type_lang,priority:2"`
	Name           string      `gorm:"type:varchar(100);not null"`
	Content        string      `gorm:"type:text;not null"`
	CharacterCount int         `gorm:"not null"`
	IsDefault      bool        `gorm:"not null;default:false"`
	Active         bool        `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SMSTemplate) TableName() string {
	return "sms_templates"
}

// NewSMSTemplate creates a template. The character count is derived
// from the content and recomputed on every change.
func NewSMSTemplate(msgType MessageType, lang, name, content string) (*SMSTemplate, error) {
	if !msgType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MESSAGE_TYPE", "Unknown message type")
	}
	if _, err := language.Parse(lang); err != nil {
		return nil, shared.NewDomainError("INVALID_LANGUAGE", "Language must be a valid BCP-47 tag")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if content == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Template content cannot be empty")
	}

	return &SMSTemplate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              msgType,
		Language:          lang,
		Name:              name,
		Content:           content,
		CharacterCount:    utf8.RuneCountInString(content),
		Active:            true,
	}, nil
}

// UpdateContent replaces the template body and recomputes the count
func (t *SMSTemplate) UpdateContent(content string) error {
	if content == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Template content cannot be empty")
	}

	t.Content = content
	t.CharacterCount = utf8.RuneCountInString(content)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// MarkDefault flags this template as the fallback for its type
func (t *SMSTemplate) MarkDefault() {
	t.IsDefault = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Activate enables the template
func (t *SMSTemplate) Activate() {
	t.Active = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Deactivate disables the template
func (t *SMSTemplate) Deactivate() {
	t.Active = false
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Render substitutes {name} placeholders with the given variables.
// Unresolved placeholders are an error so broken messages never send.
func (t *SMSTemplate) Render(vars map[string]string) (string, error) {
	rendered := t.Content
	for k, v := range vars {
		rendered = strings.ReplaceAll(rendered, "{"+k+"}", v)
	}

	if open := strings.Index(rendered, "{"); open >= 0 {
		if close := strings.Index(rendered[open:], "}"); close > 0 {
			missing := rendered[open+1 : open+close]
			return "", shared.NewDomainError("MISSING_VARIABLE", fmt.Sprintf("Template variable %q was not provided", missing))
		}
	}

	return rendered, nil
}

// Placeholders returns the variable names the template expects
func (t *SMSTemplate) Placeholders() []string {
	var names []string
	content := t.Content
	for {
		open := strings.Index(content, "{")
		if open < 0 {
			break
		}
		close := strings.Index(content[open:], "}")
		if close <= 1 {
			break
		}
		names = append(names, content[open+1:open+close])
		content = content[open+close+1:]
	}
	return names
}

// SMSTemplateRepository defines the interface for template persistence
type SMSTemplateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SMSTemplate, error)

	// FindByTypeAndLanguage finds the active template for a type in a language
	FindByTypeAndLanguage(ctx context.Context, msgType MessageType, lang string) (*SMSTemplate, error)

	// FindDefault finds the default template for a type
	FindDefault(ctx context.Context, msgType MessageType) (*SMSTemplate, error)

	FindByType(ctx context.Context, msgType MessageType) ([]SMSTemplate, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]SMSTemplate, error)
	Save(ctx context.Context, template *SMSTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}
