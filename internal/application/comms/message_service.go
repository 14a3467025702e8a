package comms

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MessageService dispatches SMS through the configured providers
type MessageService struct {
	messageRepo  comms.SMSMessageRepository
	providerRepo comms.SMSProviderRepository
	templateRepo comms.SMSTemplateRepository
	prefRepo     comms.PreferenceRepository
	logRepo      comms.CommunicationLogRepository
	gateway      SMSGateway
	metrics      SMSMetricsRecorder
}

// SMSMetricsRecorder counts messages handed to a provider
type SMSMetricsRecorder interface {
	RecordSMSSent(ctx context.Context, provider, messageType string)
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageRepo comms.SMSMessageRepository,
	providerRepo comms.SMSProviderRepository,
	templateRepo comms.SMSTemplateRepository,
	prefRepo comms.PreferenceRepository,
	logRepo comms.CommunicationLogRepository,
	gateway SMSGateway,
) *MessageService {
	return &MessageService{
		messageRepo:  messageRepo,
		providerRepo: providerRepo,
		templateRepo: templateRepo,
		prefRepo:     prefRepo,
		logRepo:      logRepo,
		gateway:      gateway,
	}
}

// SetMetricsRecorder enables per-send metrics, nil disables them
func (s *MessageService) SetMetricsRecorder(rec SMSMetricsRecorder) {
	s.metrics = rec
}

// SendTemplatedRequest asks for a templated message to a recipient
type SendTemplatedRequest struct {
	Recipient string            `json:"recipient" binding:"required"`
	Type      comms.MessageType `json:"type" binding:"required"`
	Language  string            `json:"language"`
	Variables map[string]string `json:"variables"`
	UserID    *uuid.UUID        `json:"user_id"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID           uuid.UUID           `json:"id"`
	Recipient    string              `json:"recipient"`
	Content      string              `json:"content"`
	Type         comms.MessageType   `json:"type"`
	Language     string              `json:"language"`
	Status       comms.MessageStatus `json:"status"`
	ProviderCode comms.ProviderCode  `json:"provider_code,omitempty"`
	SentAt       *time.Time          `json:"sent_at,omitempty"`
	DeliveredAt  *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// ToMessageResponse converts a domain message to MessageResponse
func ToMessageResponse(m *comms.SMSMessage) MessageResponse {
	return MessageResponse{
		ID:           m.ID,
		Recipient:    m.Recipient,
		Content:      m.Content,
		Type:         m.MessageType,
		Language:     m.Language,
		Status:       m.Status,
		ProviderCode: m.ProviderCode,
		SentAt:       m.SentAt,
		DeliveredAt:  m.DeliveredAt,
		CreatedAt:    m.CreatedAt,
	}
}

// SendTemplated renders the template matching the recipient's language
// and dispatches it. Marketing messages honor the user's preferences,
// OTP messages always go out.
func (s *MessageService) SendTemplated(ctx context.Context, req SendTemplatedRequest) (*MessageResponse, error) {
	if req.UserID != nil && !s.allowed(ctx, *req.UserID, req.Type) {
		return nil, shared.NewDomainError("MESSAGE_BLOCKED", "Recipient preferences do not allow this message")
	}

	content, lang, err := s.renderContent(ctx, req.Type, req.Language, req.Variables)
	if err != nil {
		return nil, err
	}

	message, err := comms.NewSMSMessage(req.Recipient, content, req.Type, lang, req.UserID)
	if err != nil {
		return nil, err
	}

	return s.dispatch(ctx, message)
}

// SendRaw dispatches pre-rendered content, used by the AI content path
func (s *MessageService) SendRaw(ctx context.Context, recipient, content string, msgType comms.MessageType, lang string, userID *uuid.UUID) (*MessageResponse, error) {
	if userID != nil && !s.allowed(ctx, *userID, msgType) {
		return nil, shared.NewDomainError("MESSAGE_BLOCKED", "Recipient preferences do not allow this message")
	}

	message, err := comms.NewSMSMessage(recipient, content, msgType, lang, userID)
	if err != nil {
		return nil, err
	}

	return s.dispatch(ctx, message)
}

// BulkSendRequest asks for the same templated message to many recipients
type BulkSendRequest struct {
	Recipients []string          `json:"recipients" binding:"required,min=1,max=500,dive,required"`
	Type       comms.MessageType `json:"type" binding:"required"`
	Language   string            `json:"language"`
	Variables  map[string]string `json:"variables"`
}

// BulkSendResponse summarizes a bulk dispatch
type BulkSendResponse struct {
	Requested int      `json:"requested"`
	Sent      int      `json:"sent"`
	Failed    []string `json:"failed,omitempty"`
}

// SendBulk dispatches one templated message per recipient. Individual
// failures do not abort the batch, failed recipients come back in the
// response.
func (s *MessageService) SendBulk(ctx context.Context, req BulkSendRequest) (*BulkSendResponse, error) {
	content, lang, err := s.renderContent(ctx, req.Type, req.Language, req.Variables)
	if err != nil {
		return nil, err
	}

	resp := &BulkSendResponse{Requested: len(req.Recipients)}
	for _, recipient := range req.Recipients {
		message, err := comms.NewSMSMessage(recipient, content, req.Type, lang, nil)
		if err != nil {
			resp.Failed = append(resp.Failed, recipient)
			continue
		}
		if _, err := s.dispatch(ctx, message); err != nil {
			resp.Failed = append(resp.Failed, recipient)
			continue
		}
		resp.Sent++
	}
	return resp, nil
}

// GetByID retrieves a message by ID
func (s *MessageService) GetByID(ctx context.Context, id uuid.UUID) (*MessageResponse, error) {
	message, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMessageResponse(message)
	return &resp, nil
}

// ListByRecipient lists messages sent to a phone number
func (s *MessageService) ListByRecipient(ctx context.Context, recipient string, filter shared.Filter) ([]MessageResponse, error) {
	messages, err := s.messageRepo.FindByRecipient(ctx, recipient, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, ToMessageResponse(&messages[i]))
	}
	return responses, nil
}

// PollDeliveries asks the provider for the status of sent messages
// lacking a delivery receipt. Run by the scheduler.
func (s *MessageService) PollDeliveries(ctx context.Context, olderThan time.Duration) (int, error) {
	messages, err := s.messageRepo.FindUndelivered(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range messages {
		m := &messages[i]
		status, err := s.gateway.DeliveryStatus(ctx, m.ProviderMessageID)
		if err != nil {
			continue
		}

		switch status {
		case comms.MessageStatusDelivered:
			if err := m.MarkDelivered(); err == nil {
				if err := s.messageRepo.Save(ctx, m); err == nil {
					updated++
				}
			}
		case comms.MessageStatusFailed:
			if err := m.MarkFailed("provider reported failure"); err == nil {
				if err := s.messageRepo.Save(ctx, m); err == nil {
					updated++
				}
			}
		}
	}

	return updated, nil
}

// renderContent finds the best template for the language and renders it.
// Falls back to the default template when no language match exists.
func (s *MessageService) renderContent(ctx context.Context, msgType comms.MessageType, preferred string, vars map[string]string) (string, string, error) {
	lang := comms.MatchLanguage(preferred)

	template, err := s.templateRepo.FindByTypeAndLanguage(ctx, msgType, lang)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return "", "", err
		}
		template, err = s.templateRepo.FindDefault(ctx, msgType)
		if err != nil {
			return "", "", shared.NewDomainError("NO_TEMPLATE", "No template configured for this message type")
		}
		lang = template.Language
	}

	content, err := template.Render(vars)
	if err != nil {
		return "", "", err
	}
	return content, lang, nil
}

// dispatch selects a provider, enforces its daily limit and sends
func (s *MessageService) dispatch(ctx context.Context, message *comms.SMSMessage) (*MessageResponse, error) {
	providers, err := s.providerRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	provider, err := comms.SelectProvider(providers, message.Recipient)
	if err != nil {
		return nil, err
	}

	if provider.DailyLimit > 0 {
		sent, err := s.messageRepo.CountSentToday(ctx, provider.Code, time.Now())
		if err != nil {
			return nil, err
		}
		if sent >= int64(provider.DailyLimit) {
			return nil, shared.NewDomainError("PROVIDER_LIMIT", "Provider daily message limit reached")
		}
	}

	if err := message.Queue(provider); err != nil {
		return nil, err
	}

	providerMessageID, sendErr := s.gateway.Send(ctx, message, provider)
	if sendErr != nil {
		_ = message.MarkFailed(sendErr.Error())
	} else {
		_ = message.MarkSent(providerMessageID, "")
		if s.metrics != nil {
			s.metrics.RecordSMSSent(ctx, string(provider.Code), string(message.MessageType))
		}
	}

	if err := s.messageRepo.Save(ctx, message); err != nil {
		return nil, err
	}

	detail := ""
	if sendErr != nil {
		detail = sendErr.Error()
	}
	_ = s.logRepo.Save(ctx, comms.NewCommunicationLog(
		message.UserID, comms.ChannelSMS, message.Recipient, message.MessageType, sendErr == nil, detail))

	if sendErr != nil {
		return nil, shared.NewDomainError("SEND_FAILED", "Message could not be delivered to the provider")
	}

	resp := ToMessageResponse(message)
	return &resp, nil
}

// allowed checks the user's communication preferences, missing
// preferences default to allowing everything but marketing.
func (s *MessageService) allowed(ctx context.Context, userID uuid.UUID, msgType comms.MessageType) bool {
	pref, err := s.prefRepo.FindByUser(ctx, userID)
	if err != nil {
		return msgType != comms.MessageTypeMarketing
	}
	return pref.AllowsMessage(msgType, time.Now())
}
