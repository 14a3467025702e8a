package comms

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PreferenceService manages per-user communication preferences
type PreferenceService struct {
	prefRepo comms.PreferenceRepository
	logRepo  comms.CommunicationLogRepository
}

// NewPreferenceService creates a new PreferenceService
func NewPreferenceService(prefRepo comms.PreferenceRepository, logRepo comms.CommunicationLogRepository) *PreferenceService {
	return &PreferenceService{prefRepo: prefRepo, logRepo: logRepo}
}

// UpdatePreferencesRequest carries the channel and language choices.
// Pointer fields are left unchanged when absent.
type UpdatePreferencesRequest struct {
	SMSEnabled        *bool   `json:"sms_enabled"`
	EmailEnabled      *bool   `json:"email_enabled"`
	MarketingEnabled  *bool   `json:"marketing_enabled"`
	PreferredLanguage *string `json:"preferred_language"`
	QuietHoursStart   *int    `json:"quiet_hours_start" binding:"omitempty,min=0,max=23"`
	QuietHoursEnd     *int    `json:"quiet_hours_end" binding:"omitempty,min=0,max=23"`
	ClearQuietHours   bool    `json:"clear_quiet_hours"`
}

// PreferenceResponse represents communication preferences in API responses
type PreferenceResponse struct {
	SMSEnabled        bool   `json:"sms_enabled"`
	EmailEnabled      bool   `json:"email_enabled"`
	MarketingEnabled  bool   `json:"marketing_enabled"`
	PreferredLanguage string `json:"preferred_language"`
	QuietHoursStart   *int   `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd     *int   `json:"quiet_hours_end,omitempty"`
}

// CommunicationLogResponse represents one outbound communication attempt
type CommunicationLogResponse struct {
	ID          uuid.UUID                  `json:"id"`
	Channel     comms.CommunicationChannel `json:"channel"`
	Recipient   string                     `json:"recipient"`
	MessageType comms.MessageType          `json:"message_type"`
	Succeeded   bool                       `json:"succeeded"`
	Detail      string                     `json:"detail,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
}

func toPreferenceResponse(p *comms.CommunicationPreference) PreferenceResponse {
	return PreferenceResponse{
		SMSEnabled:        p.SMSEnabled,
		EmailEnabled:      p.EmailEnabled,
		MarketingEnabled:  p.MarketingEnabled,
		PreferredLanguage: p.PreferredLanguage,
		QuietHoursStart:   p.QuietHoursStart,
		QuietHoursEnd:     p.QuietHoursEnd,
	}
}

// Get returns the user's preferences, falling back to defaults when
// the user never saved any
func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*PreferenceResponse, error) {
	pref, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toPreferenceResponse(pref)
	return &resp, nil
}

// Update applies the requested changes and persists the result
func (s *PreferenceService) Update(ctx context.Context, userID uuid.UUID, req UpdatePreferencesRequest) (*PreferenceResponse, error) {
	pref, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	sms, email, marketing := pref.SMSEnabled, pref.EmailEnabled, pref.MarketingEnabled
	if req.SMSEnabled != nil {
		sms = *req.SMSEnabled
	}
	if req.EmailEnabled != nil {
		email = *req.EmailEnabled
	}
	if req.MarketingEnabled != nil {
		marketing = *req.MarketingEnabled
	}
	pref.SetChannels(sms, email, marketing)

	if req.PreferredLanguage != nil {
		pref.SetLanguage(*req.PreferredLanguage)
	}

	switch {
	case req.ClearQuietHours:
		pref.ClearQuietHours()
	case req.QuietHoursStart != nil && req.QuietHoursEnd != nil:
		if err := pref.SetQuietHours(*req.QuietHoursStart, *req.QuietHoursEnd); err != nil {
			return nil, err
		}
	}

	if err := s.prefRepo.Save(ctx, pref); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save preferences")
	}

	resp := toPreferenceResponse(pref)
	return &resp, nil
}

// ListLogs returns the user's outbound communication history
func (s *PreferenceService) ListLogs(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]CommunicationLogResponse, error) {
	logs, err := s.logRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]CommunicationLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		responses = append(responses, CommunicationLogResponse{
			ID:          l.ID,
			Channel:     l.Channel,
			Recipient:   l.Recipient,
			MessageType: l.MessageType,
			Succeeded:   l.Succeeded,
			Detail:      l.Detail,
			CreatedAt:   l.CreatedAt,
		})
	}
	return responses, nil
}

func (s *PreferenceService) find(ctx context.Context, userID uuid.UUID) (*comms.CommunicationPreference, error) {
	pref, err := s.prefRepo.FindByUser(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return comms.NewCommunicationPreference(userID)
}
