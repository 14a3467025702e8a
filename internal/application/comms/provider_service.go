package comms

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProviderService manages SMS provider configurations
type ProviderService struct {
	providerRepo comms.SMSProviderRepository
}

// NewProviderService creates a new ProviderService
func NewProviderService(providerRepo comms.SMSProviderRepository) *ProviderService {
	return &ProviderService{providerRepo: providerRepo}
}

// CreateProviderRequest registers a provider configuration
type CreateProviderRequest struct {
	Code       comms.ProviderCode `json:"code" binding:"required"`
	Name       string             `json:"name" binding:"required,min=1,max=100"`
	Countries  []string           `json:"countries"`
	Priority   int                `json:"priority"`
	SenderID   string             `json:"sender_id" binding:"max=11"`
	CostPerSMS *decimal.Decimal   `json:"cost_per_sms"`
	DailyLimit *int               `json:"daily_limit"`
}

// ProviderResponse represents a provider in API responses
type ProviderResponse struct {
	ID         uuid.UUID          `json:"id"`
	Code       comms.ProviderCode `json:"code"`
	Name       string             `json:"name"`
	Countries  string             `json:"countries"`
	Priority   int                `json:"priority"`
	SenderID   string             `json:"sender_id"`
	CostPerSMS decimal.Decimal    `json:"cost_per_sms"`
	DailyLimit int                `json:"daily_limit"`
	Active     bool               `json:"active"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ToProviderResponse converts a domain provider to ProviderResponse
func ToProviderResponse(p *comms.SMSProvider) ProviderResponse {
	return ProviderResponse{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		Countries:  p.Countries,
		Priority:   p.Priority,
		SenderID:   p.SenderID,
		CostPerSMS: p.CostPerSMS,
		DailyLimit: p.DailyLimit,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
	}
}

// Create registers a new provider
func (s *ProviderService) Create(ctx context.Context, req CreateProviderRequest) (*ProviderResponse, error) {
	if existing, err := s.providerRepo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Provider with this code already exists")
	}

	provider, err := comms.NewSMSProvider(req.Code, req.Name, req.Countries, req.Priority)
	if err != nil {
		return nil, err
	}

	if req.SenderID != "" {
		if err := provider.SetSenderID(req.SenderID); err != nil {
			return nil, err
		}
	}
	if req.CostPerSMS != nil {
		if err := provider.SetCost(*req.CostPerSMS); err != nil {
			return nil, err
		}
	}
	if req.DailyLimit != nil {
		if err := provider.SetDailyLimit(*req.DailyLimit); err != nil {
			return nil, err
		}
	}

	if err := s.providerRepo.Save(ctx, provider); err != nil {
		return nil, err
	}

	resp := ToProviderResponse(provider)
	return &resp, nil
}

// GetByID retrieves a provider by ID
func (s *ProviderService) GetByID(ctx context.Context, id uuid.UUID) (*ProviderResponse, error) {
	provider, err := s.providerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProviderResponse(provider)
	return &resp, nil
}

// List retrieves all providers
func (s *ProviderService) List(ctx context.Context, filter shared.Filter) ([]ProviderResponse, error) {
	providers, err := s.providerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProviderResponse, 0, len(providers))
	for i := range providers {
		responses = append(responses, ToProviderResponse(&providers[i]))
	}
	return responses, nil
}

// SetActive toggles a provider in or out of the routing pool
func (s *ProviderService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	provider, err := s.providerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if active {
		provider.Activate()
	} else {
		provider.Deactivate()
	}

	return s.providerRepo.Save(ctx, provider)
}

// Delete removes a provider configuration
func (s *ProviderService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.providerRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.providerRepo.Delete(ctx, id)
}
