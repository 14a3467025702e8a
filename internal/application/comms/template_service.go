package comms

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TemplateService manages SMS templates
type TemplateService struct {
	templateRepo comms.SMSTemplateRepository
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo comms.SMSTemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// CreateTemplateRequest creates a template for a message type and language
type CreateTemplateRequest struct {
	Type     comms.MessageType `json:"type" binding:"required"`
	Language string            `json:"language" binding:"required"`
	Name     string            `json:"name" binding:"required,min=1,max=100"`
	Content  string            `json:"content" binding:"required,min=1,max=1600"`
	Default  bool              `json:"default"`
}

// UpdateTemplateRequest updates template content
type UpdateTemplateRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1600"`
}

// TemplateResponse represents a template in API responses
type TemplateResponse struct {
	ID             uuid.UUID         `json:"id"`
	Type           comms.MessageType `json:"type"`
	Language       string            `json:"language"`
	Name           string            `json:"name"`
	Content        string            `json:"content"`
	CharacterCount int               `json:"character_count"`
	Placeholders   []string          `json:"placeholders"`
	Default        bool              `json:"default"`
	Active         bool              `json:"active"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ToTemplateResponse converts a domain template to TemplateResponse
func ToTemplateResponse(t *comms.SMSTemplate) TemplateResponse {
	return TemplateResponse{
		ID:             t.ID,
		Type:           t.Type,
		Language:       t.Language,
		Name:           t.Name,
		Content:        t.Content,
		CharacterCount: t.CharacterCount,
		Placeholders:   t.Placeholders(),
		Default:        t.IsDefault,
		Active:         t.Active,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// Create creates a new template
func (s *TemplateService) Create(ctx context.Context, req CreateTemplateRequest) (*TemplateResponse, error) {
	lang := comms.MatchLanguage(req.Language)

	existing, err := s.templateRepo.FindByTypeAndLanguage(ctx, req.Type, lang)
	if err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A template for this type and language already exists")
	}

	template, err := comms.NewSMSTemplate(req.Type, lang, req.Name, req.Content)
	if err != nil {
		return nil, err
	}
	if req.Default {
		template.MarkDefault()
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	resp := ToTemplateResponse(template)
	return &resp, nil
}

// Update replaces the template content
func (s *TemplateService) Update(ctx context.Context, id uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := template.UpdateContent(req.Content); err != nil {
		return nil, err
	}
	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	resp := ToTemplateResponse(template)
	return &resp, nil
}

// GetByID retrieves a template by ID
func (s *TemplateService) GetByID(ctx context.Context, id uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTemplateResponse(template)
	return &resp, nil
}

// List retrieves templates with pagination
func (s *TemplateService) List(ctx context.Context, filter shared.Filter) ([]TemplateResponse, error) {
	templates, err := s.templateRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]TemplateResponse, 0, len(templates))
	for i := range templates {
		responses = append(responses, ToTemplateResponse(&templates[i]))
	}
	return responses, nil
}

// Delete removes a template
func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.templateRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.templateRepo.Delete(ctx, id)
}
