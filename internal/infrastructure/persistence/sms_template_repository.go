package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSMSTemplateRepository implements comms.SMSTemplateRepository using GORM
type GormSMSTemplateRepository struct {
	db *gorm.DB
}

// NewGormSMSTemplateRepository creates a new GORM SMS template repository
func NewGormSMSTemplateRepository(db *gorm.DB) *GormSMSTemplateRepository {
	return &GormSMSTemplateRepository{db: db}
}

// FindByID finds a template by ID
func (r *GormSMSTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*comms.SMSTemplate, error) {
	var template comms.SMSTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindByTypeAndLanguage finds the active template for a type in a language
func (r *GormSMSTemplateRepository) FindByTypeAndLanguage(ctx context.Context, msgType comms.MessageType, lang string) (*comms.SMSTemplate, error) {
	var template comms.SMSTemplate
	err := r.db.WithContext(ctx).
		Where("type = ? AND language = ? AND active = ?", msgType, lang, true).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindDefault finds the default template for a type
func (r *GormSMSTemplateRepository) FindDefault(ctx context.Context, msgType comms.MessageType) (*comms.SMSTemplate, error) {
	var template comms.SMSTemplate
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_default = ? AND active = ?", msgType, true, true).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindByType finds all templates for a message type
func (r *GormSMSTemplateRepository) FindByType(ctx context.Context, msgType comms.MessageType) ([]comms.SMSTemplate, error) {
	var templates []comms.SMSTemplate
	err := r.db.WithContext(ctx).
		Where("type = ?", msgType).
		Order("language ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// FindAll finds all templates matching the filter
func (r *GormSMSTemplateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]comms.SMSTemplate, error) {
	query := r.db.WithContext(ctx).Model(&comms.SMSTemplate{})

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR content ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "language":
			query = query.Where("language = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("type ASC, language ASC")

	var templates []comms.SMSTemplate
	if err := query.Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Save creates or updates a template
func (r *GormSMSTemplateRepository) Save(ctx context.Context, template *comms.SMSTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

// Delete deletes a template by ID
func (r *GormSMSTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&comms.SMSTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSMSTemplateRepository implements comms.SMSTemplateRepository
var _ comms.SMSTemplateRepository = (*GormSMSTemplateRepository)(nil)
