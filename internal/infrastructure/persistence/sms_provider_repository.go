package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSMSProviderRepository implements comms.SMSProviderRepository using GORM
type GormSMSProviderRepository struct {
	db *gorm.DB
}

// NewGormSMSProviderRepository creates a new GORM SMS provider repository
func NewGormSMSProviderRepository(db *gorm.DB) *GormSMSProviderRepository {
	return &GormSMSProviderRepository{db: db}
}

// FindByID finds a provider by ID
func (r *GormSMSProviderRepository) FindByID(ctx context.Context, id uuid.UUID) (*comms.SMSProvider, error) {
	var provider comms.SMSProvider
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &provider, nil
}

// FindByCode finds a provider by its code
func (r *GormSMSProviderRepository) FindByCode(ctx context.Context, code comms.ProviderCode) (*comms.SMSProvider, error) {
	var provider comms.SMSProvider
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &provider, nil
}

// FindActive finds active providers ordered by routing priority
func (r *GormSMSProviderRepository) FindActive(ctx context.Context) ([]comms.SMSProvider, error) {
	var providers []comms.SMSProvider
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("priority DESC").
		Find(&providers).Error
	if err != nil {
		return nil, err
	}
	return providers, nil
}

// FindAll finds all providers matching the filter
func (r *GormSMSProviderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]comms.SMSProvider, error) {
	query := r.db.WithContext(ctx).Model(&comms.SMSProvider{})

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		if key == "active" {
			query = query.Where("active = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("priority DESC")

	var providers []comms.SMSProvider
	if err := query.Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

// Save creates or updates a provider
func (r *GormSMSProviderRepository) Save(ctx context.Context, provider *comms.SMSProvider) error {
	return r.db.WithContext(ctx).Save(provider).Error
}

// Delete deletes a provider by ID
func (r *GormSMSProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&comms.SMSProvider{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSMSProviderRepository implements comms.SMSProviderRepository
var _ comms.SMSProviderRepository = (*GormSMSProviderRepository)(nil)
