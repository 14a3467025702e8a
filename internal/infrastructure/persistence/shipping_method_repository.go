package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShippingMethodRepository implements trade.ShippingMethodRepository using GORM
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewGormShippingMethodRepository creates a new GORM shipping method repository
func NewGormShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

// FindByID finds a shipping method by ID
func (r *GormShippingMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.ShippingMethod, error) {
	var method trade.ShippingMethod
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&method).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &method, nil
}

// FindActive finds all active shipping methods
func (r *GormShippingMethodRepository) FindActive(ctx context.Context) ([]trade.ShippingMethod, error) {
	var methods []trade.ShippingMethod
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("base_cost ASC").
		Find(&methods).Error
	if err != nil {
		return nil, err
	}
	return methods, nil
}

// Save creates or updates a shipping method
func (r *GormShippingMethodRepository) Save(ctx context.Context, method *trade.ShippingMethod) error {
	return r.db.WithContext(ctx).Save(method).Error
}

// Delete deletes a shipping method by ID
func (r *GormShippingMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&trade.ShippingMethod{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormShippingMethodRepository implements trade.ShippingMethodRepository
var _ trade.ShippingMethodRepository = (*GormShippingMethodRepository)(nil)
