package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGatewayRepository implements payment.GatewayRepository using GORM
type GormGatewayRepository struct {
	db *gorm.DB
}

// NewGormGatewayRepository creates a new GORM payment gateway repository
func NewGormGatewayRepository(db *gorm.DB) *GormGatewayRepository {
	return &GormGatewayRepository{db: db}
}

// FindByID finds a gateway by ID
func (r *GormGatewayRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PaymentGateway, error) {
	var gateway payment.PaymentGateway
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&gateway).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &gateway, nil
}

// FindByCode finds a gateway by its code
func (r *GormGatewayRepository) FindByCode(ctx context.Context, code payment.GatewayCode) (*payment.PaymentGateway, error) {
	var gateway payment.PaymentGateway
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&gateway).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &gateway, nil
}

// FindActive finds all active gateways
func (r *GormGatewayRepository) FindActive(ctx context.Context) ([]payment.PaymentGateway, error) {
	var gateways []payment.PaymentGateway
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&gateways).Error
	if err != nil {
		return nil, err
	}
	return gateways, nil
}

// Save creates or updates a gateway
func (r *GormGatewayRepository) Save(ctx context.Context, gateway *payment.PaymentGateway) error {
	return r.db.WithContext(ctx).Save(gateway).Error
}

// Delete deletes a gateway by ID
func (r *GormGatewayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&payment.PaymentGateway{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormGatewayRepository implements payment.GatewayRepository
var _ payment.GatewayRepository = (*GormGatewayRepository)(nil)
