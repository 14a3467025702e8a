package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFarmRepository implements traceability.FarmRepository using GORM
type GormFarmRepository struct {
	db *gorm.DB
}

// NewGormFarmRepository creates a new GORM farm repository
func NewGormFarmRepository(db *gorm.DB) *GormFarmRepository {
	return &GormFarmRepository{db: db}
}

// FindByID finds a farm by ID
func (r *GormFarmRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.Farm, error) {
	var farm traceability.Farm
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&farm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &farm, nil
}

// FindByFarmer finds farms registered by a farmer
func (r *GormFarmRepository) FindByFarmer(ctx context.Context, farmerID uuid.UUID) ([]traceability.Farm, error) {
	var farms []traceability.Farm
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at ASC").
		Find(&farms).Error
	if err != nil {
		return nil, err
	}
	return farms, nil
}

// FindByRegistration finds a farm by its official registration number
func (r *GormFarmRepository) FindByRegistration(ctx context.Context, number string) (*traceability.Farm, error) {
	var farm traceability.Farm
	err := r.db.WithContext(ctx).
		Where("registration_number = ?", number).First(&farm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &farm, nil
}

// Save creates or updates a farm
func (r *GormFarmRepository) Save(ctx context.Context, farm *traceability.Farm) error {
	return r.db.WithContext(ctx).Save(farm).Error
}

// Ensure GormFarmRepository implements traceability.FarmRepository
var _ traceability.FarmRepository = (*GormFarmRepository)(nil)
