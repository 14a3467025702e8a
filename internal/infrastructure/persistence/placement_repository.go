package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/advert"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPlacementRepository implements advert.PlacementRepository using GORM
type GormPlacementRepository struct {
	db *gorm.DB
}

// NewGormPlacementRepository creates a new GORM ad placement repository
func NewGormPlacementRepository(db *gorm.DB) *GormPlacementRepository {
	return &GormPlacementRepository{db: db}
}

// FindByID finds a placement by ID
func (r *GormPlacementRepository) FindByID(ctx context.Context, id uuid.UUID) (*advert.AdPlacement, error) {
	var placement advert.AdPlacement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&placement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &placement, nil
}

// FindByLocation finds the placement at a page location
func (r *GormPlacementRepository) FindByLocation(ctx context.Context, location advert.PlacementLocation) (*advert.AdPlacement, error) {
	var placement advert.AdPlacement
	err := r.db.WithContext(ctx).Where("location = ?", location).First(&placement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &placement, nil
}

// FindAll finds all placements
func (r *GormPlacementRepository) FindAll(ctx context.Context) ([]advert.AdPlacement, error) {
	var placements []advert.AdPlacement
	err := r.db.WithContext(ctx).Order("location ASC").Find(&placements).Error
	if err != nil {
		return nil, err
	}
	return placements, nil
}

// Save creates or updates a placement
func (r *GormPlacementRepository) Save(ctx context.Context, placement *advert.AdPlacement) error {
	return r.db.WithContext(ctx).Save(placement).Error
}

// Ensure GormPlacementRepository implements advert.PlacementRepository
var _ advert.PlacementRepository = (*GormPlacementRepository)(nil)
