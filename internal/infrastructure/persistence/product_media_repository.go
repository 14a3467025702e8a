package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/catalog"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductMediaRepository implements catalog.ProductMediaRepository using GORM
type GormProductMediaRepository struct {
	db *gorm.DB
}

// NewGormProductMediaRepository creates a new GORM product media repository
func NewGormProductMediaRepository(db *gorm.DB) *GormProductMediaRepository {
	return &GormProductMediaRepository{db: db}
}

// FindByID finds a media record by ID
func (r *GormProductMediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductMedia, error) {
	var media catalog.ProductMedia
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &media, nil
}

// FindByProduct finds media attached to a product, ordered for display
func (r *GormProductMediaRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductMedia, error) {
	var media []catalog.ProductMedia
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC, created_at ASC").
		Find(&media).Error
	if err != nil {
		return nil, err
	}
	return media, nil
}

// FindStalePending finds pending records older than the cutoff, for cleanup
func (r *GormProductMediaRepository) FindStalePending(ctx context.Context, cutoff time.Time) ([]catalog.ProductMedia, error) {
	var media []catalog.ProductMedia
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", catalog.MediaStatusPending, cutoff).
		Find(&media).Error
	if err != nil {
		return nil, err
	}
	return media, nil
}

// Save creates or updates a media record
func (r *GormProductMediaRepository) Save(ctx context.Context, media *catalog.ProductMedia) error {
	return r.db.WithContext(ctx).Save(media).Error
}

// Delete deletes a media record by ID
func (r *GormProductMediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&catalog.ProductMedia{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormProductMediaRepository implements catalog.ProductMediaRepository
var _ catalog.ProductMediaRepository = (*GormProductMediaRepository)(nil)
