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

// GormCertificationRepository implements catalog.CertificationRepository using GORM
type GormCertificationRepository struct {
	db *gorm.DB
}

// NewGormCertificationRepository creates a new GORM certification repository
func NewGormCertificationRepository(db *gorm.DB) *GormCertificationRepository {
	return &GormCertificationRepository{db: db}
}

// FindByID finds a certification by ID
func (r *GormCertificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Certification, error) {
	var cert catalog.Certification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// FindByProduct finds certifications attached to a product
func (r *GormCertificationRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.Certification, error) {
	var certs []catalog.Certification
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&certs).Error
	if err != nil {
		return nil, err
	}
	return certs, nil
}

// FindByStatus finds certifications in a review status
func (r *GormCertificationRepository) FindByStatus(ctx context.Context, status catalog.CertificationStatus, filter shared.Filter) ([]catalog.Certification, error) {
	var certs []catalog.Certification
	query := r.db.WithContext(ctx).Model(&catalog.Certification{}).Where("status = ?", status)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at ASC")

	if err := query.Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

// FindExpiring finds approved certifications whose expiry date falls before the cutoff
func (r *GormCertificationRepository) FindExpiring(ctx context.Context, cutoff time.Time) ([]catalog.Certification, error) {
	var certs []catalog.Certification
	err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date < ?", catalog.CertificationStatusApproved, cutoff).
		Order("expiry_date ASC").
		Find(&certs).Error
	if err != nil {
		return nil, err
	}
	return certs, nil
}

// Save creates or updates a certification
func (r *GormCertificationRepository) Save(ctx context.Context, cert *catalog.Certification) error {
	return r.db.WithContext(ctx).Save(cert).Error
}

// Delete deletes a certification by ID
func (r *GormCertificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&catalog.Certification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCertificationRepository implements catalog.CertificationRepository
var _ catalog.CertificationRepository = (*GormCertificationRepository)(nil)
