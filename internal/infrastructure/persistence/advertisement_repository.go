package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/advert"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAdvertisementRepository implements advert.AdvertisementRepository using GORM
type GormAdvertisementRepository struct {
	db *gorm.DB
}

// NewGormAdvertisementRepository creates a new GORM advertisement repository
func NewGormAdvertisementRepository(db *gorm.DB) *GormAdvertisementRepository {
	return &GormAdvertisementRepository{db: db}
}

// FindByID finds an advertisement by ID
func (r *GormAdvertisementRepository) FindByID(ctx context.Context, id uuid.UUID) (*advert.Advertisement, error) {
	var ad advert.Advertisement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ad).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ad, nil
}

// FindByAdvertiser finds campaigns belonging to an advertiser
func (r *GormAdvertisementRepository) FindByAdvertiser(ctx context.Context, advertiserID uuid.UUID, filter shared.Filter) ([]advert.Advertisement, error) {
	var ads []advert.Advertisement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&advert.Advertisement{}).Where("advertiser_id = ?", advertiserID),
		filter,
	)

	if err := query.Find(&ads).Error; err != nil {
		return nil, err
	}
	return ads, nil
}

// FindServable finds active campaigns for a placement whose flight window
// covers now and whose budget is not exhausted
func (r *GormAdvertisementRepository) FindServable(ctx context.Context, placementID uuid.UUID, now time.Time, limit int) ([]advert.Advertisement, error) {
	var ads []advert.Advertisement
	err := r.db.WithContext(ctx).
		Where("placement_id = ? AND status = ?", placementID, advert.AdStatusActive).
		Where("start_at <= ? AND end_at > ?", now, now).
		Where("amount_spent < budget").
		Order("created_at ASC").
		Limit(limit).
		Find(&ads).Error
	if err != nil {
		return nil, err
	}
	return ads, nil
}

// FindEnded finds running campaigns whose flight window has passed
func (r *GormAdvertisementRepository) FindEnded(ctx context.Context, now time.Time, limit int) ([]advert.Advertisement, error) {
	var ads []advert.Advertisement
	err := r.db.WithContext(ctx).
		Where("status IN ? AND end_at < ?",
			[]advert.AdStatus{advert.AdStatusActive, advert.AdStatusPaused}, now).
		Order("end_at ASC").
		Limit(limit).
		Find(&ads).Error
	if err != nil {
		return nil, err
	}
	return ads, nil
}

// Save creates or updates an advertisement
func (r *GormAdvertisementRepository) Save(ctx context.Context, ad *advert.Advertisement) error {
	return r.db.WithContext(ctx).Save(ad).Error
}

// IncrementCounters adds delivery counters atomically in SQL, for callers
// that cannot afford a read-modify-write cycle
func (r *GormAdvertisementRepository) IncrementCounters(ctx context.Context, id uuid.UUID, impressions, clicks int64, spend decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&advert.Advertisement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"impressions":  gorm.Expr("impressions + ?", impressions),
			"clicks":       gorm.Expr("clicks + ?", clicks),
			"amount_spent": gorm.Expr("amount_spent + ?", spend),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options including pagination to the query
func (r *GormAdvertisementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "placement_id":
			query = query.Where("placement_id = ?", value)
		case "cost_model":
			query = query.Where("cost_model = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, AdvertisementSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure GormAdvertisementRepository implements advert.AdvertisementRepository
var _ advert.AdvertisementRepository = (*GormAdvertisementRepository)(nil)
