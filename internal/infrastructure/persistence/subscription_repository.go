package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSubscriptionRepository implements subscription.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GORM user subscription repository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByID finds a subscription by ID, including its plan
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.UserSubscription, error) {
	var sub subscription.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").Where("id = ?", id).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// FindActiveByUser finds the active subscription for a user
func (r *GormSubscriptionRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*subscription.UserSubscription, error) {
	var sub subscription.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("user_id = ? AND status = ?", userID, subscription.SubscriptionStatusActive).
		Order("period_end DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// FindByUser finds all subscriptions a user has held
func (r *GormSubscriptionRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]subscription.UserSubscription, error) {
	query := r.db.WithContext(ctx).Model(&subscription.UserSubscription{}).
		Preload("Plan").
		Where("user_id = ?", userID)

	for key, value := range filter.Filters {
		if key == "status" {
			query = query.Where("status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	var subs []subscription.UserSubscription
	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// FindLapsed finds active subscriptions whose period ended and which do
// not renew automatically
func (r *GormSubscriptionRepository) FindLapsed(ctx context.Context, now time.Time, limit int) ([]subscription.UserSubscription, error) {
	var subs []subscription.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("status = ? AND period_end < ? AND auto_renew = ?",
			subscription.SubscriptionStatusActive, now, false).
		Order("period_end ASC").
		Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// FindDueForRenewal finds auto-renewing subscriptions whose period ends
// before the given time
func (r *GormSubscriptionRepository) FindDueForRenewal(ctx context.Context, before time.Time, limit int) ([]subscription.UserSubscription, error) {
	var subs []subscription.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("status = ? AND period_end < ? AND auto_renew = ?",
			subscription.SubscriptionStatusActive, before, true).
		Order("period_end ASC").
		Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Save creates or updates a subscription
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *subscription.UserSubscription) error {
	// The plan is a reference, not an owned child. Persisting it here
	// would overwrite catalog pricing from a stale in-memory copy.
	return r.db.WithContext(ctx).Omit("Plan").Save(sub).Error
}

// Ensure GormSubscriptionRepository implements subscription.SubscriptionRepository
var _ subscription.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
