package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPlanRepository implements subscription.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GORM subscription plan repository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan by ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.SubscriptionPlan, error) {
	var plan subscription.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindActive finds active plans for an audience, cheapest first
func (r *GormPlanRepository) FindActive(ctx context.Context, audience subscription.PlanAudience) ([]subscription.SubscriptionPlan, error) {
	var plans []subscription.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Where("active = ? AND audience = ?", true, audience).
		Order("price ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// FindAll finds all plans matching the filter
func (r *GormPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]subscription.SubscriptionPlan, error) {
	query := r.db.WithContext(ctx).Model(&subscription.SubscriptionPlan{})

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ?", searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "tier":
			query = query.Where("tier = ?", value)
		case "audience":
			query = query.Where("audience = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("audience ASC, price ASC")

	var plans []subscription.SubscriptionPlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Save creates or updates a plan
func (r *GormPlanRepository) Save(ctx context.Context, plan *subscription.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// Delete deletes a plan by ID
func (r *GormPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&subscription.SubscriptionPlan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPlanRepository implements subscription.PlanRepository
var _ subscription.PlanRepository = (*GormPlanRepository)(nil)
