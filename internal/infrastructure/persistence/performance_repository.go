package persistence

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/advert"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPerformanceRepository implements advert.PerformanceRepository using GORM
type GormPerformanceRepository struct {
	db *gorm.DB
}

// NewGormPerformanceRepository creates a new GORM ad performance repository
func NewGormPerformanceRepository(db *gorm.DB) *GormPerformanceRepository {
	return &GormPerformanceRepository{db: db}
}

// FindByAd finds daily rollups for a campaign within a date range
func (r *GormPerformanceRepository) FindByAd(ctx context.Context, adID uuid.UUID, from, to time.Time) ([]advert.AdPerformanceLog, error) {
	var logs []advert.AdPerformanceLog
	err := r.db.WithContext(ctx).
		Where("advertisement_id = ? AND date >= ? AND date <= ?", adID, from, to).
		Order("date ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// Upsert accumulates a delta into the rollup row for the campaign and day.
// Concurrent delivery events on the same day add up instead of overwriting.
func (r *GormPerformanceRepository) Upsert(ctx context.Context, log *advert.AdPerformanceLog) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "advertisement_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"impressions": gorm.Expr("ad_performance_logs.impressions + excluded.impressions"),
			"clicks":      gorm.Expr("ad_performance_logs.clicks + excluded.clicks"),
			"spend":       gorm.Expr("ad_performance_logs.spend + excluded.spend"),
			"updated_at":  time.Now(),
		}),
	}).Create(log).Error
}

// Ensure GormPerformanceRepository implements advert.PerformanceRepository
var _ advert.PerformanceRepository = (*GormPerformanceRepository)(nil)
