package advert

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdPerformanceLog is one day's delivery rollup for a campaign
type AdPerformanceLog struct {
	shared.BaseEntity
	AdvertisementID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_ad_perf_day"`
	Date            time.Time       `gorm:"type:date;not null;uniqueIndex:idx_ad_perf_day"`
	Impressions     int64           `gorm:"not null;default:0"`
	Clicks          int64           `gorm:"not null;default:0"`
	Spend           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (AdPerformanceLog) TableName() string {
	return "ad_performance_logs"
}

// NewAdPerformanceLog rolls one day of counters into a log row.
// The date is truncated to midnight UTC so the uniqueness index holds.
func NewAdPerformanceLog(adID uuid.UUID, day time.Time, impressions, clicks int64, spend decimal.Decimal) (*AdPerformanceLog, error) {
	if adID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Advertisement ID is required")
	}
	if impressions < 0 || clicks < 0 || spend.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Rollup figures cannot be negative")
	}

	return &AdPerformanceLog{
		BaseEntity:      shared.NewBaseEntity(),
		AdvertisementID: adID,
		Date:            day.UTC().Truncate(24 * time.Hour),
		Impressions:     impressions,
		Clicks:          clicks,
		Spend:           spend,
	}, nil
}

// CTR returns the day's click-through rate
func (l *AdPerformanceLog) CTR() decimal.Decimal {
	if l.Impressions == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(l.Clicks).Div(decimal.NewFromInt(l.Impressions)).Round(4)
}

// PerformanceRepository defines the interface for performance log persistence
type PerformanceRepository interface {
	FindByAd(ctx context.Context, adID uuid.UUID, from, to time.Time) ([]AdPerformanceLog, error)
	Upsert(ctx context.Context, log *AdPerformanceLog) error
}
