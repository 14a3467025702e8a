package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPreferenceRepository implements comms.PreferenceRepository using GORM
type GormPreferenceRepository struct {
	db *gorm.DB
}

// NewGormPreferenceRepository creates a new GORM communication preference repository
func NewGormPreferenceRepository(db *gorm.DB) *GormPreferenceRepository {
	return &GormPreferenceRepository{db: db}
}

// FindByUser finds the preferences for a user
func (r *GormPreferenceRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*comms.CommunicationPreference, error) {
	var pref comms.CommunicationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pref, nil
}

// Save creates or updates a preference record
func (r *GormPreferenceRepository) Save(ctx context.Context, pref *comms.CommunicationPreference) error {
	return r.db.WithContext(ctx).Save(pref).Error
}

// Ensure GormPreferenceRepository implements comms.PreferenceRepository
var _ comms.PreferenceRepository = (*GormPreferenceRepository)(nil)

// GormCommunicationLogRepository implements comms.CommunicationLogRepository using GORM
type GormCommunicationLogRepository struct {
	db *gorm.DB
}

// NewGormCommunicationLogRepository creates a new GORM communication log repository
func NewGormCommunicationLogRepository(db *gorm.DB) *GormCommunicationLogRepository {
	return &GormCommunicationLogRepository{db: db}
}

// FindByUser finds log entries for a user
func (r *GormCommunicationLogRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]comms.CommunicationLog, error) {
	return r.findPaged(r.db.WithContext(ctx).Model(&comms.CommunicationLog{}).
		Where("user_id = ?", userID), filter)
}

// FindByRecipient finds log entries for a recipient address
func (r *GormCommunicationLogRepository) FindByRecipient(ctx context.Context, recipient string, filter shared.Filter) ([]comms.CommunicationLog, error) {
	return r.findPaged(r.db.WithContext(ctx).Model(&comms.CommunicationLog{}).
		Where("recipient = ?", recipient), filter)
}

// Save persists a log entry
func (r *GormCommunicationLogRepository) Save(ctx context.Context, log *comms.CommunicationLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

func (r *GormCommunicationLogRepository) findPaged(query *gorm.DB, filter shared.Filter) ([]comms.CommunicationLog, error) {
	for key, value := range filter.Filters {
		switch key {
		case "channel":
			query = query.Where("channel = ?", value)
		case "message_type":
			query = query.Where("message_type = ?", value)
		case "succeeded":
			query = query.Where("succeeded = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	var logs []comms.CommunicationLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Ensure GormCommunicationLogRepository implements comms.CommunicationLogRepository
var _ comms.CommunicationLogRepository = (*GormCommunicationLogRepository)(nil)
