package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSMSMessageRepository implements comms.SMSMessageRepository using GORM
type GormSMSMessageRepository struct {
	db *gorm.DB
}

// NewGormSMSMessageRepository creates a new GORM SMS message repository
func NewGormSMSMessageRepository(db *gorm.DB) *GormSMSMessageRepository {
	return &GormSMSMessageRepository{db: db}
}

// FindByID finds a message by ID
func (r *GormSMSMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*comms.SMSMessage, error) {
	var message comms.SMSMessage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

// FindByProviderMessageID finds a message by the provider-assigned ID
func (r *GormSMSMessageRepository) FindByProviderMessageID(ctx context.Context, providerMessageID string) (*comms.SMSMessage, error) {
	var message comms.SMSMessage
	err := r.db.WithContext(ctx).
		Where("provider_message_id = ?", providerMessageID).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

// FindByRecipient finds messages sent to a recipient
func (r *GormSMSMessageRepository) FindByRecipient(ctx context.Context, recipient string, filter shared.Filter) ([]comms.SMSMessage, error) {
	return r.findPaged(ctx, r.db.WithContext(ctx).Model(&comms.SMSMessage{}).
		Where("recipient = ?", recipient), filter)
}

// FindByStatus finds messages in a delivery status
func (r *GormSMSMessageRepository) FindByStatus(ctx context.Context, status comms.MessageStatus, filter shared.Filter) ([]comms.SMSMessage, error) {
	return r.findPaged(ctx, r.db.WithContext(ctx).Model(&comms.SMSMessage{}).
		Where("status = ?", status), filter)
}

// FindUndelivered finds sent messages older than the cutoff lacking a
// delivery confirmation, for the status-poll job
func (r *GormSMSMessageRepository) FindUndelivered(ctx context.Context, cutoff time.Time) ([]comms.SMSMessage, error) {
	var messages []comms.SMSMessage
	err := r.db.WithContext(ctx).
		Where("status = ? AND sent_at IS NOT NULL AND sent_at < ?", comms.MessageStatusSent, cutoff).
		Order("sent_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CountSentToday counts messages dispatched through a provider since midnight
func (r *GormSMSMessageRepository) CountSentToday(ctx context.Context, provider comms.ProviderCode, now time.Time) (int64, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := r.db.WithContext(ctx).Model(&comms.SMSMessage{}).
		Where("provider_code = ? AND sent_at >= ?", provider, midnight).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a message
func (r *GormSMSMessageRepository) Save(ctx context.Context, message *comms.SMSMessage) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *GormSMSMessageRepository) findPaged(ctx context.Context, query *gorm.DB, filter shared.Filter) ([]comms.SMSMessage, error) {
	for key, value := range filter.Filters {
		switch key {
		case "message_type":
			query = query.Where("message_type = ?", value)
		case "provider_code":
			query = query.Where("provider_code = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at <= ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	var messages []comms.SMSMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// Ensure GormSMSMessageRepository implements comms.SMSMessageRepository
var _ comms.SMSMessageRepository = (*GormSMSMessageRepository)(nil)
