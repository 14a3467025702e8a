package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWebhookRepository implements payment.WebhookRepository using GORM
type GormWebhookRepository struct {
	db *gorm.DB
}

// NewGormWebhookRepository creates a new GORM payment webhook repository
func NewGormWebhookRepository(db *gorm.DB) *GormWebhookRepository {
	return &GormWebhookRepository{db: db}
}

// FindByID finds a webhook record by ID
func (r *GormWebhookRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PaymentWebhook, error) {
	var webhook payment.PaymentWebhook
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&webhook).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &webhook, nil
}

// FindByEventID finds a webhook by gateway and event ID, for idempotent
// event ingestion
func (r *GormWebhookRepository) FindByEventID(ctx context.Context, gateway payment.GatewayCode, eventID string) (*payment.PaymentWebhook, error) {
	var webhook payment.PaymentWebhook
	err := r.db.WithContext(ctx).
		Where("gateway_code = ? AND event_id = ?", gateway, eventID).
		First(&webhook).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &webhook, nil
}

// FindFailed finds failed webhooks for reprocessing, oldest first
func (r *GormWebhookRepository) FindFailed(ctx context.Context, limit int) ([]payment.PaymentWebhook, error) {
	var webhooks []payment.PaymentWebhook
	err := r.db.WithContext(ctx).
		Where("status = ?", payment.WebhookStatusFailed).
		Order("created_at ASC").
		Limit(limit).
		Find(&webhooks).Error
	if err != nil {
		return nil, err
	}
	return webhooks, nil
}

// Save creates or updates a webhook record
func (r *GormWebhookRepository) Save(ctx context.Context, webhook *payment.PaymentWebhook) error {
	return r.db.WithContext(ctx).Save(webhook).Error
}

// Ensure GormWebhookRepository implements payment.WebhookRepository
var _ payment.WebhookRepository = (*GormWebhookRepository)(nil)
