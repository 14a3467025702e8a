package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEscrowRepository implements payment.EscrowRepository using GORM
type GormEscrowRepository struct {
	db *gorm.DB
}

// NewGormEscrowRepository creates a new GORM escrow repository
func NewGormEscrowRepository(db *gorm.DB) *GormEscrowRepository {
	return &GormEscrowRepository{db: db}
}

// FindByID finds an escrow account by ID, including milestones
func (r *GormEscrowRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.EscrowAccount, error) {
	var account payment.EscrowAccount
	err := r.db.WithContext(ctx).Preload("Milestones").Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByOrder finds the escrow account for an order
func (r *GormEscrowRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*payment.EscrowAccount, error) {
	var account payment.EscrowAccount
	err := r.db.WithContext(ctx).Preload("Milestones").
		Where("order_id = ?", orderID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindDueForAutoRelease finds delivered escrow accounts whose per-account
// auto-release window has elapsed
func (r *GormEscrowRepository) FindDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]payment.EscrowAccount, error) {
	var accounts []payment.EscrowAccount
	err := r.db.WithContext(ctx).Preload("Milestones").
		Where("status IN ? AND delivered_at IS NOT NULL", []payment.EscrowStatus{
			payment.EscrowStatusFunded,
			payment.EscrowStatusPartialRelease,
		}).
		Where("delivered_at + (auto_release_days || ' days')::interval < ?", now).
		Order("delivered_at ASC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save creates or updates an escrow account with its milestones
func (r *GormEscrowRepository) Save(ctx context.Context, account *payment.EscrowAccount) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(account).Error
}

// Ensure GormEscrowRepository implements payment.EscrowRepository
var _ payment.EscrowRepository = (*GormEscrowRepository)(nil)

// GormDisputeRepository implements payment.DisputeRepository using GORM
type GormDisputeRepository struct {
	db *gorm.DB
}

// NewGormDisputeRepository creates a new GORM dispute repository
func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

// FindByID finds a dispute by ID
func (r *GormDisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Dispute, error) {
	var dispute payment.Dispute
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dispute).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dispute, nil
}

// FindByEscrowAccount finds disputes raised against an escrow account
func (r *GormDisputeRepository) FindByEscrowAccount(ctx context.Context, escrowAccountID uuid.UUID) ([]payment.Dispute, error) {
	var disputes []payment.Dispute
	err := r.db.WithContext(ctx).
		Where("escrow_account_id = ?", escrowAccountID).
		Order("created_at DESC").
		Find(&disputes).Error
	if err != nil {
		return nil, err
	}
	return disputes, nil
}

// FindByStatus finds disputes in a status
func (r *GormDisputeRepository) FindByStatus(ctx context.Context, status payment.DisputeStatus, filter shared.Filter) ([]payment.Dispute, error) {
	query := r.db.WithContext(ctx).Model(&payment.Dispute{}).Where("status = ?", status)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at ASC")

	var disputes []payment.Dispute
	if err := query.Find(&disputes).Error; err != nil {
		return nil, err
	}
	return disputes, nil
}

// Save creates or updates a dispute
func (r *GormDisputeRepository) Save(ctx context.Context, dispute *payment.Dispute) error {
	return r.db.WithContext(ctx).Save(dispute).Error
}

// Ensure GormDisputeRepository implements payment.DisputeRepository
var _ payment.DisputeRepository = (*GormDisputeRepository)(nil)
