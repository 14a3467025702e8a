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

// GormOTPRepository implements comms.OTPRepository using GORM
type GormOTPRepository struct {
	db *gorm.DB
}

// NewGormOTPRepository creates a new GORM OTP repository
func NewGormOTPRepository(db *gorm.DB) *GormOTPRepository {
	return &GormOTPRepository{db: db}
}

// FindByID finds an OTP code by ID
func (r *GormOTPRepository) FindByID(ctx context.Context, id uuid.UUID) (*comms.OTPCode, error) {
	var otp comms.OTPCode
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &otp, nil
}

// FindActive finds the newest unused, unexpired code for the
// identifier and purpose
func (r *GormOTPRepository) FindActive(ctx context.Context, identifier string, purpose comms.OTPPurpose, now time.Time) (*comms.OTPCode, error) {
	var otp comms.OTPCode
	err := r.db.WithContext(ctx).
		Where("identifier = ? AND purpose = ? AND used = ? AND expires_at > ?",
			identifier, purpose, false, now).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &otp, nil
}

// InvalidateActive marks all outstanding codes for the identifier
// and purpose as used, so only the newest code works
func (r *GormOTPRepository) InvalidateActive(ctx context.Context, identifier string, purpose comms.OTPPurpose) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&comms.OTPCode{}).
		Where("identifier = ? AND purpose = ? AND used = ?", identifier, purpose, false).
		Updates(map[string]interface{}{
			"used":       true,
			"used_at":    now,
			"updated_at": now,
		}).Error
}

// DeleteExpired removes codes that expired before the cutoff
func (r *GormOTPRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&comms.OTPCode{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Save creates or updates an OTP code
func (r *GormOTPRepository) Save(ctx context.Context, otp *comms.OTPCode) error {
	return r.db.WithContext(ctx).Save(otp).Error
}

// Ensure GormOTPRepository implements comms.OTPRepository
var _ comms.OTPRepository = (*GormOTPRepository)(nil)
