package comms

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OTP configuration
const (
	OTPLength      = 6
	OTPValidity    = 10 * time.Minute
	OTPMaxAttempts = 3
)

// OTP verification errors
var (
	ErrOTPExpired     = shared.NewDomainError("OTP_EXPIRED", "Verification code has expired")
	ErrOTPUsed        = shared.NewDomainError("OTP_USED", "Verification code was already used")
	ErrOTPMaxAttempts = shared.NewDomainError("OTP_MAX_ATTEMPTS", "Too many verification attempts")
	ErrOTPMismatch    = shared.NewDomainError("OTP_MISMATCH", "Verification code does not match")
)

// OTPPurpose scopes a code to one workflow
type OTPPurpose string

const (
	OTPPurposeRegistration        OTPPurpose = "registration"
	OTPPurposeLogin               OTPPurpose = "login"
	OTPPurposePasswordReset       OTPPurpose = "password_reset"
	OTPPurposePhoneVerification   OTPPurpose = "phone_verification"
	OTPPurposeEmailVerification   OTPPurpose = "email_verification"
	OTPPurposeTransaction         OTPPurpose = "transaction"
	OTPPurposePaymentVerification OTPPurpose = "payment_verification"
)

// IsValid checks if the purpose is valid
func (p OTPPurpose) IsValid() bool {
	switch p {
	case OTPPurposeRegistration, OTPPurposeLogin, OTPPurposePasswordReset,
		OTPPurposePhoneVerification, OTPPurposeEmailVerification,
		OTPPurposeTransaction, OTPPurposePaymentVerification:
		return true
	}
	return false
}

// OTPCode is a one-time verification code bound to a phone or email
type OTPCode struct {
	shared.BaseAggregateRoot
	Identifier string     `gorm:"type:varchar(255);not null;index"` // phone or email
	Code       string     `gorm:"type:varchar(10);not null"`
	Purpose    OTPPurpose `gorm:"type:varchar(30);not null;index"`
	ExpiresAt  time.Time  `gorm:"not null;index"`
	Attempts   int        `gorm:"not null;default:0"`
	Used       bool       `gorm:"not null;default:false"`
	UsedAt     *time.Time
	Metadata   string `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (OTPCode) TableName() string {
	return "otp_codes"
}

// GenerateOTPDigits returns n cryptographically random decimal digits
func GenerateOTPDigits(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

// NewOTPCode issues a fresh code for the identifier and purpose
func NewOTPCode(identifier string, purpose OTPPurpose, now time.Time) (*OTPCode, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, shared.NewDomainError("INVALID_IDENTIFIER", "Identifier cannot be empty")
	}
	if !purpose.IsValid() {
		return nil, shared.NewDomainError("INVALID_PURPOSE", "Unknown OTP purpose")
	}

	code, err := GenerateOTPDigits(OTPLength)
	if err != nil {
		return nil, err
	}

	return &OTPCode{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Identifier:        identifier,
		Code:              code,
		Purpose:           purpose,
		ExpiresAt:         now.Add(OTPValidity),
		Metadata:          "{}",
	}, nil
}

// IsEmailDelivery reports whether the identifier is an email address
func (o *OTPCode) IsEmailDelivery() bool {
	return strings.Contains(o.Identifier, "@")
}

// Verify checks the submitted code. The attempt counter is incremented
// before any other check, so a burned code cannot be brute-forced by
// retrying after expiry.
func (o *OTPCode) Verify(code string, now time.Time) error {
	if o.Used {
		return ErrOTPUsed
	}

	o.Attempts++
	o.UpdatedAt = now
	o.IncrementVersion()

	if o.Attempts > OTPMaxAttempts {
		return ErrOTPMaxAttempts
	}
	if now.After(o.ExpiresAt) {
		return ErrOTPExpired
	}
	if o.Code != code {
		return ErrOTPMismatch
	}

	o.Used = true
	o.UsedAt = &now

	return nil
}

// IsExpiredAt reports whether the code is past its validity at t
func (o *OTPCode) IsExpiredAt(t time.Time) bool {
	return t.After(o.ExpiresAt)
}

// OTPRepository defines the interface for OTP persistence
type OTPRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OTPCode, error)

	// FindActive finds the newest unused, unexpired code for the
	// identifier and purpose
	FindActive(ctx context.Context, identifier string, purpose OTPPurpose, now time.Time) (*OTPCode, error)

	// InvalidateActive marks all outstanding codes for the identifier
	// and purpose as used, so only the newest code works
	InvalidateActive(ctx context.Context, identifier string, purpose OTPPurpose) error

	// DeleteExpired removes codes that expired before the cutoff
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)

	Save(ctx context.Context, otp *OTPCode) error
}
