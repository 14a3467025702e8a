package comms

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
)

// OTP request throttling per identifier
const (
	otpRequestLimit  = 5
	otpRequestWindow = time.Hour
)

// OTPService issues and checks one-time verification codes
type OTPService struct {
	otpRepo  comms.OTPRepository
	messages *MessageService
	email    EmailSender
	throttle Throttle
}

// NewOTPService creates a new OTPService
func NewOTPService(otpRepo comms.OTPRepository, messages *MessageService, email EmailSender, throttle Throttle) *OTPService {
	return &OTPService{
		otpRepo:  otpRepo,
		messages: messages,
		email:    email,
		throttle: throttle,
	}
}

// RequestOTPRequest asks for a code to be sent to a phone or email
type RequestOTPRequest struct {
	Identifier string           `json:"identifier" binding:"required"` // phone or email
	Purpose    comms.OTPPurpose `json:"purpose" binding:"required"`
	Language   string           `json:"language"`
}

// Request issues a fresh code, invalidating any outstanding ones,
// and delivers it over SMS or email depending on the identifier.
func (s *OTPService) Request(ctx context.Context, req RequestOTPRequest) error {
	if !req.Purpose.IsValid() {
		return shared.NewDomainError("INVALID_PURPOSE", "Unknown OTP purpose")
	}

	allowed, err := s.throttle.Allow(ctx, "otp:"+req.Identifier, otpRequestLimit, otpRequestWindow)
	if err != nil {
		return err
	}
	if !allowed {
		return shared.NewDomainError("OTP_THROTTLED", "Too many verification requests, try again later")
	}

	if err := s.otpRepo.InvalidateActive(ctx, req.Identifier, req.Purpose); err != nil {
		return err
	}

	otp, err := comms.NewOTPCode(req.Identifier, req.Purpose, time.Now())
	if err != nil {
		return err
	}
	if err := s.otpRepo.Save(ctx, otp); err != nil {
		return err
	}

	minutes := strconv.Itoa(int(comms.OTPValidity / time.Minute))
	if otp.IsEmailDelivery() {
		body := fmt.Sprintf("Your AgriConnect verification code is %s. It is valid for %s minutes.", otp.Code, minutes)
		return s.email.Send(ctx, otp.Identifier, "Your verification code", body)
	}

	_, err = s.messages.SendTemplated(ctx, SendTemplatedRequest{
		Recipient: otp.Identifier,
		Type:      comms.MessageTypeOTP,
		Language:  req.Language,
		Variables: map[string]string{"code": otp.Code, "minutes": minutes},
	})
	return err
}

// VerifyOTPRequest checks a code against the newest active one
type VerifyOTPRequest struct {
	Identifier string           `json:"identifier" binding:"required"`
	Code       string           `json:"code" binding:"required,len=6"`
	Purpose    comms.OTPPurpose `json:"purpose" binding:"required"`
}

// Verify checks the submitted code. Every call counts as an attempt,
// the state is persisted even when verification fails.
func (s *OTPService) Verify(ctx context.Context, req VerifyOTPRequest) error {
	now := time.Now()

	otp, err := s.otpRepo.FindActive(ctx, req.Identifier, req.Purpose, now)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return comms.ErrOTPExpired
		}
		return err
	}

	verifyErr := otp.Verify(req.Code, now)
	if saveErr := s.otpRepo.Save(ctx, otp); saveErr != nil {
		return saveErr
	}

	return verifyErr
}

// CleanupExpired removes codes past their validity, run by the scheduler
func (s *OTPService) CleanupExpired(ctx context.Context, retention time.Duration) (int64, error) {
	return s.otpRepo.DeleteExpired(ctx, time.Now().Add(-retention))
}
