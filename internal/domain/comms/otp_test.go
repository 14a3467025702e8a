package comms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPDigits(t *testing.T) {
	code, err := GenerateOTPDigits(OTPLength)
	require.NoError(t, err)
	assert.Len(t, code, OTPLength)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}

func TestNewOTPCode(t *testing.T) {
	now := time.Now()
	otp, err := NewOTPCode("+233201234567", OTPPurposeRegistration, now)
	require.NoError(t, err)
	assert.Len(t, otp.Code, OTPLength)
	assert.Equal(t, now.Add(OTPValidity), otp.ExpiresAt)
	assert.False(t, otp.Used)
	assert.False(t, otp.IsEmailDelivery())

	email, err := NewOTPCode("farmer@example.com", OTPPurposeEmailVerification, now)
	require.NoError(t, err)
	assert.True(t, email.IsEmailDelivery())

	_, err = NewOTPCode("", OTPPurposeLogin, now)
	assert.Error(t, err)
	_, err = NewOTPCode("+233201234567", OTPPurpose("vibes"), now)
	assert.Error(t, err)
}

func TestOTPVerifySuccess(t *testing.T) {
	now := time.Now()
	otp, err := NewOTPCode("+233201234567", OTPPurposeLogin, now)
	require.NoError(t, err)

	require.NoError(t, otp.Verify(otp.Code, now.Add(time.Minute)))
	assert.True(t, otp.Used)
	assert.Equal(t, 1, otp.Attempts)

	// a used code never verifies again
	assert.ErrorIs(t, otp.Verify(otp.Code, now.Add(2*time.Minute)), ErrOTPUsed)
}

func TestOTPVerifyMismatchCountsAttempt(t *testing.T) {
	now := time.Now()
	otp, err := NewOTPCode("+233201234567", OTPPurposeLogin, now)
	require.NoError(t, err)

	wrong := "000000"
	if otp.Code == wrong {
		wrong = "111111"
	}

	assert.ErrorIs(t, otp.Verify(wrong, now), ErrOTPMismatch)
	assert.ErrorIs(t, otp.Verify(wrong, now), ErrOTPMismatch)
	assert.ErrorIs(t, otp.Verify(wrong, now), ErrOTPMismatch)
	assert.Equal(t, 3, otp.Attempts)

	// fourth attempt is over the limit even with the right code
	assert.ErrorIs(t, otp.Verify(otp.Code, now), ErrOTPMaxAttempts)
	assert.False(t, otp.Used)
}

func TestOTPVerifyExpired(t *testing.T) {
	now := time.Now()
	otp, err := NewOTPCode("+233201234567", OTPPurposePasswordReset, now)
	require.NoError(t, err)

	late := now.Add(OTPValidity + time.Second)
	assert.ErrorIs(t, otp.Verify(otp.Code, late), ErrOTPExpired)
	assert.Equal(t, 1, otp.Attempts)
	assert.True(t, otp.IsExpiredAt(late))
}
