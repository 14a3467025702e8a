package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T) *User {
	t.Helper()
	user, err := NewUser("+233241234567", "harvest2026", RoleFarmer, "GH")
	require.NoError(t, err)
	return user
}

func TestNewUser(t *testing.T) {
	user := newTestUser(t)

	assert.Equal(t, UserStatusPending, user.Status)
	assert.Equal(t, "GH", user.Country)
	assert.Equal(t, "en", user.Language)
	assert.False(t, user.PhoneVerified)
	assert.True(t, user.VerifyPassword("harvest2026"))
	assert.False(t, user.VerifyPassword("wrong"))
	assert.Len(t, user.GetDomainEvents(), 1)
}

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser("0241234567", "harvest2026", RoleFarmer, "GH")
	assert.Error(t, err, "phone must carry a country code")

	_, err = NewUser("+233241234567", "short1", RoleFarmer, "GH")
	assert.Error(t, err)

	_, err = NewUser("+233241234567", "nodigitshere", RoleFarmer, "GH")
	assert.Error(t, err, "password needs a number")

	_, err = NewUser("+233241234567", "harvest2026", UserRole("ghost"), "GH")
	assert.Error(t, err)

	_, err = NewUser("+233241234567", "harvest2026", RoleFarmer, "Ghana")
	assert.Error(t, err)
}

func TestVerifyPhoneActivates(t *testing.T) {
	user := newTestUser(t)
	assert.False(t, user.CanLogin(), "pending users cannot log in")

	require.NoError(t, user.VerifyPhone())
	assert.True(t, user.PhoneVerified)
	assert.Equal(t, UserStatusActive, user.Status)
	assert.True(t, user.CanLogin())

	assert.Error(t, user.VerifyPhone())
}

func TestVerifyEmail(t *testing.T) {
	user := newTestUser(t)

	assert.Error(t, user.VerifyEmail(), "no email set yet")

	require.NoError(t, user.SetEmail("Kwame@Example.com"))
	assert.Equal(t, "kwame@example.com", user.Email)

	require.NoError(t, user.VerifyEmail())
	assert.True(t, user.EmailVerified)

	require.NoError(t, user.SetEmail("new@example.com"))
	assert.False(t, user.EmailVerified, "changing email clears verification")
}

func TestChangePassword(t *testing.T) {
	user := newTestUser(t)

	assert.Error(t, user.ChangePassword("wrong", "newpass123"))
	require.NoError(t, user.ChangePassword("harvest2026", "newpass123"))
	assert.True(t, user.VerifyPassword("newpass123"))
}

func TestSuspendAndActivate(t *testing.T) {
	user := newTestUser(t)
	require.NoError(t, user.VerifyPhone())

	require.NoError(t, user.Suspend())
	assert.False(t, user.CanLogin())
	assert.Error(t, user.Suspend())

	require.NoError(t, user.Activate())
	assert.True(t, user.CanLogin())
}

func TestActivateRequiresVerifiedPhone(t *testing.T) {
	user := newTestUser(t)
	assert.Error(t, user.Activate())
}

func TestLoginFailureLocksAccount(t *testing.T) {
	user := newTestUser(t)
	require.NoError(t, user.VerifyPhone())

	locked := user.RecordLoginFailure(3, time.Minute)
	assert.False(t, locked)
	locked = user.RecordLoginFailure(3, time.Minute)
	assert.False(t, locked)
	locked = user.RecordLoginFailure(3, time.Minute)
	assert.True(t, locked)

	assert.True(t, user.IsLocked())
	assert.False(t, user.CanLogin())

	require.NoError(t, user.Unlock())
	assert.Equal(t, 0, user.FailedAttempts)
	assert.True(t, user.CanLogin())
}

func TestExpiredLockAllowsLogin(t *testing.T) {
	user := newTestUser(t)
	require.NoError(t, user.VerifyPhone())

	require.NoError(t, user.Lock(-time.Minute))
	assert.False(t, user.IsLocked(), "an expired lock no longer counts")
	assert.True(t, user.CanLogin())
}

func TestRoleHelpers(t *testing.T) {
	user := newTestUser(t)
	assert.True(t, user.IsSeller())
	assert.False(t, user.IsAdmin())

	require.NoError(t, user.SetName("Kwame", "Mensah"))
	assert.Equal(t, "Kwame Mensah", user.FullName())

	anonymous := newTestUser(t)
	assert.Equal(t, anonymous.Phone, anonymous.FullName())
}
