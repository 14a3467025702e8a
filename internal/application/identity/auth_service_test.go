package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/agriconnect/backend/internal/domain/comms"
	domainidentity "github.com/agriconnect/backend/internal/domain/identity"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/infrastructure/auth"
	"github.com/agriconnect/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainidentity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainidentity.User), args.Error(1)
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domainidentity.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainidentity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domainidentity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainidentity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]domainidentity.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainidentity.User), args.Error(1)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, role domainidentity.UserRole, filter shared.Filter) ([]domainidentity.User, error) {
	args := m.Called(ctx, role, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainidentity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domainidentity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPreferenceRepository is a mock implementation of comms.PreferenceRepository
type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*comms.CommunicationPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*comms.CommunicationPreference), args.Error(1)
}

func (m *MockPreferenceRepository) Save(ctx context.Context, pref *comms.CommunicationPreference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

// MockOTPVerifier is a mock implementation of OTPVerifier
type MockOTPVerifier struct {
	mock.Mock
}

func (m *MockOTPVerifier) Request(ctx context.Context, req commsapp.RequestOTPRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockOTPVerifier) Verify(ctx context.Context, req commsapp.VerifyOTPRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func newTestAuthService(userRepo *MockUserRepository, prefRepo *MockPreferenceRepository, otp *MockOTPVerifier) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "agriconnect",
		MaxRefreshCount:        10,
	})
	return NewAuthService(
		userRepo,
		prefRepo,
		otp,
		jwtService,
		auth.NewInMemoryTokenBlacklist(),
		DefaultAuthServiceConfig(),
		zap.NewNop(),
	)
}

func newVerifiedUser(t *testing.T, phone, password string) *domainidentity.User {
	t.Helper()
	user, err := domainidentity.NewUser(phone, password, domainidentity.RoleFarmer, "GH")
	require.NoError(t, err)
	require.NoError(t, user.VerifyPhone())
	return user
}

func TestRegister_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	userRepo.On("ExistsByPhone", mock.Anything, "+233241234567").Return(false, nil)
	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)
	prefRepo.On("Save", mock.Anything, mock.AnythingOfType("*comms.CommunicationPreference")).Return(nil)
	otp.On("Request", mock.Anything, mock.MatchedBy(func(req commsapp.RequestOTPRequest) bool {
		return req.Identifier == "+233241234567" && req.Purpose == comms.OTPPurposeRegistration
	})).Return(nil)

	resp, err := service.Register(context.Background(), RegisterRequest{
		Phone:     "+233241234567",
		Password:  "harvest2024",
		Role:      "farmer",
		Country:   "gh",
		FirstName: "Ama",
		LastName:  "Mensah",
	})

	require.NoError(t, err)
	assert.Equal(t, "farmer", resp.Role)
	assert.Equal(t, "GH", resp.Country)
	assert.Equal(t, "pending", resp.Status)
	assert.False(t, resp.PhoneVerified)
	userRepo.AssertExpectations(t)
	otp.AssertExpectations(t)
}

func TestRegister_DuplicatePhone(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	userRepo.On("ExistsByPhone", mock.Anything, "+233241234567").Return(true, nil)

	_, err := service.Register(context.Background(), RegisterRequest{
		Phone:    "+233241234567",
		Password: "harvest2024",
		Role:     "farmer",
		Country:  "GH",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "DUPLICATE_PHONE", domainErr.Code)
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestVerifyPhone_ActivatesAndIssuesTokens(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	user, err := domainidentity.NewUser("+233241234567", "harvest2024", domainidentity.RoleFarmer, "GH")
	require.NoError(t, err)

	otp.On("Verify", mock.Anything, mock.MatchedBy(func(req commsapp.VerifyOTPRequest) bool {
		return req.Purpose == comms.OTPPurposeRegistration && req.Code == "123456"
	})).Return(nil)
	userRepo.On("FindByPhone", mock.Anything, "+233241234567").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	resp, err := service.VerifyPhone(context.Background(), VerifyPhoneRequest{
		Phone: "+233241234567",
		Code:  "123456",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, resp.User.PhoneVerified)
	assert.Equal(t, "active", resp.User.Status)
}

func TestVerifyPhone_BadCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	otp.On("Verify", mock.Anything, mock.Anything).Return(comms.ErrOTPMismatch)

	_, err := service.VerifyPhone(context.Background(), VerifyPhoneRequest{
		Phone: "+233241234567",
		Code:  "000000",
	})

	assert.ErrorIs(t, err, comms.ErrOTPMismatch)
	userRepo.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	user := newVerifiedUser(t, "+233241234567", "harvest2024")
	userRepo.On("FindByPhone", mock.Anything, "+233241234567").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	resp, err := service.Login(context.Background(), LoginRequest{
		Phone:    "+233241234567",
		Password: "harvest2024",
		IP:       "41.210.1.5",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "41.210.1.5", user.LastLoginIP)
	assert.NotNil(t, user.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	user := newVerifiedUser(t, "+233241234567", "harvest2024")
	userRepo.On("FindByPhone", mock.Anything, "+233241234567").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	_, err := service.Login(context.Background(), LoginRequest{
		Phone:    "+233241234567",
		Password: "wrongpass1",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	assert.Equal(t, 1, user.FailedAttempts)
}

func TestLogin_LocksAfterMaxAttempts(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)
	service.config.MaxLoginAttempts = 1

	user := newVerifiedUser(t, "+233241234567", "harvest2024")
	userRepo.On("FindByPhone", mock.Anything, "+233241234567").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	_, err := service.Login(context.Background(), LoginRequest{
		Phone:    "+233241234567",
		Password: "wrongpass1",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
	assert.True(t, user.IsLocked())
}

func TestLogin_UnverifiedAccount(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	user, err := domainidentity.NewUser("+233241234567", "harvest2024", domainidentity.RoleBuyer, "GH")
	require.NoError(t, err)
	userRepo.On("FindByPhone", mock.Anything, "+233241234567").Return(user, nil)

	_, err = service.Login(context.Background(), LoginRequest{
		Phone:    "+233241234567",
		Password: "harvest2024",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "ACCOUNT_UNVERIFIED", domainErr.Code)
}

func TestRefresh_ReloadsUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	user := newVerifiedUser(t, "+233241234567", "harvest2024")
	login, err := service.issueTokens(user)
	require.NoError(t, err)

	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	resp, err := service.Refresh(context.Background(), RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, login.RefreshToken, resp.RefreshToken)
}

func TestRefresh_SuspendedUserRejected(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	user := newVerifiedUser(t, "+233241234567", "harvest2024")
	login, err := service.issueTokens(user)
	require.NoError(t, err)

	require.NoError(t, user.Suspend())
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	_, err = service.Refresh(context.Background(), RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "ACCOUNT_INACTIVE", domainErr.Code)
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	user := newVerifiedUser(t, "+233241234567", "harvest2024")
	login, err := service.issueTokens(user)
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), login.AccessToken))

	claims, err := service.jwtService.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)
	revoked, err := service.blacklist.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestResetPassword_SetsNewPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	user := newVerifiedUser(t, "+233241234567", "harvest2024")
	otp.On("Verify", mock.Anything, mock.MatchedBy(func(req commsapp.VerifyOTPRequest) bool {
		return req.Purpose == comms.OTPPurposePasswordReset
	})).Return(nil)
	userRepo.On("FindByPhone", mock.Anything, "+233241234567").Return(user, nil)
	userRepo.On("Save", mock.Anything, user).Return(nil)

	err := service.ResetPassword(context.Background(), ResetPasswordRequest{
		Phone:       "+233241234567",
		Code:        "123456",
		NewPassword: "newharvest9",
	})

	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("newharvest9"))
	assert.False(t, user.VerifyPassword("harvest2024"))
}

func TestRequestPasswordReset_UnknownPhoneQuiet(t *testing.T) {
	userRepo := new(MockUserRepository)
	prefRepo := new(MockPreferenceRepository)
	otp := new(MockOTPVerifier)
	service := newTestAuthService(userRepo, prefRepo, otp)

	userRepo.On("FindByPhone", mock.Anything, "+233209999999").Return(nil, shared.ErrNotFound)

	err := service.RequestPasswordReset(context.Background(), RequestPasswordResetRequest{Phone: "+233209999999"})
	require.NoError(t, err)
	otp.AssertNotCalled(t, "Request", mock.Anything, mock.Anything)
}
