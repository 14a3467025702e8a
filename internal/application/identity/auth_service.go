package identity

import (
	"context"
	"errors"
	"time"

	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/identity"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// OTPVerifier issues and checks one-time codes for the auth flows
type OTPVerifier interface {
	Request(ctx context.Context, req commsapp.RequestOTPRequest) error
	Verify(ctx context.Context, req commsapp.VerifyOTPRequest) error
}

// AuthService handles registration, phone verification and authentication
type AuthService struct {
	userRepo   identity.UserRepository
	prefRepo   comms.PreferenceRepository
	otpService OTPVerifier
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	prefRepo comms.PreferenceRepository,
	otpService OTPVerifier,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		prefRepo:   prefRepo,
		otpService: otpService,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Register creates an account pending phone verification and sends the
// verification code over SMS.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	s.logger.Info("Registration attempt", zap.String("phone", req.Phone))

	exists, err := s.userRepo.ExistsByPhone(ctx, req.Phone)
	if err != nil {
		s.logger.Error("Failed to check phone uniqueness", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register user")
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_PHONE", "An account with this phone already exists")
	}

	user, err := identity.NewUser(req.Phone, req.Password, identity.UserRole(req.Role), req.Country)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		if err := user.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}
	if req.FirstName != "" || req.LastName != "" {
		if err := user.SetName(req.FirstName, req.LastName); err != nil {
			return nil, err
		}
	}
	if req.Language != "" {
		if err := user.SetLanguage(req.Language); err != nil {
			return nil, err
		}
	}
	if req.Region != "" {
		user.SetRegion(req.Region)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register user")
	}

	// Every account starts with default communication preferences. A failure
	// here must not break registration, the defaults apply when absent.
	if pref, prefErr := comms.NewCommunicationPreference(user.ID); prefErr == nil {
		if saveErr := s.prefRepo.Save(ctx, pref); saveErr != nil {
			s.logger.Warn("Failed to create communication preferences",
				zap.String("user_id", user.ID.String()),
				zap.Error(saveErr))
		}
	}

	if err := s.otpService.Request(ctx, commsapp.RequestOTPRequest{
		Identifier: user.Phone,
		Purpose:    comms.OTPPurposeRegistration,
		Language:   user.Language,
	}); err != nil {
		s.logger.Error("Failed to send registration code",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered, awaiting phone verification",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	resp := ToUserResponse(user)
	return &resp, nil
}

// VerifyPhone completes registration with the SMS code and logs the user in
func (s *AuthService) VerifyPhone(ctx context.Context, req VerifyPhoneRequest) (*LoginResponse, error) {
	if err := s.otpService.Verify(ctx, commsapp.VerifyOTPRequest{
		Identifier: req.Phone,
		Code:       req.Code,
		Purpose:    comms.OTPPurposeRegistration,
	}); err != nil {
		s.logger.Warn("Phone verification failed", zap.String("phone", req.Phone), zap.Error(err))
		return nil, err
	}

	user, err := s.userRepo.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.VerifyPhone(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user after verification", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to verify phone")
	}

	s.logger.Info("Phone verified", zap.String("user_id", user.ID.String()))

	return s.issueTokens(user)
}

// Login authenticates a user by phone and password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	s.logger.Info("Login attempt", zap.String("phone", req.Phone))

	user, err := s.userRepo.FindByPhone(ctx, req.Phone)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("phone", req.Phone))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid phone or password")
	}

	if !user.CanLogin() {
		if user.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("phone", req.Phone))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
		}
		switch user.Status {
		case identity.UserStatusSuspended:
			s.logger.Warn("Login attempt for suspended account", zap.String("phone", req.Phone))
			return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Account has been suspended")
		case identity.UserStatusPending:
			s.logger.Warn("Login attempt for unverified account", zap.String("phone", req.Phone))
			return nil, shared.NewDomainError("ACCOUNT_UNVERIFIED", "Please verify your phone number first")
		}
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("phone", req.Phone),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("phone", req.Phone),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid phone or password")
	}

	user.RecordLoginSuccess(req.IP)
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
		// Don't fail the login, just log the error
	}

	s.logger.Info("User logged in",
		zap.String("phone", req.Phone),
		zap.String("user_id", user.ID.String()))

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	refreshClaims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	userID, err := uuid.Parse(refreshClaims.UserID)
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	revoked, err := s.blacklist.IsUserRevoked(ctx, refreshClaims.UserID, refreshClaims.IssuedAt.Time)
	if err != nil {
		s.logger.Error("Failed to check token revocation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to refresh token")
	}
	if revoked {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked. Please log in again")
	}

	// Reload the user so role changes and suspensions take effect on refresh.
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if !user.CanLogin() {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, user.Phone, string(user.Role))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))

	return &TokenResponse{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		// Expired or malformed tokens need no revocation.
		return nil
	}

	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}

	if err := s.blacklist.RevokeToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to revoke token on logout",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}

	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// RequestPasswordReset sends a reset code to the user's phone. Unknown
// phones return success so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req RequestPasswordResetRequest) error {
	user, err := s.userRepo.FindByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Password reset requested for unknown phone", zap.String("phone", req.Phone))
			return nil
		}
		return err
	}

	language := req.Language
	if language == "" {
		language = user.Language
	}

	return s.otpService.Request(ctx, commsapp.RequestOTPRequest{
		Identifier: user.Phone,
		Purpose:    comms.OTPPurposePasswordReset,
		Language:   language,
	})
}

// ResetPassword sets a new password after verifying the reset code
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := s.otpService.Verify(ctx, commsapp.VerifyOTPRequest{
		Identifier: req.Phone,
		Code:       req.Code,
		Purpose:    comms.OTPPurposePasswordReset,
	}); err != nil {
		return err
	}

	user, err := s.userRepo.FindByPhone(ctx, req.Phone)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user after password reset", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	// Force re-authentication on all devices after a reset.
	if err := s.blacklist.RevokeUserTokens(ctx, user.ID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Warn("Failed to revoke sessions after password reset",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

// ChangePassword changes the password of a logged-in user
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.logger.Info("User password changed", zap.String("user_id", userID.String()))
	return nil
}

// GetCurrentUser returns the profile of the authenticated user
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *AuthService) issueTokens(user *identity.User) (*LoginResponse, error) {
	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Phone:  user.Phone,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	return &LoginResponse{
		TokenResponse: TokenResponse{
			AccessToken:           tokenPair.AccessToken,
			RefreshToken:          tokenPair.RefreshToken,
			AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
			TokenType:             tokenPair.TokenType,
		},
		User: ToUserResponse(user),
	}, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrInvalidToken):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
