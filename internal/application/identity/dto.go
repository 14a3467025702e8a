package identity

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterRequest creates a new account pending phone verification
type RegisterRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required"`
	Country   string `json:"country" binding:"required,len=2"`
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Language  string `json:"language"`
	Region    string `json:"region"`
}

// VerifyPhoneRequest completes registration with the SMS code
type VerifyPhoneRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,len=6"`
}

// LoginRequest authenticates by phone and password
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RequestPasswordResetRequest starts the OTP reset flow
type RequestPasswordResetRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Language string `json:"language"`
}

// ResetPasswordRequest sets a new password after OTP verification
type ResetPasswordRequest struct {
	Phone       string `json:"phone" binding:"required"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePasswordRequest changes the password of a logged-in user
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UpdateProfileRequest updates mutable profile fields
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Language  *string `json:"language"`
	Region    *string `json:"region"`
}

// UserResponse is the outward representation of a user
type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email,omitempty"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	FullName      string     `json:"full_name"`
	Role          string     `json:"role"`
	Language      string     `json:"language"`
	Country       string     `json:"country"`
	Region        string     `json:"region,omitempty"`
	Status        string     `json:"status"`
	PhoneVerified bool       `json:"phone_verified"`
	EmailVerified bool       `json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse bundles tokens with the authenticated user
type LoginResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

// ToUserResponse converts a domain user to its response form
func ToUserResponse(user *identity.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Phone:         user.Phone,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		FullName:      user.FullName(),
		Role:          string(user.Role),
		Language:      user.Language,
		Country:       user.Country,
		Region:        user.Region,
		Status:        string(user.Status),
		PhoneVerified: user.PhoneVerified,
		EmailVerified: user.EmailVerified,
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	}
}
