package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserRole is the marketplace role a user registers as
type UserRole string

const (
	RoleFarmer           UserRole = "farmer"
	RoleBuyer            UserRole = "buyer"
	RoleInstitution      UserRole = "institution"
	RoleProcessor        UserRole = "processor"
	RoleWarehouseManager UserRole = "warehouse_manager"
	RoleAdmin            UserRole = "admin"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleFarmer, RoleBuyer, RoleInstitution, RoleProcessor, RoleWarehouseManager, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending" // Awaiting phone verification
	UserStatusActive    UserStatus = "active"
	UserStatusLocked    UserStatus = "locked" // Locked due to failed attempts
	UserStatusSuspended UserStatus = "suspended"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	phoneRegex = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User is a phone-first marketplace account.
// It is the aggregate root for identity operations.
type User struct {
	shared.BaseAggregateRoot
	Phone             string     `gorm:"type:varchar(20);not null;uniqueIndex"`
	Email             string     `gorm:"type:varchar(200);index"`
	PasswordHash      string     `gorm:"type:varchar(100);not null"`
	FirstName         string     `gorm:"type:varchar(100)"`
	LastName          string     `gorm:"type:varchar(100)"`
	Role              UserRole   `gorm:"type:varchar(20);not null;index"`
	Language          string     `gorm:"type:varchar(10);not null;default:'en'"`
	Country           string     `gorm:"type:varchar(2);not null"`
	Region            string     `gorm:"type:varchar(100)"`
	Status            UserStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	PhoneVerified     bool       `gorm:"not null;default:false"`
	EmailVerified     bool       `gorm:"not null;default:false"`
	LastLoginAt       *time.Time
	LastLoginIP       string `gorm:"type:varchar(45)"`
	FailedAttempts    int    `gorm:"not null;default:0"`
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser registers a user pending phone verification
func NewUser(phone, password string, role UserRole, country string) (*User, error) {
	phone = strings.TrimSpace(phone)
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown user role")
	}
	if len(country) != 2 {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "Country must be a two-letter ISO code")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Phone:             phone,
		PasswordHash:      passwordHash,
		Role:              role,
		Language:          "en",
		Country:           strings.ToUpper(country),
		Status:            UserStatusPending,
		PasswordChangedAt: &now,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// ValidatePhone checks the phone is E.164 with country code
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Phone must be in international format, e.g. +233241234567")
	}
	return nil
}

// SetEmail sets the user's email, clearing any previous verification
func (u *User) SetEmail(email string) error {
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if len(email) > 200 || !emailRegex.MatchString(email) {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}

	u.Email = email
	u.EmailVerified = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetName sets the user's name
func (u *User) SetName(firstName, lastName string) error {
	if len(firstName) > 100 || len(lastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}

	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetLanguage sets the preferred language for messages
func (u *User) SetLanguage(tag string) error {
	if tag == "" || len(tag) > 10 {
		return shared.NewDomainError("INVALID_LANGUAGE", "Invalid language tag")
	}
	u.Language = tag
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// SetRegion sets the user's region within their country
func (u *User) SetRegion(region string) {
	u.Region = strings.TrimSpace(region)
	u.UpdatedAt = time.Now()
}

// VerifyPhone flips the phone verification flag and activates
// a pending account, registration completes here.
func (u *User) VerifyPhone() error {
	if u.PhoneVerified {
		return shared.NewDomainError("ALREADY_VERIFIED", "Phone is already verified")
	}

	u.PhoneVerified = true
	if u.Status == UserStatusPending {
		u.Status = UserStatusActive
	}
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserVerifiedEvent(u, "phone"))

	return nil
}

// VerifyEmail flips the email verification flag
func (u *User) VerifyEmail() error {
	if u.Email == "" {
		return shared.NewDomainError("NO_EMAIL", "User has no email to verify")
	}
	if u.EmailVerified {
		return shared.NewDomainError("ALREADY_VERIFIED", "Email is already verified")
	}

	u.EmailVerified = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserVerifiedEvent(u, "email"))

	return nil
}

// ChangePassword changes the user's password
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	return u.SetPassword(newPassword)
}

// SetPassword sets a new password (OTP reset flow, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &now
	u.UpdatedAt = now
	u.IncrementVersion()

	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Activate restores a suspended or locked user
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	if !u.PhoneVerified {
		return shared.NewDomainError("PHONE_UNVERIFIED", "User must verify their phone first")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Suspend blocks the user from the platform
func (u *User) Suspend() error {
	if u.Status == UserStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "User is already suspended")
	}

	u.Status = UserStatusSuspended
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserSuspendedEvent(u))

	return nil
}

// Lock locks the user account after repeated failed logins
func (u *User) Lock(duration time.Duration) error {
	if u.Status == UserStatusSuspended {
		return shared.NewDomainError("USER_SUSPENDED", "Cannot lock a suspended user")
	}

	u.Status = UserStatusLocked
	if duration > 0 {
		lockedUntil := time.Now().Add(duration)
		u.LockedUntil = &lockedUntil
	}
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Unlock unlocks the user account
func (u *User) Unlock() error {
	if u.Status != UserStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "User is not locked")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.UpdatedAt = now
	u.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account got locked.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	if u.FailedAttempts >= maxAttempts {
		_ = u.Lock(lockDuration)
		return true
	}

	return false
}

// IsLocked returns true if the user is locked and the lock has not expired
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}
	return true
}

// CanLogin returns true if the user can log in
func (u *User) CanLogin() bool {
	if u.Status == UserStatusSuspended || u.Status == UserStatusPending {
		return false
	}
	return !u.IsLocked()
}

// IsAdmin returns true for platform administrators
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsSeller returns true for roles that can list products
func (u *User) IsSeller() bool {
	return u.Role == RoleFarmer || u.Role == RoleProcessor
}

// FullName joins the user's names, falling back to the phone
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Phone
	}
	return name
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
