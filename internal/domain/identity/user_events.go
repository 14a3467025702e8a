package identity

import (
	"github.com/agriconnect/backend/internal/domain/shared"
)

// Event type constants for the identity domain
const (
	EventUserRegistered = "identity.user.registered"
	EventUserVerified   = "identity.user.verified"
	EventUserSuspended  = "identity.user.suspended"
)

// UserRegisteredEvent is raised when a user registers
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Phone    string   `json:"phone"`
	Role     UserRole `json:"role"`
	Country  string   `json:"country"`
	Language string   `json:"language"`
}

// NewUserRegisteredEvent creates a new user registered event
func NewUserRegisteredEvent(u *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserRegistered, "User", u.ID),
		Phone:           u.Phone,
		Role:            u.Role,
		Country:         u.Country,
		Language:        u.Language,
	}
}

// UserVerifiedEvent is raised when a contact channel is verified
type UserVerifiedEvent struct {
	shared.BaseDomainEvent
	Channel string `json:"channel"` // phone or email
}

// NewUserVerifiedEvent creates a new user verified event
func NewUserVerifiedEvent(u *User, channel string) *UserVerifiedEvent {
	return &UserVerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserVerified, "User", u.ID),
		Channel:         channel,
	}
}

// UserSuspendedEvent is raised when an admin suspends a user
type UserSuspendedEvent struct {
	shared.BaseDomainEvent
	Phone string `json:"phone"`
}

// NewUserSuspendedEvent creates a new user suspended event
func NewUserSuspendedEvent(u *User) *UserSuspendedEvent {
	return &UserSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserSuspended, "User", u.ID),
		Phone:           u.Phone,
	}
}
