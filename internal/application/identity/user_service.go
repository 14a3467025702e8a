package identity

import (
	"context"

	"github.com/agriconnect/backend/internal/domain/identity"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles profile updates and admin account management
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// ListUsers lists users, optionally restricted to one role
func (s *UserService) ListUsers(ctx context.Context, role string, filter shared.Filter) ([]UserResponse, int64, error) {
	var (
		users []identity.User
		err   error
	)

	if role != "" {
		userRole := identity.UserRole(role)
		if !userRole.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_ROLE", "Unknown user role")
		}
		users, err = s.userRepo.FindByRole(ctx, userRole, filter)
	} else {
		users, err = s.userRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}

	return responses, total, nil
}

// UpdateProfile updates the mutable fields of a user's profile
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if req.FirstName != nil || req.LastName != nil {
		firstName := user.FirstName
		lastName := user.LastName
		if req.FirstName != nil {
			firstName = *req.FirstName
		}
		if req.LastName != nil {
			lastName = *req.LastName
		}
		if err := user.SetName(firstName, lastName); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Language != nil {
		if err := user.SetLanguage(*req.Language); err != nil {
			return nil, err
		}
	}
	if req.Region != nil {
		user.SetRegion(*req.Region)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save profile update", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update profile")
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// ActivateUser restores a suspended or locked user
func (s *UserService) ActivateUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.Activate(); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to activate user")
	}

	s.logger.Info("User activated", zap.String("user_id", id.String()))
	return nil
}

// SuspendUser blocks a user from the platform
func (s *UserService) SuspendUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.Suspend(); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to suspend user")
	}

	s.logger.Info("User suspended", zap.String("user_id", id.String()))
	return nil
}

// UnlockUser clears a login lock before its window expires
func (s *UserService) UnlockUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.Unlock(); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to unlock user")
	}

	s.logger.Info("User unlocked", zap.String("user_id", id.String()))
	return nil
}
