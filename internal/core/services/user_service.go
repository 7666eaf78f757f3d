package services

import (
	"context"
	"fmt"
	"strings"

	"sdi-portal/internal/adapters/persistence/models"
	"sdi-portal/internal/adapters/persistence/repositories"
	"sdi-portal/internal/core/domain"
	"sdi-portal/internal/pkg/password"
)

// UserService handles user administration and self-service password changes
type UserService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	activity  *ActivityService
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	activity *ActivityService,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		activity:  activity,
	}
}

// CreateUserInput holds the fields for a new user
type CreateUserInput struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	ShortName string `json:"short_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// Create adds a new user
func (s *UserService) Create(ctx context.Context, actor domain.Actor, input CreateUserInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	input.ShortName = strings.ToUpper(strings.TrimSpace(input.ShortName))

	if input.Username == "" || input.FullName == "" || input.ShortName == "" {
		return nil, fmt.Errorf("%w: username, full name and short name are required", domain.ErrInvalidInput)
	}
	if !domain.Role(input.Role).Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, input.Role)
	}
	if !password.Validate(input.Password) {
		return nil, domain.ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  input.Username,
		FullName:  input.FullName,
		ShortName: input.ShortName,
		Password:  hashed,
		Role:      input.Role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.activity.RecordActor(ctx, actor, models.ActionAddUser,
		fmt.Sprintf("User %s (%s) created with role %s", user.Username, user.ShortName, user.Role))
	return user, nil
}

// UpdateUserInput holds the optional fields of a user edit
type UpdateUserInput struct {
	FullName  *string `json:"full_name"`
	ShortName *string `json:"short_name"`
	Role      *string `json:"role"`
}

// Update edits a user's profile fields. Admins cannot change their own
// role so the system can never lose its last administrator by accident.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, id uint, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", domain.ErrInvalidInput)
		}
		user.FullName = name
	}
	if input.ShortName != nil {
		short := strings.ToUpper(strings.TrimSpace(*input.ShortName))
		if short == "" {
			return nil, fmt.Errorf("%w: short name cannot be empty", domain.ErrInvalidInput)
		}
		user.ShortName = short
	}
	if input.Role != nil && *input.Role != user.Role {
		if user.ID == actor.ID {
			return nil, domain.ErrCannotChangeOwnRole
		}
		if !domain.Role(*input.Role).Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *input.Role)
		}
		user.Role = *input.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.activity.RecordActor(ctx, actor, models.ActionUpdateUser,
		fmt.Sprintf("User %s updated", user.Username))
	return user, nil
}

// SetActive toggles a user's active flag. Deactivation also revokes
// every session of the user.
func (s *UserService) SetActive(ctx context.Context, actor domain.Actor, id uint, active bool) (*models.User, error) {
	if id == actor.ID && !active {
		return nil, domain.ErrCannotDisableSelf
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if !active {
		if err := s.tokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	state := "activated"
	if !active {
		state = "deactivated"
	}
	s.activity.RecordActor(ctx, actor, models.ActionUpdateUser,
		fmt.Sprintf("User %s %s", user.Username, state))
	return user, nil
}

// Delete removes a user. Self-deletion is refused.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if id == actor.ID {
		return domain.ErrCannotDeleteSelf
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.tokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.activity.RecordActor(ctx, actor, models.ActionDeleteUser,
		fmt.Sprintf("User %s deleted", user.Username))
	return nil
}

// List returns all users
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// ListCommercial returns commercial users, for the mapping screen
func (s *UserService) ListCommercial(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListByRole(ctx, models.RoleCommercial)
}

// GetByID returns a single user
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ResetPassword sets a new password for another user (admin action) and
// revokes that user's sessions
func (s *UserService) ResetPassword(ctx context.Context, actor domain.Actor, id uint, newPassword string) error {
	if !password.Validate(newPassword) {
		return domain.ErrWeakPassword
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.tokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
		return err
	}

	s.activity.RecordActor(ctx, actor, models.ActionResetPassword,
		fmt.Sprintf("Password reset for user %s", user.Username))
	return nil
}

// ChangePassword changes the actor's own password after verifying the
// current one
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Actor, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}

	if !password.Verify(currentPassword, user.Password) {
		return domain.ErrWrongCurrentPassword
	}
	if !password.Validate(newPassword) {
		return domain.ErrWeakPassword
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.activity.RecordActor(ctx, actor, models.ActionChangePassword,
		fmt.Sprintf("User %s changed their password", user.Username))
	return nil
}
