package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fluxo-hq/fluxo/pkg/auth"
	"github.com/fluxo-hq/fluxo/pkg/models"
	"github.com/fluxo-hq/fluxo/pkg/persistence"
)

const minPasswordLength = 8

// User handles account registration.
type User struct {
	users    persistence.UserRepository
	validate *validator.Validate
	logger   *slog.Logger
}

func NewUser(users persistence.UserRepository, logger *slog.Logger) *User {
	if logger == nil {
		logger = slog.Default()
	}

	return &User{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Register creates a new active account with a bcrypt-hashed password.
// Username and email must both be unused.
func (s *User) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.validate.Struct(user); err != nil {
		return nil, newValidationError(ErrInvalidUser, err)
	}

	if len(password) < minPasswordLength {
		return nil, newValidationError(ErrInvalidUser,
			fmt.Errorf("password must be at least %d characters", minPasswordLength))
	}

	if _, err := s.users.UserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !persistence.IsUserNotFound(err) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !persistence.IsUserNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.HashedPassword = hashed

	if err := s.users.SaveUser(ctx, user); err != nil {
		// The storage layer enforces uniqueness too; concurrent
		// registrations can lose the race between check and save.
		if persistence.IsUserAlreadyExists(err) {
			return nil, ErrUsernameTaken
		}

		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("User registered", "username", username)

	return user, nil
}
