package services

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// UserSvcFacade handles registration and credential checks. Session
// lifetime is owned by the interface layer (JWT), not by the core.
type UserSvcFacade interface {
	// Register creates a new user with a bcrypt password hash and an empty
	// portfolio. Returns apperrors.ErrDuplicate when the username is taken
	// and apperrors.ErrValidation for short usernames/passwords.
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Authenticate verifies the credentials and returns the user, or
	// apperrors.ErrNotFound when the username or password does not match.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// GetUserByID returns the user, or apperrors.ErrNotFound.
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
}
