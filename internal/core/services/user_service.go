package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
)

const (
	minUsernameLength = 3
	minPasswordLength = 4
)

// UserService handles registration and credential checks. The bcrypt hash
// embeds its own salt, so no separate salt field is stored.
type UserService struct {
	users      portsrepo.UserRepository
	portfolios portsrepo.PortfolioRepository
}

// NewUserService creates the service.
func NewUserService(users portsrepo.UserRepository, portfolios portsrepo.PortfolioRepository) *UserService {
	return &UserService{users: users, portfolios: portfolios}
}

// Register creates a new user and their empty portfolio. A wallet only
// appears later, on the first buy of its currency.
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength {
		return nil, fmt.Errorf("%w: username must be at least %d characters", apperrors.ErrValidation, minUsernameLength)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		Username:         username,
		PasswordHash:     string(hash),
		RegistrationDate: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.portfolios.SavePortfolio(ctx, *domain.NewPortfolio(user.UserID)); err != nil {
		return nil, fmt.Errorf("create portfolio for user %d: %w", user.UserID, err)
	}
	return user, nil
}

// Authenticate verifies the credentials and returns the user. A wrong
// username and a wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrNotFound)
	}
	return user, nil
}

// GetUserByID returns the user, or apperrors.ErrNotFound.
func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindUserByID(ctx, userID)
}
