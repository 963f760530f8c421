package repositories

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// PortfolioRepository defines persistence for user portfolios.
type PortfolioRepository interface {
	// FindPortfolioByUserID returns the stored portfolio, or
	// apperrors.ErrNotFound when the user has none yet.
	FindPortfolioByUserID(ctx context.Context, userID int64) (*domain.Portfolio, error)

	// SavePortfolio upserts the portfolio keyed by user id.
	SavePortfolio(ctx context.Context, portfolio domain.Portfolio) error
}

// UserRepository defines persistence for user records.
type UserRepository interface {
	// CreateUser assigns the next user id, persists the record and returns
	// the stored user. Returns apperrors.ErrDuplicate when the username is
	// taken.
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)

	// FindUserByUsername returns the user, or apperrors.ErrNotFound.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindUserByID returns the user, or apperrors.ErrNotFound.
	FindUserByID(ctx context.Context, userID int64) (*domain.User, error)
}
