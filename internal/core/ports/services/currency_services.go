package services

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// CurrencySvcFacade validates and describes the supported currency set.
type CurrencySvcFacade interface {
	// ValidateCode returns nil for a supported 3-letter code, otherwise an
	// *apperrors.UnknownCurrencyError carrying the offending code.
	ValidateCode(code string) error

	// GetCurrencyByCode returns the currency, or apperrors.ErrNotFound.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies returns all supported currencies in sorted order.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
