package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

// LedgerSvcFacade owns wallet balance mutations and trade execution.
// Operations against one user's portfolio are serialized; different users
// run fully in parallel.
type LedgerSvcFacade interface {
	// Buy credits amount of the currency to the user's wallet, creating the
	// portfolio and the wallet lazily, and reports cost = amount * rate
	// (currency→USD).
	Buy(ctx context.Context, userID int64, currencyCode string, amount decimal.Decimal) (*domain.TradeResult, error)

	// Sell debits amount from the user's wallet and reports
	// revenue = amount * rate. Wallets are never auto-created on sell.
	Sell(ctx context.Context, userID int64, currencyCode string, amount decimal.Decimal) (*domain.TradeResult, error)

	// GetPortfolioValuation converts every wallet to the base currency and
	// sums the total. A wallet with no rate path to the base contributes
	// zero and is flagged, not failed.
	GetPortfolioValuation(ctx context.Context, userID int64, baseCurrency string) (*domain.PortfolioValuation, error)
}
