package services

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// RateRefresher triggers one aggregator run over all registered sources.
// Used by the scheduler and by the manual refresh endpoint.
type RateRefresher interface {
	// RefreshAll calls every source independently, merges the non-empty
	// contributions into the cache and appends each observed rate to the
	// history log. A run where no source contributed returns OK()==false
	// and leaves the cache untouched.
	RefreshAll(ctx context.Context) (domain.RefreshResult, error)
}

// RateReader answers rate lookups for the trading path.
type RateReader interface {
	// GetExchangeRate returns the current rate for from→to, refreshing the
	// cache on miss or staleness and falling back to the last-known static
	// table when every source fails. The quote always carries
	// ReverseRate == 1/Rate.
	GetExchangeRate(ctx context.Context, fromCurrency, toCurrency string) (*domain.ExchangeRateQuote, error)
}

// RateSvcFacade combines rate lookups with refresh triggering.
type RateSvcFacade interface {
	RateReader
	RateRefresher
}
