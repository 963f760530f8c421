package ports

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// RateSource adapts one external pricing provider. A source fetches rates
// for its assigned currency set and also emits the inverse of every pair it
// returns (X→USD implies USD→X at 1/rate), so consumers never derive
// inverses from provider data themselves.
//
// A failed fetch returns an error; the aggregator absorbs it as "contributed
// nothing" rather than aborting the whole refresh.
type RateSource interface {
	// Name identifies the provider in cache records and the history log.
	Name() string

	// FetchRates retrieves the source's currency set. Every returned rate
	// is positive.
	FetchRates(ctx context.Context) (map[domain.RatePair]float64, error)

	// Serves reports whether this source can produce the pair (directly or
	// as an inverse), used to restrict on-demand refreshes to one provider.
	Serves(pair domain.RatePair) bool
}
