package repositories

import (
	"context"
	"time"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// RateCacheReader defines read operations over the current rate snapshot.
type RateCacheReader interface {
	// GetRate returns the stored record for the pair, or apperrors.ErrNotFound.
	GetRate(ctx context.Context, pair domain.RatePair) (*domain.RateRecord, error)

	// LoadSnapshot returns a copy of the whole current snapshot.
	LoadSnapshot(ctx context.Context) (*domain.RateSnapshot, error)
}

// RateCacheWriter defines the single mutation path of the rate cache.
type RateCacheWriter interface {
	// PutRates merges the records into the snapshot (latest overwrites) and
	// advances last_refresh to refreshedAt. Records never expire out of the
	// snapshot; they only go stale. The write is all-or-nothing: on error
	// the previous snapshot stays authoritative in memory and on disk.
	PutRates(ctx context.Context, records []domain.RateRecord, refreshedAt time.Time) error
}

// RateCacheFacade combines read and write access to the rate cache.
type RateCacheFacade interface {
	RateCacheReader
	RateCacheWriter
}

// RateHistoryAppender records every observed rate into the append-only audit
// log. Appends from the scheduled path and on-demand refreshes interleave
// without losing entries. The trading path never reads the log.
type RateHistoryAppender interface {
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error
}
