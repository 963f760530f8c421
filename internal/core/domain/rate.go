package domain

import (
	"strings"
	"time"
)

// RateRecord is the authoritative rate for one pair at one instant.
// A cache holds at most one record per pair; newer writes overwrite.
type RateRecord struct {
	Pair      RatePair  `json:"pair"`
	Rate      float64   `json:"rate"` // always > 0
	UpdatedAt time.Time `json:"updatedAt"`
	Source    string    `json:"source"`
}

// IsFresh reports whether the record is younger than ttl at the given instant.
func (r RateRecord) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.UpdatedAt) <= ttl
}

// RateSnapshot is the single current, overwritable view of all known rates.
// Invariant: every record's UpdatedAt <= LastRefresh.
type RateSnapshot struct {
	Rates       map[RatePair]RateRecord `json:"rates"`
	LastRefresh time.Time               `json:"lastRefresh"`
}

// NewRateSnapshot returns an empty snapshot.
func NewRateSnapshot() *RateSnapshot {
	return &RateSnapshot{Rates: make(map[RatePair]RateRecord)}
}

// HistoryMeta carries provenance details for one observed rate.
type HistoryMeta struct {
	RawID      string    `json:"raw_id"`
	StatusCode int       `json:"status_code"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HistoryEntry is one immutable row of the append-only rate audit log.
// Entries are never mutated or deleted.
type HistoryEntry struct {
	ID        string      `json:"id"`
	Pair      RatePair    `json:"pair"`
	Rate      float64     `json:"rate"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Meta      HistoryMeta `json:"meta"`
}

// NewHistoryEntry builds an entry whose ID is derived from the pair key and
// the observation timestamp, which keeps IDs unique per (pair, instant).
func NewHistoryEntry(pair RatePair, rate float64, source string, observedAt time.Time) HistoryEntry {
	ts := observedAt.Format(time.RFC3339Nano)
	id := pair.Key() + "_" + sanitizeIDPart(ts)
	return HistoryEntry{
		ID:        id,
		Pair:      pair,
		Rate:      rate,
		Timestamp: observedAt,
		Source:    source,
		Meta: HistoryMeta{
			RawID:      pair.Key(),
			StatusCode: 200,
			UpdatedAt:  observedAt,
		},
	}
}

func sanitizeIDPart(s string) string {
	s = strings.ReplaceAll(s, ":", "-")
	return strings.ReplaceAll(s, ".", "-")
}

// ExchangeRateQuote is the answer to a rate lookup: the direct rate, when it
// was observed, and the derived reverse rate (always 1/rate).
type ExchangeRateQuote struct {
	FromCurrency string    `json:"fromCurrency"`
	ToCurrency   string    `json:"toCurrency"`
	Rate         float64   `json:"rate"`
	ReverseRate  float64   `json:"reverseRate"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Source       string    `json:"source"`
}

// RefreshResult summarizes one aggregator run over all registered sources.
type RefreshResult struct {
	SourcesSucceeded int      `json:"sourcesSucceeded"`
	SourcesTotal     int      `json:"sourcesTotal"`
	RatesFetched     int      `json:"ratesFetched"`
	FailedSources    []string `json:"failedSources,omitempty"`
}

// OK reports whether at least one source contributed rates. A run with
// OK()==false must leave the existing cache snapshot untouched.
func (r RefreshResult) OK() bool { return r.RatesFetched > 0 }

// Complete reports whether every configured source succeeded. Partial runs
// still update the cache but are treated as degraded.
func (r RefreshResult) Complete() bool {
	return r.SourcesTotal > 0 && r.SourcesSucceeded == r.SourcesTotal
}
