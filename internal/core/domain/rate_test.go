package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateRecord_IsFresh(t *testing.T) {
	now := time.Now()
	rec := RateRecord{Pair: NewRatePair("BTC", "USD"), Rate: 60000, UpdatedAt: now.Add(-4 * time.Minute)}

	assert.True(t, rec.IsFresh(now, 5*time.Minute))
	assert.False(t, rec.IsFresh(now, 3*time.Minute))
	assert.False(t, RateRecord{}.IsFresh(now, 5*time.Minute))
}

func TestNewHistoryEntry_IDIsFilenameSafe(t *testing.T) {
	at := time.Date(2026, 8, 28, 12, 30, 45, 123456789, time.UTC)
	entry := NewHistoryEntry(NewRatePair("EUR", "USD"), 1.0786, "ExchangeRate-API", at)

	assert.Equal(t, NewRatePair("EUR", "USD"), entry.Pair)
	assert.NotContains(t, entry.ID, ":")
	assert.NotContains(t, entry.ID, ".")
	assert.Contains(t, entry.ID, "EUR_USD_")
	assert.Equal(t, "EUR_USD", entry.Meta.RawID)
	assert.Equal(t, 200, entry.Meta.StatusCode)
	assert.True(t, entry.Meta.UpdatedAt.Equal(at))
}

func TestNewHistoryEntry_IDsDifferAcrossTimestamps(t *testing.T) {
	pair := NewRatePair("BTC", "USD")
	at := time.Now()

	a := NewHistoryEntry(pair, 60000, "CoinGecko", at)
	b := NewHistoryEntry(pair, 60001, "CoinGecko", at.Add(time.Nanosecond))

	assert.NotEqual(t, a.ID, b.ID)
}

func TestRefreshResult_Predicates(t *testing.T) {
	assert.False(t, RefreshResult{SourcesTotal: 2}.OK())
	assert.True(t, RefreshResult{SourcesTotal: 2, SourcesSucceeded: 1, RatesFetched: 3}.OK())
	assert.False(t, RefreshResult{SourcesTotal: 2, SourcesSucceeded: 1, RatesFetched: 3}.Complete())
	assert.True(t, RefreshResult{SourcesTotal: 2, SourcesSucceeded: 2, RatesFetched: 6}.Complete())
}
