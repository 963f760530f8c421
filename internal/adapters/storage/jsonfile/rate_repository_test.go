package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

func TestRateRepository_PutAndGet(t *testing.T) {
	dir := t.TempDir()
	repo := NewRateRepository(dir)
	ctx := context.Background()

	pair := domain.NewRatePair("BTC", "USD")
	now := time.Now().UTC().Truncate(time.Second)

	err := repo.PutRates(ctx, []domain.RateRecord{
		{Pair: pair, Rate: 59337.21, UpdatedAt: now, Source: "CoinGecko"},
	}, now)
	require.NoError(t, err)

	rec, err := repo.GetRate(ctx, pair)
	require.NoError(t, err)
	assert.InDelta(t, 59337.21, rec.Rate, 1e-9)
	assert.Equal(t, "CoinGecko", rec.Source)
	assert.True(t, rec.UpdatedAt.Equal(now))

	_, err = repo.GetRate(ctx, domain.NewRatePair("EUR", "USD"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRateRepository_PersistedFileShape(t *testing.T) {
	dir := t.TempDir()
	repo := NewRateRepository(dir)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.PutRates(ctx, []domain.RateRecord{
		{Pair: domain.NewRatePair("EUR", "USD"), Rate: 1.0786, UpdatedAt: now, Source: "ExchangeRate-API"},
	}, now))

	data, err := os.ReadFile(filepath.Join(dir, "rates.json"))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	// Pair keys live alongside the top-level source/last_refresh fields.
	assert.Contains(t, raw, "source")
	assert.Contains(t, raw, "last_refresh")
	assert.Contains(t, raw, "EUR_USD")

	var rec struct {
		Rate      float64   `json:"rate"`
		UpdatedAt time.Time `json:"updated_at"`
		Source    string    `json:"source"`
	}
	require.NoError(t, json.Unmarshal(raw["EUR_USD"], &rec))
	assert.InDelta(t, 1.0786, rec.Rate, 1e-9)
	assert.Equal(t, "ExchangeRate-API", rec.Source)
}

func TestRateRepository_PutMergesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	repo := NewRateRepository(dir)
	ctx := context.Background()

	pairBTC := domain.NewRatePair("BTC", "USD")
	pairEUR := domain.NewRatePair("EUR", "USD")

	t1 := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, repo.PutRates(ctx, []domain.RateRecord{
		{Pair: pairBTC, Rate: 59000, UpdatedAt: t1, Source: "CoinGecko"},
		{Pair: pairEUR, Rate: 1.07, UpdatedAt: t1, Source: "ExchangeRate-API"},
	}, t1))

	t2 := time.Now().UTC()
	require.NoError(t, repo.PutRates(ctx, []domain.RateRecord{
		{Pair: pairBTC, Rate: 59500, UpdatedAt: t2, Source: "CoinGecko"},
	}, t2))

	// BTC overwritten, EUR retained; pairs never expire out of the map.
	snap, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Rates, 2)
	assert.InDelta(t, 59500, snap.Rates[pairBTC].Rate, 1e-9)
	assert.InDelta(t, 1.07, snap.Rates[pairEUR].Rate, 1e-9)
	assert.True(t, snap.LastRefresh.Equal(t2))
}

func TestRateRepository_ReloadFromDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	repo := NewRateRepository(dir)
	require.NoError(t, repo.PutRates(ctx, []domain.RateRecord{
		{Pair: domain.NewRatePair("ETH", "USD"), Rate: 3720, UpdatedAt: now, Source: "CoinGecko"},
	}, now))

	// A fresh repository instance sees the persisted snapshot.
	reloaded := NewRateRepository(dir)
	rec, err := reloaded.GetRate(ctx, domain.NewRatePair("ETH", "USD"))
	require.NoError(t, err)
	assert.InDelta(t, 3720, rec.Rate, 1e-9)

	snap, err := reloaded.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.LastRefresh.Equal(now))
}

func TestRateRepository_AppendHistory(t *testing.T) {
	dir := t.TempDir()
	repo := NewRateRepository(dir)
	ctx := context.Background()

	now := time.Now().UTC()
	pair := domain.NewRatePair("BTC", "USD")

	e1 := domain.NewHistoryEntry(pair, 59000, "CoinGecko", now)
	e2 := domain.NewHistoryEntry(pair, 59500, "CoinGecko", now.Add(time.Minute))
	require.NoError(t, repo.AppendHistory(ctx, e1))
	require.NoError(t, repo.AppendHistory(ctx, e2))

	data, err := os.ReadFile(filepath.Join(dir, "exchange_rates.json"))
	require.NoError(t, err)

	var log []struct {
		ID           string  `json:"id"`
		FromCurrency string  `json:"from_currency"`
		ToCurrency   string  `json:"to_currency"`
		Rate         float64 `json:"rate"`
		Source       string  `json:"source"`
		Meta         struct {
			RawID      string `json:"raw_id"`
			StatusCode int    `json:"status_code"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(data, &log))
	require.Len(t, log, 2)
	assert.Equal(t, "BTC", log[0].FromCurrency)
	assert.Equal(t, "USD", log[0].ToCurrency)
	assert.Equal(t, "BTC_USD", log[0].Meta.RawID)
	assert.Equal(t, 200, log[0].Meta.StatusCode)
	assert.NotEqual(t, log[0].ID, log[1].ID)
	assert.InDelta(t, 59500, log[1].Rate, 1e-9)
}

func TestRateRepository_ConcurrentAppendsLoseNothing(t *testing.T) {
	dir := t.TempDir()
	repo := NewRateRepository(dir)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	base := time.Now().UTC()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := domain.NewHistoryEntry(domain.NewRatePair("ETH", "USD"), float64(3000+i), "CoinGecko", base.Add(time.Duration(i)*time.Millisecond))
			assert.NoError(t, repo.AppendHistory(ctx, entry))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "exchange_rates.json"))
	require.NoError(t, err)
	var log []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &log))
	assert.Len(t, log, n)
}

func TestRateRepository_EmptySnapshotOnMissingFile(t *testing.T) {
	repo := NewRateRepository(t.TempDir())

	snap, err := repo.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Rates)
	assert.True(t, snap.LastRefresh.IsZero())
}
