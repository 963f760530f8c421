package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	"github.com/valutatrade/tradehub/internal/core/ports"
)

// fakeSource is a controllable RateSource.
type fakeSource struct {
	name   string
	rates  map[domain.RatePair]float64
	err    error
	serves map[string]bool // currency codes this source covers
	calls  atomic.Int64
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchRates(ctx context.Context) (map[domain.RatePair]float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

func (f *fakeSource) Serves(pair domain.RatePair) bool {
	return (f.serves[pair.From] && pair.To == "USD") || (f.serves[pair.To] && pair.From == "USD")
}

// fakeRateCache is an in-memory RateCacheFacade tracking writes.
type fakeRateCache struct {
	mu       sync.Mutex
	rates    map[domain.RatePair]domain.RateRecord
	last     time.Time
	putCalls int
	getCalls int
}

func newFakeRateCache() *fakeRateCache {
	return &fakeRateCache{rates: make(map[domain.RatePair]domain.RateRecord)}
}

func (f *fakeRateCache) GetRate(ctx context.Context, pair domain.RatePair) (*domain.RateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	rec, ok := f.rates[pair]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

func (f *fakeRateCache) LoadSnapshot(ctx context.Context) (*domain.RateSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := domain.NewRateSnapshot()
	for p, r := range f.rates {
		snap.Rates[p] = r
	}
	snap.LastRefresh = f.last
	return snap, nil
}

func (f *fakeRateCache) PutRates(ctx context.Context, records []domain.RateRecord, refreshedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	for _, rec := range records {
		f.rates[rec.Pair] = rec
	}
	f.last = refreshedAt
	return nil
}

func (f *fakeRateCache) seed(pair domain.RatePair, rate float64, updatedAt time.Time, source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rates[pair] = domain.RateRecord{Pair: pair, Rate: rate, UpdatedAt: updatedAt, Source: source}
}

// fakeHistory collects appended entries.
type fakeHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func (f *fakeHistory) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRateService(sources []ports.RateSource, cache *fakeRateCache, history *fakeHistory, ttl time.Duration) *RateService {
	return NewRateService(sources, cache, history, NewCurrencyService(), ttl, testLogger())
}

func cryptoSource(rates map[domain.RatePair]float64, err error) *fakeSource {
	return &fakeSource{
		name:   "CoinGecko",
		rates:  rates,
		err:    err,
		serves: map[string]bool{"BTC": true, "ETH": true, "SOL": true},
	}
}

func fiatSource(rates map[domain.RatePair]float64, err error) *fakeSource {
	return &fakeSource{
		name:   "ExchangeRate-API",
		rates:  rates,
		err:    err,
		serves: map[string]bool{"EUR": true, "GBP": true, "RUB": true},
	}
}

func TestRateService_RefreshAll_AllSourcesSucceed(t *testing.T) {
	crypto := cryptoSource(map[domain.RatePair]float64{
		domain.NewRatePair("BTC", "USD"): 59337.21,
		domain.NewRatePair("USD", "BTC"): 1 / 59337.21,
	}, nil)
	fiat := fiatSource(map[domain.RatePair]float64{
		domain.NewRatePair("EUR", "USD"): 1.0786,
		domain.NewRatePair("USD", "EUR"): 1 / 1.0786,
	}, nil)
	cache := newFakeRateCache()
	history := &fakeHistory{}
	svc := newTestRateService([]ports.RateSource{crypto, fiat}, cache, history, 5*time.Minute)

	res, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.True(t, res.Complete())
	assert.Equal(t, 2, res.SourcesSucceeded)
	assert.Equal(t, 4, res.RatesFetched)
	assert.Empty(t, res.FailedSources)

	assert.Equal(t, 1, cache.putCalls)
	rec, err := cache.GetRate(context.Background(), domain.NewRatePair("BTC", "USD"))
	require.NoError(t, err)
	assert.Equal(t, "CoinGecko", rec.Source)
	assert.Equal(t, 4, history.len())
}

func TestRateService_RefreshAll_PartialSuccessStillUpdatesCache(t *testing.T) {
	crypto := cryptoSource(nil, errors.New("connection refused"))
	fiat := fiatSource(map[domain.RatePair]float64{
		domain.NewRatePair("EUR", "USD"): 1.0786,
		domain.NewRatePair("USD", "EUR"): 1 / 1.0786,
	}, nil)
	cache := newFakeRateCache()
	history := &fakeHistory{}
	svc := newTestRateService([]ports.RateSource{crypto, fiat}, cache, history, 5*time.Minute)

	res, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.False(t, res.Complete())
	assert.Equal(t, []string{"CoinGecko"}, res.FailedSources)

	// The degraded run still wrote what it obtained.
	assert.Equal(t, 1, cache.putCalls)
	_, err = cache.GetRate(context.Background(), domain.NewRatePair("EUR", "USD"))
	assert.NoError(t, err)
}

func TestRateService_RefreshAll_AllSourcesFailLeavesCacheUntouched(t *testing.T) {
	staleAt := time.Now().Add(-time.Hour)
	cache := newFakeRateCache()
	cache.seed(domain.NewRatePair("BTC", "USD"), 58000, staleAt, "CoinGecko")
	history := &fakeHistory{}
	svc := newTestRateService([]ports.RateSource{
		cryptoSource(nil, errors.New("timeout")),
		fiatSource(map[domain.RatePair]float64{}, nil),
	}, cache, history, 5*time.Minute)

	res, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Len(t, res.FailedSources, 2)
	assert.Equal(t, 0, cache.putCalls)
	assert.Equal(t, 0, history.len())

	// Existing (stale) snapshot not overwritten with empty data.
	rec, err := cache.GetRate(context.Background(), domain.NewRatePair("BTC", "USD"))
	require.NoError(t, err)
	assert.InDelta(t, 58000, rec.Rate, 1e-9)
}

func TestRateService_GetExchangeRate_FreshCacheHitSkipsSources(t *testing.T) {
	crypto := cryptoSource(nil, errors.New("should not be called"))
	cache := newFakeRateCache()
	cache.seed(domain.NewRatePair("BTC", "USD"), 59337.21, time.Now(), "CoinGecko")
	svc := newTestRateService([]ports.RateSource{crypto}, cache, &fakeHistory{}, 5*time.Minute)

	quote, err := svc.GetExchangeRate(context.Background(), "BTC", "USD")
	require.NoError(t, err)

	assert.InDelta(t, 59337.21, quote.Rate, 1e-9)
	assert.InDelta(t, 1/59337.21, quote.ReverseRate, 1e-12)
	assert.Equal(t, "CoinGecko", quote.Source)
	assert.EqualValues(t, 0, crypto.calls.Load())
}

func TestRateService_GetExchangeRate_StaleRecordTriggersOneRefresh(t *testing.T) {
	crypto := cryptoSource(map[domain.RatePair]float64{
		domain.NewRatePair("BTC", "USD"): 60000,
		domain.NewRatePair("USD", "BTC"): 1.0 / 60000,
	}, nil)
	cache := newFakeRateCache()
	cache.seed(domain.NewRatePair("BTC", "USD"), 59000, time.Now().Add(-time.Hour), "CoinGecko")
	svc := newTestRateService([]ports.RateSource{crypto}, cache, &fakeHistory{}, 5*time.Minute)

	quote, err := svc.GetExchangeRate(context.Background(), "BTC", "USD")
	require.NoError(t, err)

	assert.InDelta(t, 60000, quote.Rate, 1e-9)
	assert.EqualValues(t, 1, crypto.calls.Load())
}

func TestRateService_GetExchangeRate_ConcurrentStaleReadsSingleRefresh(t *testing.T) {
	crypto := cryptoSource(map[domain.RatePair]float64{
		domain.NewRatePair("ETH", "USD"): 3720,
		domain.NewRatePair("USD", "ETH"): 1.0 / 3720,
	}, nil)
	cache := newFakeRateCache()
	cache.seed(domain.NewRatePair("ETH", "USD"), 3500, time.Now().Add(-time.Hour), "CoinGecko")
	svc := newTestRateService([]ports.RateSource{crypto}, cache, &fakeHistory{}, 5*time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			quote, err := svc.GetExchangeRate(context.Background(), "ETH", "USD")
			assert.NoError(t, err)
			assert.InDelta(t, 3720, quote.Rate, 1e-9)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, crypto.calls.Load())
}

func TestRateService_GetExchangeRate_OnDemandRestrictedToServingSource(t *testing.T) {
	crypto := cryptoSource(map[domain.RatePair]float64{
		domain.NewRatePair("BTC", "USD"): 60000,
	}, nil)
	fiat := fiatSource(map[domain.RatePair]float64{
		domain.NewRatePair("EUR", "USD"): 1.08,
	}, nil)
	cache := newFakeRateCache()
	svc := newTestRateService([]ports.RateSource{crypto, fiat}, cache, &fakeHistory{}, 5*time.Minute)

	_, err := svc.GetExchangeRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)

	assert.EqualValues(t, 0, crypto.calls.Load())
	assert.EqualValues(t, 1, fiat.calls.Load())
}

func TestRateService_GetExchangeRate_FallbackWhenAllSourcesFail(t *testing.T) {
	fiat := fiatSource(nil, errors.New("down"))
	svc := newTestRateService([]ports.RateSource{fiat}, newFakeRateCache(), &fakeHistory{}, 5*time.Minute)

	quote, err := svc.GetExchangeRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 1.0786, quote.Rate, 1e-9)
	assert.Equal(t, "Fallback", quote.Source)

	// Inverse pair served as 1/rate from the same table.
	reverse, err := svc.GetExchangeRate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 1/1.0786, reverse.Rate, 1e-9)
}

func TestRateService_GetExchangeRate_RoundTripLaw(t *testing.T) {
	crypto := cryptoSource(map[domain.RatePair]float64{
		domain.NewRatePair("BTC", "USD"): 59337.21,
		domain.NewRatePair("USD", "BTC"): 1 / 59337.21,
	}, nil)
	cache := newFakeRateCache()
	svc := newTestRateService([]ports.RateSource{crypto}, cache, &fakeHistory{}, 5*time.Minute)

	xy, err := svc.GetExchangeRate(context.Background(), "BTC", "USD")
	require.NoError(t, err)
	yx, err := svc.GetExchangeRate(context.Background(), "USD", "BTC")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, xy.Rate*yx.Rate, 1e-9)
	assert.InDelta(t, xy.ReverseRate, yx.Rate, 1e-12)
}

func TestRateService_GetExchangeRate_UnknownCurrencyBeforeAnyAccess(t *testing.T) {
	crypto := cryptoSource(nil, errors.New("should not be called"))
	cache := newFakeRateCache()
	svc := newTestRateService([]ports.RateSource{crypto}, cache, &fakeHistory{}, 5*time.Minute)

	_, err := svc.GetExchangeRate(context.Background(), "XYZ", "USD")

	var unknown *apperrors.UnknownCurrencyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "XYZ", unknown.Code)
	assert.Equal(t, 0, cache.getCalls)
	assert.EqualValues(t, 0, crypto.calls.Load())
}

func TestRateService_GetExchangeRate_SameCurrencyIsIdentity(t *testing.T) {
	svc := newTestRateService(nil, newFakeRateCache(), &fakeHistory{}, 5*time.Minute)

	quote, err := svc.GetExchangeRate(context.Background(), "usd", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, quote.Rate)
	assert.Equal(t, 1.0, quote.ReverseRate)
}

func TestRateService_GetExchangeRate_UnavailablePair(t *testing.T) {
	// No source serves EUR→GBP and the fallback table has no such key.
	svc := newTestRateService([]ports.RateSource{fiatSource(nil, errors.New("down"))}, newFakeRateCache(), &fakeHistory{}, 5*time.Minute)

	_, err := svc.GetExchangeRate(context.Background(), "EUR", "GBP")

	var unavailable *apperrors.RateUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "EUR", unavailable.FromCurrency)
	assert.Equal(t, "GBP", unavailable.ToCurrency)
}
