package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	"github.com/valutatrade/tradehub/internal/core/ports"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
)

// fallbackSource labels quotes served from the last-known static table.
const fallbackSource = "Fallback"

// fallbackRates is the last-known static table used when every source fails
// for a requested pair. Inverse pairs are derived at lookup time.
var fallbackRates = map[string]float64{
	"EUR_USD": 1.0786,
	"BTC_USD": 59337.21,
	"RUB_USD": 0.01016,
	"ETH_USD": 3720.00,
}

// RateService aggregates rates from the registered sources into the cache,
// appends every observation to the history log, and answers rate lookups for
// the trading path with TTL-based freshness.
type RateService struct {
	sources  []ports.RateSource
	cache    portsrepo.RateCacheFacade
	history  portsrepo.RateHistoryAppender
	currency portssvc.CurrencySvcFacade
	ttl      time.Duration
	logger   *slog.Logger

	// refreshMu single-flights on-demand refreshes: concurrent stale reads
	// of the same pair trigger exactly one fetch.
	refreshMu sync.Mutex
}

// NewRateService creates the service. ttl controls cache freshness for the
// trading path.
func NewRateService(
	sources []ports.RateSource,
	cache portsrepo.RateCacheFacade,
	history portsrepo.RateHistoryAppender,
	currency portssvc.CurrencySvcFacade,
	ttl time.Duration,
	logger *slog.Logger,
) *RateService {
	return &RateService{
		sources:  sources,
		cache:    cache,
		history:  history,
		currency: currency,
		ttl:      ttl,
		logger:   logger,
	}
}

// RefreshAll runs the aggregator over every registered source. A source
// failure degrades to "contributed nothing"; only a run where no source
// contributed leaves the cache untouched (OK()==false).
func (s *RateService) RefreshAll(ctx context.Context) (domain.RefreshResult, error) {
	return s.refresh(ctx, s.sources)
}

func (s *RateService) refresh(ctx context.Context, srcs []ports.RateSource) (domain.RefreshResult, error) {
	res := domain.RefreshResult{SourcesTotal: len(srcs)}

	merged := make(map[domain.RatePair]float64)
	provenance := make(map[domain.RatePair]string)
	for _, src := range srcs {
		rates, err := src.FetchRates(ctx)
		if err != nil {
			fetchErr := &apperrors.SourceFetchError{Source: src.Name(), Err: err}
			s.logger.Warn("rate source failed", slog.String("source", src.Name()), slog.String("error", fetchErr.Error()))
			res.FailedSources = append(res.FailedSources, src.Name())
			continue
		}
		if len(rates) == 0 {
			s.logger.Warn("rate source returned no data", slog.String("source", src.Name()))
			res.FailedSources = append(res.FailedSources, src.Name())
			continue
		}
		// Last writer wins on key collision; sources own disjoint pair sets
		// in normal operation.
		for pair, rate := range rates {
			merged[pair] = rate
			provenance[pair] = src.Name()
		}
		res.SourcesSucceeded++
		s.logger.Info("fetched rates", slog.String("source", src.Name()), slog.Int("count", len(rates)))
	}

	res.RatesFetched = len(merged)
	if len(merged) == 0 {
		return res, nil
	}

	now := time.Now()
	records := make([]domain.RateRecord, 0, len(merged))
	for pair, rate := range merged {
		records = append(records, domain.RateRecord{
			Pair:      pair,
			Rate:      rate,
			UpdatedAt: now,
			Source:    provenance[pair],
		})
	}

	// History is appended once per observed rate regardless of whether the
	// cache write below succeeds.
	for _, rec := range records {
		entry := domain.NewHistoryEntry(rec.Pair, rec.Rate, rec.Source, now)
		if err := s.history.AppendHistory(ctx, entry); err != nil {
			s.logger.Error("append rate history", slog.String("pair", rec.Pair.Key()), slog.String("error", err.Error()))
		}
	}

	if err := s.cache.PutRates(ctx, records, now); err != nil {
		return res, fmt.Errorf("update rate cache: %w", err)
	}

	if !res.Complete() {
		s.logger.Warn("rate refresh degraded",
			slog.Int("succeeded", res.SourcesSucceeded),
			slog.Int("total", res.SourcesTotal),
			slog.Any("failed_sources", res.FailedSources),
		)
	}
	return res, nil
}

// GetExchangeRate answers a rate lookup for the trading path. Both codes are
// validated before any cache or network access. A miss or stale record
// triggers one on-demand refresh restricted to the sources serving the pair;
// if that fails too the last-known static table is consulted.
func (s *RateService) GetExchangeRate(ctx context.Context, fromCurrency, toCurrency string) (*domain.ExchangeRateQuote, error) {
	if err := s.currency.ValidateCode(fromCurrency); err != nil {
		return nil, err
	}
	if err := s.currency.ValidateCode(toCurrency); err != nil {
		return nil, err
	}

	pair := domain.NewRatePair(fromCurrency, toCurrency)
	if pair.From == pair.To {
		return quoteFor(pair, 1.0, time.Now(), "identity"), nil
	}

	if rec, err := s.cache.GetRate(ctx, pair); err == nil {
		if rec.IsFresh(time.Now(), s.ttl) {
			return quoteFromRecord(rec), nil
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("read rate cache: %w", err)
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another stale read may have refreshed the pair while we waited.
	if rec, err := s.cache.GetRate(ctx, pair); err == nil && rec.IsFresh(time.Now(), s.ttl) {
		return quoteFromRecord(rec), nil
	}

	if srcs := s.sourcesFor(pair); len(srcs) > 0 {
		if _, err := s.refresh(ctx, srcs); err != nil {
			s.logger.Error("on-demand refresh failed", slog.String("pair", pair.Key()), slog.String("error", err.Error()))
		}
		if rec, err := s.cache.GetRate(ctx, pair); err == nil && rec.IsFresh(time.Now(), s.ttl) {
			return quoteFromRecord(rec), nil
		}
	}

	if rate, ok := fallbackRates[pair.Key()]; ok {
		return quoteFor(pair, rate, time.Now(), fallbackSource), nil
	}
	if rate, ok := fallbackRates[pair.Inverse().Key()]; ok {
		return quoteFor(pair, 1/rate, time.Now(), fallbackSource), nil
	}

	return nil, &apperrors.RateUnavailableError{FromCurrency: pair.From, ToCurrency: pair.To}
}

// sourcesFor narrows an on-demand refresh to the providers that can produce
// the pair.
func (s *RateService) sourcesFor(pair domain.RatePair) []ports.RateSource {
	var out []ports.RateSource
	for _, src := range s.sources {
		if src.Serves(pair) {
			out = append(out, src)
		}
	}
	return out
}

func quoteFromRecord(rec *domain.RateRecord) *domain.ExchangeRateQuote {
	return quoteFor(rec.Pair, rec.Rate, rec.UpdatedAt, rec.Source)
}

func quoteFor(pair domain.RatePair, rate float64, updatedAt time.Time, source string) *domain.ExchangeRateQuote {
	return &domain.ExchangeRateQuote{
		FromCurrency: pair.From,
		ToCurrency:   pair.To,
		Rate:         rate,
		ReverseRate:  1 / rate,
		UpdatedAt:    updatedAt,
		Source:       source,
	}
}
