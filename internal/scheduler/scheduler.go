package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
)

// RefreshScheduler runs the rate aggregator on a fixed interval in the
// background. One run executes at a time; cron skips a tick if the previous
// run is still in flight.
type RefreshScheduler struct {
	refresher portssvc.RateRefresher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger

	cron    *cron.Cron
	started bool
}

// NewRefreshScheduler creates a scheduler. timeout bounds each refresh run.
func NewRefreshScheduler(refresher portssvc.RateRefresher, interval, timeout time.Duration, logger *slog.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
	}
}

// Start registers the refresh job and starts the ticker. It must be called at
// most once.
func (s *RefreshScheduler) Start() error {
	if s.started {
		return errors.New("scheduler already started")
	}
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	s.cron.Start()
	s.started = true
	s.logger.Info("rate refresh scheduler started", slog.Duration("interval", s.interval))
	return nil
}

// Stop halts the ticker and waits for an in-flight run to finish, bounded by
// ctx.
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	if !s.started {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("rate refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown: %w", ctx.Err())
	}
}

// RunNow triggers one refresh outside the cron cadence, e.g. at startup so
// the cache is warm before the first tick.
func (s *RefreshScheduler) RunNow() {
	s.runOnce()
}

func (s *RefreshScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.refresher.RefreshAll(ctx)
	switch {
	case err != nil:
		s.logger.Error("scheduled rate refresh failed", slog.String("error", err.Error()))
	case !res.OK():
		s.logger.Error("scheduled rate refresh got no data",
			slog.Int("sources_total", res.SourcesTotal),
			slog.Any("failed_sources", res.FailedSources),
		)
	case !res.Complete():
		s.logger.Warn("scheduled rate refresh degraded",
			slog.Int("sources_succeeded", res.SourcesSucceeded),
			slog.Int("sources_total", res.SourcesTotal),
			slog.Int("rates_fetched", res.RatesFetched),
		)
	default:
		s.logger.Info("scheduled rate refresh complete", slog.Int("rates_fetched", res.RatesFetched))
	}
}
