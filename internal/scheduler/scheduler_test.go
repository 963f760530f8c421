package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

type countingRefresher struct {
	calls atomic.Int64
	err   error
}

func (c *countingRefresher) RefreshAll(ctx context.Context) (domain.RefreshResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return domain.RefreshResult{SourcesTotal: 1}, c.err
	}
	return domain.RefreshResult{SourcesTotal: 1, SourcesSucceeded: 1, RatesFetched: 2}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRefreshScheduler_RunNow(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewRefreshScheduler(refresher, time.Minute, time.Second, testLogger())

	s.RunNow()

	assert.EqualValues(t, 1, refresher.calls.Load())
}

func TestRefreshScheduler_StartTwiceFails(t *testing.T) {
	s := NewRefreshScheduler(&countingRefresher{}, time.Minute, time.Second, testLogger())

	require.NoError(t, s.Start())
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Error(t, s.Start())
}

func TestRefreshScheduler_TicksOnInterval(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewRefreshScheduler(refresher, 50*time.Millisecond, time.Second, testLogger())

	require.NoError(t, s.Start())
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Eventually(t, func() bool {
		return refresher.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefreshScheduler_StopIsIdempotentBeforeStart(t *testing.T) {
	s := NewRefreshScheduler(&countingRefresher{}, time.Minute, time.Second, testLogger())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestRefreshScheduler_RunNowLogsFailureWithoutPanic(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("all sources down")}
	s := NewRefreshScheduler(refresher, time.Minute, time.Second, testLogger())

	s.RunNow()

	assert.EqualValues(t, 1, refresher.calls.Load())
}
