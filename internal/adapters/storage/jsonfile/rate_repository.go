package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

const (
	ratesFileName   = "rates.json"
	historyFileName = "exchange_rates.json"

	// snapshotWriter labels the top-level "source" field of rates.json.
	snapshotWriter = "ParserService"
)

// RateRepository stores the current rate snapshot in rates.json and the
// append-only history log in exchange_rates.json. Each store is guarded by
// its own lock so the scheduled refresh and on-demand refreshes interleave
// safely; reads serve a consistent copy of the in-memory snapshot.
type RateRepository struct {
	ratesPath   string
	historyPath string

	mu       sync.RWMutex
	snapshot *domain.RateSnapshot // nil until first load

	histMu sync.Mutex
}

// NewRateRepository creates the repository rooted at dataPath.
func NewRateRepository(dataPath string) *RateRepository {
	return &RateRepository{
		ratesPath:   filepath.Join(dataPath, ratesFileName),
		historyPath: filepath.Join(dataPath, historyFileName),
	}
}

// rateRecordJSON is the persisted per-pair record of rates.json.
type rateRecordJSON struct {
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`
}

// GetRate returns the stored record for the pair, or apperrors.ErrNotFound.
func (r *RateRepository) GetRate(ctx context.Context, pair domain.RatePair) (*domain.RateRecord, error) {
	snap, err := r.getSnapshot()
	if err != nil {
		return nil, err
	}
	rec, ok := snap.Rates[pair]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

// LoadSnapshot returns a copy of the whole current snapshot.
func (r *RateRepository) LoadSnapshot(ctx context.Context) (*domain.RateSnapshot, error) {
	snap, err := r.getSnapshot()
	if err != nil {
		return nil, err
	}
	return copySnapshot(snap), nil
}

// PutRates merges the records into the snapshot and advances last_refresh.
// The new snapshot is written to disk first; the in-memory view is only
// replaced once the write succeeded.
func (r *RateRepository) PutRates(ctx context.Context, records []domain.RateRecord, refreshedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadLocked(); err != nil {
		return err
	}

	next := copySnapshot(r.snapshot)
	for _, rec := range records {
		next.Rates[rec.Pair] = rec
	}
	next.LastRefresh = refreshedAt

	if err := r.writeSnapshot(next); err != nil {
		return fmt.Errorf("persist rate snapshot: %w", err)
	}
	r.snapshot = next
	return nil
}

func (r *RateRepository) getSnapshot() (*domain.RateSnapshot, error) {
	r.mu.RLock()
	if r.snapshot != nil {
		snap := r.snapshot
		r.mu.RUnlock()
		return snap, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(); err != nil {
		return nil, err
	}
	return r.snapshot, nil
}

func (r *RateRepository) loadLocked() error {
	if r.snapshot != nil {
		return nil
	}

	var raw map[string]json.RawMessage
	err := readJSONFile(r.ratesPath, &raw)
	if errors.Is(err, os.ErrNotExist) {
		r.snapshot = domain.NewRateSnapshot()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load rate snapshot: %w", err)
	}

	snap := domain.NewRateSnapshot()
	for key, msg := range raw {
		switch key {
		case "source":
			// Writer label, nothing to restore.
		case "last_refresh":
			var ts time.Time
			if err := json.Unmarshal(msg, &ts); err == nil {
				snap.LastRefresh = ts
			}
		default:
			pair, err := domain.ParseRateKey(key)
			if err != nil {
				return fmt.Errorf("load rate snapshot: %w", err)
			}
			var rec rateRecordJSON
			if err := json.Unmarshal(msg, &rec); err != nil {
				return fmt.Errorf("load rate snapshot key %q: %w", key, err)
			}
			snap.Rates[pair] = domain.RateRecord{
				Pair:      pair,
				Rate:      rec.Rate,
				UpdatedAt: rec.UpdatedAt,
				Source:    rec.Source,
			}
		}
	}
	r.snapshot = snap
	return nil
}

func (r *RateRepository) writeSnapshot(snap *domain.RateSnapshot) error {
	out := make(map[string]any, len(snap.Rates)+2)
	out["source"] = snapshotWriter
	out["last_refresh"] = snap.LastRefresh
	for pair, rec := range snap.Rates {
		out[pair.Key()] = rateRecordJSON{
			Rate:      rec.Rate,
			UpdatedAt: rec.UpdatedAt,
			Source:    rec.Source,
		}
	}
	return writeJSONFile(r.ratesPath, out)
}

func copySnapshot(snap *domain.RateSnapshot) *domain.RateSnapshot {
	out := &domain.RateSnapshot{
		Rates:       make(map[domain.RatePair]domain.RateRecord, len(snap.Rates)),
		LastRefresh: snap.LastRefresh,
	}
	for pair, rec := range snap.Rates {
		out.Rates[pair] = rec
	}
	return out
}

// historyEntryJSON is the persisted row shape of exchange_rates.json.
type historyEntryJSON struct {
	ID           string          `json:"id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         float64         `json:"rate"`
	Timestamp    time.Time       `json:"timestamp"`
	Source       string          `json:"source"`
	Meta         historyMetaJSON `json:"meta"`
}

type historyMetaJSON struct {
	RawID      string    `json:"raw_id"`
	StatusCode int       `json:"status_code"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AppendHistory adds one entry to the audit log. Existing entries are never
// touched; interleaved appenders are serialized by the history lock.
func (r *RateRepository) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	r.histMu.Lock()
	defer r.histMu.Unlock()

	var log []historyEntryJSON
	err := readJSONFile(r.historyPath, &log)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load rate history: %w", err)
	}

	log = append(log, historyEntryJSON{
		ID:           entry.ID,
		FromCurrency: entry.Pair.From,
		ToCurrency:   entry.Pair.To,
		Rate:         entry.Rate,
		Timestamp:    entry.Timestamp,
		Source:       entry.Source,
		Meta: historyMetaJSON{
			RawID:      entry.Meta.RawID,
			StatusCode: entry.Meta.StatusCode,
			UpdatedAt:  entry.Meta.UpdatedAt,
		},
	})

	if err := writeJSONFile(r.historyPath, log); err != nil {
		return fmt.Errorf("persist rate history: %w", err)
	}
	return nil
}
