package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

const portfoliosFileName = "portfolios.json"

// PortfolioRepository stores portfolios as an array of flat keyed records in
// portfolios.json.
type PortfolioRepository struct {
	path string
	mu   sync.Mutex
}

// NewPortfolioRepository creates the repository rooted at dataPath.
func NewPortfolioRepository(dataPath string) *PortfolioRepository {
	return &PortfolioRepository{path: filepath.Join(dataPath, portfoliosFileName)}
}

type portfolioJSON struct {
	UserID  int64                 `json:"user_id"`
	Wallets map[string]walletJSON `json:"wallets"`
}

type walletJSON struct {
	CurrencyCode string  `json:"currency_code"`
	Balance      float64 `json:"balance"`
}

// FindPortfolioByUserID returns the stored portfolio, or apperrors.ErrNotFound.
func (r *PortfolioRepository) FindPortfolioByUserID(ctx context.Context, userID int64) (*domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadLocked()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.UserID == userID {
			return toDomainPortfolio(rec), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// SavePortfolio upserts the portfolio keyed by user id. The updated array is
// fully written before the call returns; on error the stored state is
// unchanged.
func (r *PortfolioRepository) SavePortfolio(ctx context.Context, portfolio domain.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadLocked()
	if err != nil {
		return err
	}

	rec := toPortfolioJSON(portfolio)
	replaced := false
	for i := range records {
		if records[i].UserID == portfolio.UserID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	if err := writeJSONFile(r.path, records); err != nil {
		return fmt.Errorf("persist portfolios: %w", err)
	}
	return nil
}

func (r *PortfolioRepository) loadLocked() ([]portfolioJSON, error) {
	var records []portfolioJSON
	err := readJSONFile(r.path, &records)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load portfolios: %w", err)
	}
	return records, nil
}

func toDomainPortfolio(rec portfolioJSON) *domain.Portfolio {
	p := domain.NewPortfolio(rec.UserID)
	for code, w := range rec.Wallets {
		p.Wallets[code] = domain.Wallet{
			CurrencyCode: w.CurrencyCode,
			Balance:      decimal.NewFromFloat(w.Balance),
		}
	}
	return p
}

func toPortfolioJSON(p domain.Portfolio) portfolioJSON {
	rec := portfolioJSON{
		UserID:  p.UserID,
		Wallets: make(map[string]walletJSON, len(p.Wallets)),
	}
	for code, w := range p.Wallets {
		rec.Wallets[code] = walletJSON{
			CurrencyCode: w.CurrencyCode,
			Balance:      w.Balance.InexactFloat64(),
		}
	}
	return rec
}
