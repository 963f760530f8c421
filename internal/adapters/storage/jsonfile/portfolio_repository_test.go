package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

func TestPortfolioRepository_SaveAndFind(t *testing.T) {
	repo := NewPortfolioRepository(t.TempDir())
	ctx := context.Background()

	p := domain.NewPortfolio(1)
	p.SetBalance("BTC", decimal.NewFromFloat(2.5))
	require.NoError(t, repo.SavePortfolio(ctx, *p))

	got, err := repo.FindPortfolioByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)
	w, ok := got.Wallet("BTC")
	require.True(t, ok)
	assert.True(t, w.Balance.Equal(decimal.NewFromFloat(2.5)), "got %s", w.Balance)

	_, err = repo.FindPortfolioByUserID(ctx, 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPortfolioRepository_UpsertReplacesExisting(t *testing.T) {
	repo := NewPortfolioRepository(t.TempDir())
	ctx := context.Background()

	p := domain.NewPortfolio(7)
	p.SetBalance("EUR", decimal.NewFromInt(5))
	require.NoError(t, repo.SavePortfolio(ctx, *p))

	p.SetBalance("EUR", decimal.NewFromInt(12))
	require.NoError(t, repo.SavePortfolio(ctx, *p))

	got, err := repo.FindPortfolioByUserID(ctx, 7)
	require.NoError(t, err)
	w, _ := got.Wallet("EUR")
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(12)))
}

func TestPortfolioRepository_PersistedFileShape(t *testing.T) {
	dir := t.TempDir()
	repo := NewPortfolioRepository(dir)
	ctx := context.Background()

	p := domain.NewPortfolio(3)
	p.SetBalance("ETH", decimal.NewFromFloat(1.25))
	require.NoError(t, repo.SavePortfolio(ctx, *p))

	data, err := os.ReadFile(filepath.Join(dir, "portfolios.json"))
	require.NoError(t, err)

	var records []struct {
		UserID  int64 `json:"user_id"`
		Wallets map[string]struct {
			CurrencyCode string  `json:"currency_code"`
			Balance      float64 `json:"balance"`
		} `json:"wallets"`
	}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].UserID)
	assert.Equal(t, "ETH", records[0].Wallets["ETH"].CurrencyCode)
	assert.InDelta(t, 1.25, records[0].Wallets["ETH"].Balance, 1e-9)
}

func TestPortfolioRepository_MultipleUsers(t *testing.T) {
	repo := NewPortfolioRepository(t.TempDir())
	ctx := context.Background()

	p1 := domain.NewPortfolio(1)
	p1.SetBalance("BTC", decimal.NewFromInt(1))
	p2 := domain.NewPortfolio(2)
	p2.SetBalance("EUR", decimal.NewFromInt(100))
	require.NoError(t, repo.SavePortfolio(ctx, *p1))
	require.NoError(t, repo.SavePortfolio(ctx, *p2))

	got1, err := repo.FindPortfolioByUserID(ctx, 1)
	require.NoError(t, err)
	got2, err := repo.FindPortfolioByUserID(ctx, 2)
	require.NoError(t, err)
	_, hasBTC := got1.Wallet("BTC")
	_, hasEUR := got2.Wallet("EUR")
	assert.True(t, hasBTC)
	assert.True(t, hasEUR)
}
