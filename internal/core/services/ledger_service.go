package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
)

// LedgerService owns wallet balance mutations and trade execution. The
// load-compute-persist cycle for one user's portfolio is serialized by a
// per-user lock; different users run fully in parallel.
type LedgerService struct {
	portfolios portsrepo.PortfolioRepository
	rates      portssvc.RateReader
	currency   portssvc.CurrencySvcFacade

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewLedgerService creates the service.
func NewLedgerService(
	portfolios portsrepo.PortfolioRepository,
	rates portssvc.RateReader,
	currency portssvc.CurrencySvcFacade,
) *LedgerService {
	return &LedgerService{
		portfolios: portfolios,
		rates:      rates,
		currency:   currency,
		userLocks:  make(map[int64]*sync.Mutex),
	}
}

func (s *LedgerService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Buy credits amount of the currency to the user's wallet. The portfolio and
// the target wallet are created lazily; cost = amount * rate(currency→USD).
func (s *LedgerService) Buy(ctx context.Context, userID int64, currencyCode string, amount decimal.Decimal) (*domain.TradeResult, error) {
	if !amount.IsPositive() {
		return nil, &apperrors.InvalidAmountError{Amount: amount}
	}
	if err := s.currency.ValidateCode(currencyCode); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(currencyCode))

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	portfolio, err := s.loadOrCreatePortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	quote, err := s.rates.GetExchangeRate(ctx, code, "USD")
	if err != nil {
		return nil, err
	}

	wallet := portfolio.EnsureWallet(code)
	oldBalance := wallet.Balance
	newBalance := oldBalance.Add(amount)
	portfolio.SetBalance(code, newBalance)

	if err := s.portfolios.SavePortfolio(ctx, *portfolio); err != nil {
		return nil, fmt.Errorf("persist portfolio for user %d: %w", userID, err)
	}

	return &domain.TradeResult{
		CurrencyCode: code,
		Amount:       amount,
		Rate:         quote.Rate,
		OldBalance:   oldBalance,
		NewBalance:   newBalance,
		Total:        amount.Mul(decimal.NewFromFloat(quote.Rate)),
	}, nil
}

// Sell debits amount from the user's wallet. Wallets are never auto-created
// on sell; revenue = amount * rate(currency→USD).
func (s *LedgerService) Sell(ctx context.Context, userID int64, currencyCode string, amount decimal.Decimal) (*domain.TradeResult, error) {
	if !amount.IsPositive() {
		return nil, &apperrors.InvalidAmountError{Amount: amount}
	}
	if err := s.currency.ValidateCode(currencyCode); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(currencyCode))

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	portfolio, err := s.portfolios.FindPortfolioByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, &apperrors.NoWalletError{Code: code}
	}
	if err != nil {
		return nil, fmt.Errorf("load portfolio for user %d: %w", userID, err)
	}

	wallet, ok := portfolio.Wallet(code)
	if !ok {
		return nil, &apperrors.NoWalletError{Code: code}
	}
	if amount.GreaterThan(wallet.Balance) {
		return nil, &apperrors.InsufficientFundsError{
			Available: wallet.Balance,
			Required:  amount,
			Code:      code,
		}
	}

	quote, err := s.rates.GetExchangeRate(ctx, code, "USD")
	if err != nil {
		return nil, err
	}

	oldBalance := wallet.Balance
	newBalance := oldBalance.Sub(amount)
	portfolio.SetBalance(code, newBalance)

	if err := s.portfolios.SavePortfolio(ctx, *portfolio); err != nil {
		return nil, fmt.Errorf("persist portfolio for user %d: %w", userID, err)
	}

	return &domain.TradeResult{
		CurrencyCode: code,
		Amount:       amount,
		Rate:         quote.Rate,
		OldBalance:   oldBalance,
		NewBalance:   newBalance,
		Total:        amount.Mul(decimal.NewFromFloat(quote.Rate)),
	}, nil
}

// GetPortfolioValuation converts every wallet to the base currency and sums
// the total. A wallet whose currency has no rate path to the base
// contributes zero and is flagged via RateAvailable=false instead of
// failing the whole report.
func (s *LedgerService) GetPortfolioValuation(ctx context.Context, userID int64, baseCurrency string) (*domain.PortfolioValuation, error) {
	if err := s.currency.ValidateCode(baseCurrency); err != nil {
		return nil, err
	}
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))

	portfolio, err := s.portfolios.FindPortfolioByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		portfolio = domain.NewPortfolio(userID)
	} else if err != nil {
		return nil, fmt.Errorf("load portfolio for user %d: %w", userID, err)
	}

	valuation := &domain.PortfolioValuation{
		BaseCurrency: base,
		TotalValue:   decimal.Zero,
		Wallets:      make([]domain.WalletValuation, 0, len(portfolio.Wallets)),
	}

	for _, code := range portfolio.CurrencyCodes() {
		wallet := portfolio.Wallets[code]
		wv := domain.WalletValuation{
			CurrencyCode:  code,
			Balance:       wallet.Balance,
			ValueInBase:   decimal.Zero,
			RateAvailable: true,
		}

		if code == base {
			wv.ValueInBase = wallet.Balance
		} else {
			quote, err := s.rates.GetExchangeRate(ctx, code, base)
			if err != nil {
				var unavailable *apperrors.RateUnavailableError
				if errors.As(err, &unavailable) {
					wv.RateAvailable = false
				} else {
					return nil, err
				}
			} else {
				wv.ValueInBase = wallet.Balance.Mul(decimal.NewFromFloat(quote.Rate))
			}
		}

		valuation.TotalValue = valuation.TotalValue.Add(wv.ValueInBase)
		valuation.Wallets = append(valuation.Wallets, wv)
	}

	return valuation, nil
}

func (s *LedgerService) loadOrCreatePortfolio(ctx context.Context, userID int64) (*domain.Portfolio, error) {
	portfolio, err := s.portfolios.FindPortfolioByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.NewPortfolio(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load portfolio for user %d: %w", userID, err)
	}
	return portfolio, nil
}
