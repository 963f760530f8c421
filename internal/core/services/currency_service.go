package services

import (
	"context"
	"sort"
	"strings"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

// supportedCurrencies is the static registry of tradable currencies. Fiat
// codes are served by ExchangeRate-API, crypto codes by CoinGecko.
var supportedCurrencies = []domain.Currency{
	{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar", Kind: domain.Fiat},
	{CurrencyCode: "EUR", Symbol: "€", Name: "Euro", Kind: domain.Fiat},
	{CurrencyCode: "GBP", Symbol: "£", Name: "Pound Sterling", Kind: domain.Fiat},
	{CurrencyCode: "RUB", Symbol: "₽", Name: "Russian Ruble", Kind: domain.Fiat},
	{CurrencyCode: "BTC", Symbol: "₿", Name: "Bitcoin", Kind: domain.Crypto},
	{CurrencyCode: "ETH", Symbol: "Ξ", Name: "Ether", Kind: domain.Crypto},
	{CurrencyCode: "SOL", Symbol: "◎", Name: "Solana", Kind: domain.Crypto},
}

// CurrencyService validates and describes the supported currency set.
type CurrencyService struct {
	byCode map[string]domain.Currency
}

// NewCurrencyService creates the service over the built-in registry.
func NewCurrencyService() *CurrencyService {
	byCode := make(map[string]domain.Currency, len(supportedCurrencies))
	for _, c := range supportedCurrencies {
		byCode[c.CurrencyCode] = c
	}
	return &CurrencyService{byCode: byCode}
}

// ValidateCode returns nil for a supported code, otherwise an
// *apperrors.UnknownCurrencyError carrying the offending code verbatim.
func (s *CurrencyService) ValidateCode(code string) error {
	norm := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := s.byCode[norm]; !ok {
		return &apperrors.UnknownCurrencyError{Code: code}
	}
	return nil
}

// GetCurrencyByCode returns the currency, or apperrors.ErrNotFound.
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	norm := strings.ToUpper(strings.TrimSpace(currencyCode))
	c, ok := s.byCode[norm]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

// ListCurrencies returns all supported currencies sorted by code.
func (s *CurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	out := make([]domain.Currency, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out, nil
}
