package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// ExchangeRateAPIName is the provenance label stored with rates from this source.
const ExchangeRateAPIName = "ExchangeRate-API"

// defaultFiatCurrencies is the fiat set this source is responsible for.
var defaultFiatCurrencies = []string{"EUR", "GBP", "RUB"}

// ExchangeRateAPISource fetches fiat conversion rates from ExchangeRate-API
// relative to the USD base. For every X→USD rate it also emits USD→X at
// 1/rate.
type ExchangeRateAPISource struct {
	client       *http.Client
	baseURL      string
	apiKey       string
	baseCurrency string
	currencies   []string
}

// NewExchangeRateAPISource creates the source with a bounded request timeout.
func NewExchangeRateAPISource(baseURL, apiKey string, timeout time.Duration) *ExchangeRateAPISource {
	return &ExchangeRateAPISource{
		client:       newHTTPClient(timeout),
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		baseCurrency: "USD",
		currencies:   defaultFiatCurrencies,
	}
}

func (s *ExchangeRateAPISource) Name() string { return ExchangeRateAPIName }

// Serves reports whether the pair is one of this source's fiat codes against
// USD, in either direction.
func (s *ExchangeRateAPISource) Serves(pair domain.RatePair) bool {
	for _, code := range s.currencies {
		if (pair.From == code && pair.To == "USD") || (pair.From == "USD" && pair.To == code) {
			return true
		}
	}
	return false
}

type exchangeRateAPIResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// FetchRates retrieves the latest conversion table for the USD base and maps
// the configured fiat set into pairs. A non-success result is an error for
// the aggregator to absorb.
func (s *ExchangeRateAPISource) FetchRates(ctx context.Context) (map[domain.RatePair]float64, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", s.baseURL, s.apiKey, s.baseCurrency)

	var payload exchangeRateAPIResponse
	if _, err := getJSON(ctx, s.client, url, &payload); err != nil {
		return nil, err
	}
	if payload.Result != "success" {
		reason := payload.ErrorType
		if reason == "" {
			reason = "unknown error"
		}
		return nil, fmt.Errorf("exchangerate-api: %s", reason)
	}

	rates := make(map[domain.RatePair]float64)
	for _, code := range s.currencies {
		rate, ok := payload.ConversionRates[code]
		if !ok || rate <= 0 {
			continue
		}
		rates[domain.NewRatePair(code, "USD")] = rate
		rates[domain.NewRatePair("USD", code)] = 1 / rate
	}
	return rates, nil
}
