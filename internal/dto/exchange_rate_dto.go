package dto

import (
	"time"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// ExchangeRateResponse defines the structure for API responses containing a
// rate quote.
type ExchangeRateResponse struct {
	FromCurrency string    `json:"fromCurrency"`
	ToCurrency   string    `json:"toCurrency"`
	Rate         float64   `json:"rate"`
	ReverseRate  float64   `json:"reverseRate"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Source       string    `json:"source"`
}

// ToExchangeRateResponse converts a domain.ExchangeRateQuote to its DTO.
func ToExchangeRateResponse(quote *domain.ExchangeRateQuote) ExchangeRateResponse {
	return ExchangeRateResponse{
		FromCurrency: quote.FromCurrency,
		ToCurrency:   quote.ToCurrency,
		Rate:         quote.Rate,
		ReverseRate:  quote.ReverseRate,
		UpdatedAt:    quote.UpdatedAt,
		Source:       quote.Source,
	}
}

// RefreshResponse summarizes a manually triggered aggregator run.
type RefreshResponse struct {
	SourcesSucceeded int      `json:"sourcesSucceeded"`
	SourcesTotal     int      `json:"sourcesTotal"`
	RatesFetched     int      `json:"ratesFetched"`
	FailedSources    []string `json:"failedSources,omitempty"`
}

// ToRefreshResponse converts a domain.RefreshResult to its DTO.
func ToRefreshResponse(res domain.RefreshResult) RefreshResponse {
	return RefreshResponse{
		SourcesSucceeded: res.SourcesSucceeded,
		SourcesTotal:     res.SourcesTotal,
		RatesFetched:     res.RatesFetched,
		FailedSources:    res.FailedSources,
	}
}
