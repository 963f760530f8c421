package dto

import (
	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// TradeRequest defines the structure for buy and sell requests.
type TradeRequest struct {
	CurrencyCode string          `json:"currencyCode" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// TradeResponse defines the structure for buy/sell responses. Total is the
// USD cost of a buy or the USD revenue of a sell.
type TradeResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	Rate         float64         `json:"rate"`
	OldBalance   decimal.Decimal `json:"oldBalance"`
	NewBalance   decimal.Decimal `json:"newBalance"`
	Total        decimal.Decimal `json:"total"`
}

// ToTradeResponse converts a domain.TradeResult to its DTO.
func ToTradeResponse(res *domain.TradeResult) TradeResponse {
	return TradeResponse{
		CurrencyCode: res.CurrencyCode,
		Amount:       res.Amount,
		Rate:         res.Rate,
		OldBalance:   res.OldBalance,
		NewBalance:   res.NewBalance,
		Total:        res.Total,
	}
}

// WalletValuationResponse is one wallet line of a portfolio valuation.
type WalletValuationResponse struct {
	CurrencyCode  string          `json:"currencyCode"`
	Balance       decimal.Decimal `json:"balance"`
	ValueInBase   decimal.Decimal `json:"valueInBase"`
	RateAvailable bool            `json:"rateAvailable"`
}

// PortfolioValuationResponse defines the structure for the portfolio report.
type PortfolioValuationResponse struct {
	BaseCurrency string                    `json:"baseCurrency"`
	TotalValue   decimal.Decimal           `json:"totalValue"`
	Wallets      []WalletValuationResponse `json:"wallets"`
}

// ToPortfolioValuationResponse converts a domain.PortfolioValuation to its DTO.
func ToPortfolioValuationResponse(val *domain.PortfolioValuation) PortfolioValuationResponse {
	wallets := make([]WalletValuationResponse, len(val.Wallets))
	for i, w := range val.Wallets {
		wallets[i] = WalletValuationResponse{
			CurrencyCode:  w.CurrencyCode,
			Balance:       w.Balance,
			ValueInBase:   w.ValueInBase,
			RateAvailable: w.RateAvailable,
		}
	}
	return PortfolioValuationResponse{
		BaseCurrency: val.BaseCurrency,
		TotalValue:   val.TotalValue,
		Wallets:      wallets,
	}
}
