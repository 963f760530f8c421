package domain

import (
	"github.com/shopspring/decimal"
)

// Wallet holds the balance of one currency inside a portfolio.
// Invariant: Balance is never negative; the currency code is fixed at
// construction.
type Wallet struct {
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
}

// NewWallet creates an empty wallet for the given (already validated) code.
func NewWallet(currencyCode string) Wallet {
	return Wallet{CurrencyCode: currencyCode, Balance: decimal.Zero}
}
