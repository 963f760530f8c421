package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered account holder. The password hash is bcrypt, which
// embeds its own salt.
type User struct {
	UserID           int64     `json:"userID"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// TradeResult reports the outcome of one buy or sell leg.
// Total is the USD value moved: cost on a buy, revenue on a sell.
type TradeResult struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	Rate         float64         `json:"rate"`
	OldBalance   decimal.Decimal `json:"oldBalance"`
	NewBalance   decimal.Decimal `json:"newBalance"`
	Total        decimal.Decimal `json:"total"`
}

// WalletValuation is one wallet's contribution to a portfolio valuation.
// RateAvailable is false when no rate path to the base currency exists; such
// a wallet contributes zero to the total instead of failing the report.
type WalletValuation struct {
	CurrencyCode  string          `json:"currencyCode"`
	Balance       decimal.Decimal `json:"balance"`
	ValueInBase   decimal.Decimal `json:"valueInBase"`
	RateAvailable bool            `json:"rateAvailable"`
}

// PortfolioValuation is the full valuation report in one base currency.
type PortfolioValuation struct {
	BaseCurrency string            `json:"baseCurrency"`
	TotalValue   decimal.Decimal   `json:"totalValue"`
	Wallets      []WalletValuation `json:"wallets"`
}
