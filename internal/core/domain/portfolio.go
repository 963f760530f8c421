package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Portfolio is one user's collection of per-currency wallets.
// Invariant: at most one wallet per currency code. Portfolios start empty;
// a wallet appears on the first buy of its currency, never beforehand.
type Portfolio struct {
	UserID  int64             `json:"userID"`
	Wallets map[string]Wallet `json:"wallets"`
}

// NewPortfolio creates an empty portfolio for the given user.
func NewPortfolio(userID int64) *Portfolio {
	return &Portfolio{UserID: userID, Wallets: make(map[string]Wallet)}
}

// Wallet returns the wallet for the code, if the portfolio has one.
func (p *Portfolio) Wallet(currencyCode string) (Wallet, bool) {
	w, ok := p.Wallets[currencyCode]
	return w, ok
}

// EnsureWallet returns the wallet for the code, creating an empty one first
// if the portfolio does not hold that currency yet.
func (p *Portfolio) EnsureWallet(currencyCode string) Wallet {
	if w, ok := p.Wallets[currencyCode]; ok {
		return w
	}
	w := NewWallet(currencyCode)
	p.Wallets[currencyCode] = w
	return w
}

// SetBalance replaces the balance of the wallet for the code.
func (p *Portfolio) SetBalance(currencyCode string, balance decimal.Decimal) {
	w := p.EnsureWallet(currencyCode)
	w.Balance = balance
	p.Wallets[currencyCode] = w
}

// CurrencyCodes returns the held currency codes in stable sorted order.
func (p *Portfolio) CurrencyCodes() []string {
	codes := make([]string, 0, len(p.Wallets))
	for code := range p.Wallets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
