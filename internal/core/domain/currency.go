package domain

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string       `json:"currencyCode"` // e.g. "USD"
	Symbol       string       `json:"symbol"`       // e.g. "$"
	Name         string       `json:"name"`         // e.g. "US Dollar"
	Kind         CurrencyKind `json:"kind"`
}

// CurrencyKind distinguishes fiat currencies from crypto assets; the two
// groups are served by different rate sources.
type CurrencyKind string

const (
	Fiat   CurrencyKind = "FIAT"
	Crypto CurrencyKind = "CRYPTO"
)
