package domain

import (
	"fmt"
	"strings"
)

// RatePair is an ordered (from, to) currency pair. Both codes are 3-letter
// and upper-cased; equality is order-sensitive.
type RatePair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewRatePair builds a pair with both codes normalized to upper case.
func NewRatePair(from, to string) RatePair {
	return RatePair{
		From: strings.ToUpper(strings.TrimSpace(from)),
		To:   strings.ToUpper(strings.TrimSpace(to)),
	}
}

// Key renders the pair in the persisted "FROM_TO" form.
func (p RatePair) Key() string {
	return p.From + "_" + p.To
}

// Inverse returns the opposite pair. Its rate is 1/rate of this pair.
func (p RatePair) Inverse() RatePair {
	return RatePair{From: p.To, To: p.From}
}

func (p RatePair) String() string {
	return p.From + "→" + p.To
}

// ParseRateKey parses a persisted "FROM_TO" key back into a pair.
func ParseRateKey(key string) (RatePair, error) {
	parts := strings.Split(key, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RatePair{}, fmt.Errorf("malformed rate key %q", key)
	}
	return NewRatePair(parts[0], parts[1]), nil
}
