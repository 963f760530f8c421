package sources

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// CoinGeckoName is the provenance label stored with rates from this source.
const CoinGeckoName = "CoinGecko"

// defaultCryptoIDMap maps internal crypto codes to CoinGecko asset ids.
var defaultCryptoIDMap = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
}

// CoinGeckoSource fetches crypto spot prices versus USD from the CoinGecko
// simple-price endpoint. For every X→USD rate it also emits USD→X at 1/rate.
type CoinGeckoSource struct {
	client  *http.Client
	baseURL string
	idMap   map[string]string
}

// NewCoinGeckoSource creates the source with a bounded request timeout.
func NewCoinGeckoSource(baseURL string, timeout time.Duration) *CoinGeckoSource {
	return &CoinGeckoSource{
		client:  newHTTPClient(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		idMap:   defaultCryptoIDMap,
	}
}

func (s *CoinGeckoSource) Name() string { return CoinGeckoName }

// Serves reports whether the pair is one of this source's crypto codes
// against USD, in either direction.
func (s *CoinGeckoSource) Serves(pair domain.RatePair) bool {
	if _, ok := s.idMap[pair.From]; ok && pair.To == "USD" {
		return true
	}
	if _, ok := s.idMap[pair.To]; ok && pair.From == "USD" {
		return true
	}
	return false
}

// FetchRates retrieves usd prices for the configured assets. Assets missing
// from the response are skipped; a transport or decode failure is returned
// to the aggregator, which treats it as an empty contribution.
func (s *CoinGeckoSource) FetchRates(ctx context.Context) (map[domain.RatePair]float64, error) {
	ids := make([]string, 0, len(s.idMap))
	for _, id := range s.idMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", s.baseURL, strings.Join(ids, ","))

	var payload map[string]map[string]float64
	if _, err := getJSON(ctx, s.client, url, &payload); err != nil {
		return nil, err
	}

	rates := make(map[domain.RatePair]float64)
	for code, id := range s.idMap {
		prices, ok := payload[id]
		if !ok {
			continue
		}
		rate, ok := prices["usd"]
		if !ok || rate <= 0 {
			continue
		}
		rates[domain.NewRatePair(code, "USD")] = rate
		rates[domain.NewRatePair("USD", code)] = 1 / rate
	}
	return rates, nil
}
