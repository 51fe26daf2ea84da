package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultMarketBaseURL = "https://api.coingecko.com"

// coinIDs maps short tickers to market API coin identifiers. Unknown
// tickers pass through unchanged.
var coinIDs = map[string]string{
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"sol":  "solana",
	"usdt": "tether",
	"usdc": "usd-coin",
}

var symbolForID = func() map[string]string {
	out := make(map[string]string, len(coinIDs))
	for symbol, id := range coinIDs {
		out[id] = symbol
	}
	return out
}()

// EdgeCacheSource queries a same-origin price endpoint, typically another
// instance of this service sitting behind a shared cache.
type EdgeCacheSource struct {
	baseURL string
	client  *http.Client
}

// NewEdgeCacheSource constructs the source.
func NewEdgeCacheSource(baseURL string) (*EdgeCacheSource, error) {
	if baseURL == "" {
		return nil, errors.New("pricing: empty edge cache url")
	}
	return &EdgeCacheSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Name returns the provenance tag.
func (s *EdgeCacheSource) Name() string { return SourceEdgeCache }

// Rate fetches a single symbol rate from the edge endpoint.
func (s *EdgeCacheSource) Rate(ctx context.Context, base, quote string) (float64, error) {
	path := "/api/v1/prices?symbols=" + url.QueryEscape(base) + "&vs=" + url.QueryEscape(quote)
	var rates map[string]float64
	if err := getJSON(ctx, s.client, s.baseURL+path, &rates); err != nil {
		return 0, err
	}
	rate, ok := rates[base]
	if !ok {
		return 0, fmt.Errorf("pricing: edge cache has no rate for %s", base)
	}
	return rate, nil
}

// MarketSource queries a public simple-price market API directly.
type MarketSource struct {
	baseURL string
	client  *http.Client
}

// NewMarketSource constructs the source. An empty base URL selects the
// public API.
func NewMarketSource(baseURL string) *MarketSource {
	if baseURL == "" {
		baseURL = defaultMarketBaseURL
	}
	return &MarketSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the provenance tag.
func (s *MarketSource) Name() string { return SourceMarket }

// Rate fetches a single symbol rate.
func (s *MarketSource) Rate(ctx context.Context, base, quote string) (float64, error) {
	rates, err := s.Rates(ctx, []string{base}, quote)
	if err != nil {
		return 0, err
	}
	rate, ok := rates[base]
	if !ok {
		return 0, fmt.Errorf("pricing: market api has no rate for %s", base)
	}
	return rate, nil
}

// Rates fetches rates for several symbols in one upstream call and keys
// the result by short ticker.
func (s *MarketSource) Rates(ctx context.Context, symbols []string, quote string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return nil, errors.New("pricing: no symbols")
	}
	quote = normalizeSymbol(quote)
	if quote == "" {
		quote = "usd"
	}
	ids := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = normalizeSymbol(symbol)
		if symbol == "" {
			continue
		}
		if id, ok := coinIDs[symbol]; ok {
			ids = append(ids, id)
		} else {
			ids = append(ids, symbol)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("pricing: no symbols")
	}

	path := "/api/v3/simple/price?ids=" + url.QueryEscape(strings.Join(ids, ",")) +
		"&vs_currencies=" + url.QueryEscape(quote)
	var payload map[string]map[string]float64
	if err := getJSON(ctx, s.client, s.baseURL+path, &payload); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(payload))
	for id, quotes := range payload {
		symbol := id
		if short, ok := symbolForID[id]; ok {
			symbol = short
		}
		if rate, ok := quotes[quote]; ok {
			out[symbol] = rate
		}
	}
	return out, nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("pricing: http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
