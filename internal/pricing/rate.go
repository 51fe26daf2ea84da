package pricing

// Source tags record which fallback step produced a rate. Diagnostics
// only: business logic never branches on them.
const (
	SourceCaller    = "caller-supplied"
	SourceEdgeCache = "edge-cache"
	SourceMarket    = "direct-market-api"
	SourceFallback  = "fallback"
)

// ExchangeRate is one crypto/fiat quotation. Ephemeral: fetched on demand,
// never persisted.
type ExchangeRate struct {
	Base   string  `json:"base"`
	Quote  string  `json:"quote"`
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`
}

// Priced reports whether the rate is usable. Rate <= 0 signals "unpriced"
// rather than an error condition.
func (r ExchangeRate) Priced() bool {
	return r.Rate > 0
}

// stableSymbols are USD-pegged assets that fall back to a rate of 1 when
// every source fails and the quote currency is USD.
var stableSymbols = map[string]bool{
	"usdt": true,
	"usdc": true,
	"dai":  true,
	"busd": true,
}

// Stablecoin reports whether symbol is a known USD-pegged asset.
func Stablecoin(symbol string) bool {
	return stableSymbols[normalizeSymbol(symbol)]
}
