package apihttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cryptoinvoice-pro/internal/pricing"
)

// PricesHandler serves spot rate queries backed by the pricing cache.
type PricesHandler struct {
	cache *pricing.Cache
	cfg   pricing.Config
}

// NewPricesHandler constructs a PricesHandler.
func NewPricesHandler(cache *pricing.Cache, cfg pricing.Config) *PricesHandler {
	return &PricesHandler{cache: cache, cfg: cfg}
}

// ServeHTTP handles GET /api/v1/prices.
func (h *PricesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.cache == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	symbols := splitList(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		symbols = h.cfg.Basket
	}
	vs := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("vs")))
	if vs == "" {
		vs = h.cfg.Quote
	}

	rates, _, err := h.cache.Rates(r.Context(), symbols, vs)
	if err != nil {
		rates = h.fallbackRates(symbols, vs)
		if len(rates) == 0 {
			http.Error(w, "price sources unavailable", http.StatusBadGateway)
			return
		}
	}

	for _, symbol := range symbols {
		symbol = strings.ToLower(strings.TrimSpace(symbol))
		if _, ok := rates[symbol]; !ok && vs == "usd" && pricing.Stablecoin(symbol) {
			rates[symbol] = 1
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf(
		"s-maxage=%d, stale-while-revalidate=%d",
		int(h.cache.TTL().Seconds()),
		int(h.cache.StaleFor().Seconds()),
	))
	_ = json.NewEncoder(w).Encode(rates)
}

func (h *PricesHandler) fallbackRates(symbols []string, vs string) map[string]float64 {
	if vs != h.cfg.Quote && vs != "usd" {
		return nil
	}
	out := make(map[string]float64)
	for _, symbol := range symbols {
		symbol = strings.ToLower(strings.TrimSpace(symbol))
		if rate, ok := h.cfg.FallbackRates[symbol]; ok {
			out[symbol] = rate
		}
	}
	return out
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
