package pricing

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cryptoinvoice-pro/internal/observability/metrics"
)

const (
	defaultCacheTTL = 15 * time.Second
	defaultStaleFor = 30 * time.Second
)

// Fetcher loads rates for a symbol basket from an upstream source.
type Fetcher interface {
	Rates(ctx context.Context, symbols []string, quote string) (map[string]float64, error)
}

// Cache keeps basket rates for a short TTL and revalidates stale entries
// in the background, so the price endpoint bounds upstream call volume.
// It is owned by whoever wires the handlers, not a process-wide singleton.
type Cache struct {
	fetcher  Fetcher
	ttl      time.Duration
	staleFor time.Duration

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	rates      map[string]float64
	fetchedAt  time.Time
	refreshing bool
}

// NewCache constructs a cache. Non-positive durations select the
// defaults of 15s TTL and 30s stale window.
func NewCache(fetcher Fetcher, ttl, staleFor time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if staleFor <= 0 {
		staleFor = defaultStaleFor
	}
	return &Cache{
		fetcher:  fetcher,
		ttl:      ttl,
		staleFor: staleFor,
		entries:  make(map[string]*cacheEntry),
	}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// StaleFor returns the stale-serve window beyond the TTL.
func (c *Cache) StaleFor() time.Duration { return c.staleFor }

// Rates returns basket rates, serving stale data while a background
// refresh runs. The stale flag tells callers what they got.
func (c *Cache) Rates(ctx context.Context, symbols []string, quote string) (map[string]float64, bool, error) {
	key := cacheKey(symbols, quote)
	now := time.Now()

	c.mu.Lock()
	entry := c.entries[key]
	if entry != nil {
		age := now.Sub(entry.fetchedAt)
		if age <= c.ttl {
			rates := copyRates(entry.rates)
			c.mu.Unlock()
			metrics.IncPriceCache(metrics.CacheHit)
			return rates, false, nil
		}
		if age <= c.ttl+c.staleFor {
			rates := copyRates(entry.rates)
			if !entry.refreshing {
				entry.refreshing = true
				go c.refresh(key, symbols, quote)
			}
			c.mu.Unlock()
			metrics.IncPriceCache(metrics.CacheStale)
			return rates, true, nil
		}
	}
	c.mu.Unlock()

	rates, err := c.fetcher.Rates(ctx, symbols, quote)
	if err != nil {
		metrics.IncPriceCache(metrics.CacheError)
		return nil, false, err
	}
	c.store(key, rates)
	metrics.IncPriceCache(metrics.CacheMiss)
	return copyRates(rates), false, nil
}

func (c *Cache) refresh(key string, symbols []string, quote string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rates, err := c.fetcher.Rates(ctx, symbols, quote)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entries[key]
	if entry != nil {
		entry.refreshing = false
	}
	if err != nil {
		return
	}
	c.entries[key] = &cacheEntry{rates: rates, fetchedAt: time.Now()}
}

func (c *Cache) store(key string, rates map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{rates: rates, fetchedAt: time.Now()}
}

func cacheKey(symbols []string, quote string) string {
	sorted := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		sorted = append(sorted, normalizeSymbol(symbol))
	}
	sort.Strings(sorted)
	return strings.Join(sorted, ",") + "|" + normalizeSymbol(quote)
}

func copyRates(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for symbol, rate := range in {
		out[symbol] = rate
	}
	return out
}
