package pricing

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines pricing configuration: upstream endpoints, the default
// basket for the price endpoint, cache windows and static fallback rates
// shown when every upstream fails.
type Config struct {
	MarketBaseURL      string             `yaml:"market_base_url"`
	EdgeCacheURL       string             `yaml:"edge_cache_url"`
	Quote              string             `yaml:"quote"`
	Basket             []string           `yaml:"basket"`
	CacheTTLSeconds    int                `yaml:"cache_ttl_seconds"`
	StaleForSeconds    int                `yaml:"stale_for_seconds"`
	StepTimeoutSeconds int                `yaml:"step_timeout_seconds"`
	FallbackRates      map[string]float64 `yaml:"fallback_rates"`
}

// LoadConfig loads pricing config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		MarketBaseURL:      os.Getenv("PRICING_MARKET_URL"),
		EdgeCacheURL:       os.Getenv("PRICE_ENDPOINT"),
		Quote:              getenvDefault("PRICING_QUOTE", "usd"),
		CacheTTLSeconds:    getenvIntDefault("PRICING_CACHE_TTL_SECONDS", 15),
		StaleForSeconds:    getenvIntDefault("PRICING_STALE_FOR_SECONDS", 30),
		StepTimeoutSeconds: getenvIntDefault("PRICING_STEP_TIMEOUT_SECONDS", 5),
		FallbackRates: map[string]float64{
			"btc":  65000,
			"eth":  3400,
			"sol":  150,
			"usdt": 1,
		},
	}

	if path := os.Getenv("PRICING_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if len(cfg.Basket) == 0 {
		cfg.Basket = splitCSV(getenvDefault("PRICING_BASKET", "btc,eth,sol,usdt"))
	}
	if cfg.Quote == "" {
		cfg.Quote = "usd"
	}
	return cfg, nil
}

// CacheTTL returns the cache freshness window.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// StaleFor returns the stale-serve window.
func (c Config) StaleFor() time.Duration {
	return time.Duration(c.StaleForSeconds) * time.Second
}

// StepTimeout returns the per-source resolution timeout.
func (c Config) StepTimeout() time.Duration {
	return time.Duration(c.StepTimeoutSeconds) * time.Second
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
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
