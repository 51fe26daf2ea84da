package pricing

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"cryptoinvoice-pro/internal/observability/metrics"
)

const defaultStepTimeout = 5 * time.Second

// RateSource produces an exchange rate for a symbol pair. A source returns
// an error or a non-positive rate to signal "no usable answer here"; the
// resolver then moves on to the next source.
type RateSource interface {
	Name() string
	Rate(ctx context.Context, base, quote string) (float64, error)
}

// Resolver walks an ordered source chain, cheapest first, and falls back
// deterministically. It never returns an error: an unpriced pair comes
// back with Rate 0 and the fallback source tag.
type Resolver struct {
	sources     []RateSource
	stepTimeout time.Duration
	logger      *log.Logger
}

// ResolverOption configures the resolver.
type ResolverOption func(*Resolver)

// WithStepTimeout bounds each source attempt independently.
func WithStepTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.stepTimeout = d
		}
	}
}

// WithLogger sets a logger for per-step failures.
func WithLogger(logger *log.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver constructs a resolver over an ordered source chain.
func NewResolver(sources []RateSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		sources:     sources,
		stepTimeout: defaultStepTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns an exchange rate for base/quote. A positive explicitRate
// wins outright (the caller already knows the rate); otherwise each source
// gets one attempt under its own timeout, and the first positive rate
// wins. When everything fails, USD-pegged symbols quoted in USD resolve to
// 1 and anything else to 0, meaning "unpriced".
func (r *Resolver) Resolve(ctx context.Context, base, quote string, explicitRate float64) ExchangeRate {
	start := time.Now()
	base = normalizeSymbol(base)
	quote = normalizeSymbol(quote)
	if quote == "" {
		quote = "usd"
	}

	if explicitRate > 0 && !math.IsInf(explicitRate, 0) && !math.IsNaN(explicitRate) {
		metrics.ObservePriceResolve(SourceCaller, metrics.ResultSuccess, time.Since(start))
		return ExchangeRate{Base: base, Quote: quote, Rate: explicitRate, Source: SourceCaller}
	}

	if r != nil {
		for _, source := range r.sources {
			rate, err := r.trySource(ctx, source, base, quote)
			if err != nil {
				if r.logger != nil {
					r.logger.Printf("price source %s failed for %s/%s: %v", source.Name(), base, quote, err)
				}
				continue
			}
			if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
				continue
			}
			metrics.ObservePriceResolve(source.Name(), metrics.ResultSuccess, time.Since(start))
			return ExchangeRate{Base: base, Quote: quote, Rate: rate, Source: source.Name()}
		}
	}

	rate := 0.0
	if stableSymbols[base] && quote == "usd" {
		rate = 1
	}
	metrics.ObservePriceResolve(SourceFallback, metrics.ResultError, time.Since(start))
	return ExchangeRate{Base: base, Quote: quote, Rate: rate, Source: SourceFallback}
}

func (r *Resolver) trySource(ctx context.Context, source RateSource, base, quote string) (float64, error) {
	stepCtx, cancel := context.WithTimeout(ctx, r.stepTimeout)
	defer cancel()
	return source.Rate(stepCtx, base, quote)
}

func normalizeSymbol(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}
