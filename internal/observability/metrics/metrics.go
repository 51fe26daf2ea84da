package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "invoicing_"

	resultSuccess = "success"
	resultError   = "error"

	cacheOutcomeHit   = "hit"
	cacheOutcomeStale = "stale"
	cacheOutcomeMiss  = "miss"
	cacheOutcomeError = "error"
)

var (
	registerOnce sync.Once

	invoiceCreateTotal   *prometheus.CounterVec
	invoiceCreateLatency *prometheus.HistogramVec
	invoiceStatusTotal   *prometheus.CounterVec

	invoiceExportTotal   *prometheus.CounterVec
	invoiceExportLatency *prometheus.HistogramVec

	renderTotal   *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec

	priceResolveTotal   *prometheus.CounterVec
	priceResolveLatency *prometheus.HistogramVec
	priceCacheTotal     *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		invoiceCreateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_create_total",
				Help: "Total invoice create operations by result",
			},
			[]string{"result"},
		)
		invoiceCreateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_create_latency_seconds",
				Help:    "Invoice create latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		invoiceStatusTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_status_total",
				Help: "Total invoice status changes by result",
			},
			[]string{"result"},
		)

		invoiceExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_export_total",
				Help: "Total saved-invoice export operations by format and result",
			},
			[]string{"format", "result"},
		)
		invoiceExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_export_latency_seconds",
				Help:    "Saved-invoice export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		renderTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "render_total",
				Help: "Total stateless document renders by kind and result",
			},
			[]string{"kind", "result"},
		)
		renderLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "render_latency_seconds",
				Help:    "Stateless document render latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		priceResolveTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_resolve_total",
				Help: "Total exchange rate resolutions by winning source and result",
			},
			[]string{"source", "result"},
		)
		priceResolveLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "price_resolve_latency_seconds",
				Help:    "Exchange rate resolution latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "result"},
		)
		priceCacheTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_cache_total",
				Help: "Price cache lookups by outcome",
			},
			[]string{"outcome"},
		)

		prometheus.MustRegister(
			invoiceCreateTotal,
			invoiceCreateLatency,
			invoiceStatusTotal,
			invoiceExportTotal,
			invoiceExportLatency,
			renderTotal,
			renderLatency,
			priceResolveTotal,
			priceResolveLatency,
			priceCacheTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveInvoiceCreate records create latency and result.
func ObserveInvoiceCreate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if invoiceCreateTotal != nil {
		invoiceCreateTotal.WithLabelValues(result).Inc()
	}
	if invoiceCreateLatency != nil {
		invoiceCreateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncInvoiceStatus increments the status-change counter.
func IncInvoiceStatus(result string) {
	if result == "" {
		result = resultSuccess
	}
	if invoiceStatusTotal != nil {
		invoiceStatusTotal.WithLabelValues(result).Inc()
	}
}

// ObserveInvoiceExport records export latency and result.
func ObserveInvoiceExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if invoiceExportTotal != nil {
		invoiceExportTotal.WithLabelValues(format, result).Inc()
	}
	if invoiceExportLatency != nil {
		invoiceExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveRender records stateless render latency and result.
func ObserveRender(kind, result string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if renderTotal != nil {
		renderTotal.WithLabelValues(kind, result).Inc()
	}
	if renderLatency != nil {
		renderLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// ObservePriceResolve records resolution latency by winning source.
func ObservePriceResolve(source, result string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if priceResolveTotal != nil {
		priceResolveTotal.WithLabelValues(source, result).Inc()
	}
	if priceResolveLatency != nil {
		priceResolveLatency.WithLabelValues(source, result).Observe(duration.Seconds())
	}
}

// IncPriceCache increments cache lookup counters.
func IncPriceCache(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if priceCacheTotal != nil {
		priceCacheTotal.WithLabelValues(outcome).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	CacheHit   = cacheOutcomeHit
	CacheStale = cacheOutcomeStale
	CacheMiss  = cacheOutcomeMiss
	CacheError = cacheOutcomeError
)
