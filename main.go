package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "cryptoinvoice-pro/internal/api/http"
	"cryptoinvoice-pro/internal/audit"
	invoiceapp "cryptoinvoice-pro/internal/invoice/application"
	invoicememory "cryptoinvoice-pro/internal/invoice/infrastructure/memory"
	invoicepostgres "cryptoinvoice-pro/internal/invoice/infrastructure/postgres"
	invoiceinterfaces "cryptoinvoice-pro/internal/invoice/interfaces"
	"cryptoinvoice-pro/internal/observability/metrics"
	"cryptoinvoice-pro/internal/pricing"
	"cryptoinvoice-pro/internal/profile"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	pricingCfg, err := pricing.LoadConfig()
	if err != nil {
		logger.Fatalf("pricing config error: %v", err)
	}

	var sources []pricing.RateSource
	if pricingCfg.EdgeCacheURL != "" {
		edge, err := pricing.NewEdgeCacheSource(pricingCfg.EdgeCacheURL)
		if err != nil {
			logger.Fatalf("edge cache source error: %v", err)
		}
		sources = append(sources, edge)
	}
	market := pricing.NewMarketSource(pricingCfg.MarketBaseURL)
	sources = append(sources, market)

	resolver := pricing.NewResolver(sources,
		pricing.WithStepTimeout(pricingCfg.StepTimeout()),
		pricing.WithLogger(logger),
	)
	priceCache := pricing.NewCache(market, pricingCfg.CacheTTL(), pricingCfg.StaleFor())

	var invoiceRepo invoiceapp.Repository
	var profileStore profile.Store
	if db != nil {
		invoiceRepo = invoicepostgres.NewInvoiceRepository(db)
		store, err := profile.NewPostgresStore(db)
		if err != nil {
			logger.Fatalf("profile store error: %v", err)
		}
		profileStore = store
	} else {
		logger.Printf("no DATABASE_URL set, using in-memory storage")
		invoiceRepo = invoicememory.NewInvoiceRepository()
		profileStore = profile.NewMemoryStore(profile.Profile{
			BusinessName:  cfg.BusinessName,
			WalletAddress: cfg.WalletAddress,
		})
	}

	invoiceService, err := invoiceapp.NewInvoiceService(invoiceRepo, resolver, profileStore)
	if err != nil {
		logger.Fatalf("invoice service error: %v", err)
	}
	invoiceHandler, err := invoiceinterfaces.NewInvoiceHandler(invoiceService, auditRepo)
	if err != nil {
		logger.Fatalf("invoice handler error: %v", err)
	}
	renderHandler, err := invoiceinterfaces.NewRenderHandler(resolver)
	if err != nil {
		logger.Fatalf("render handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/invoices", invoiceHandler)
	mux.Handle("/api/v1/invoices/", invoiceHandler)
	mux.HandleFunc("/api/v1/invoices/pdf", renderHandler.HandlePDF)
	mux.HandleFunc("/api/v1/invoices/crypto-pdf", renderHandler.HandleCryptoPDF)
	mux.Handle("/api/v1/prices", apihttp.NewPricesHandler(priceCache, pricingCfg))
	mux.Handle("/api/v1/profile", apihttp.NewProfileHandler(profileStore))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL   string
	HTTPAddr      string
	BusinessName  string
	WalletAddress string
}

func loadConfig() config {
	return config{
		DatabaseURL:   getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:      getenvDefault("HTTP_ADDR", ":8080"),
		BusinessName:  getenvDefault("BUSINESS_NAME", ""),
		WalletAddress: getenvDefault("WALLET_ADDRESS", ""),
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
