package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	invoice "cryptoinvoice-pro/internal/invoice/domain"
	"cryptoinvoice-pro/internal/observability/metrics"
	"cryptoinvoice-pro/internal/payment"
	"cryptoinvoice-pro/internal/pricing"
	"cryptoinvoice-pro/internal/profile"
)

var (
	ErrItemsRequired  = errors.New("invoice service: items required")
	ErrNoCryptoSymbol = errors.New("invoice service: invoice has no crypto symbol")
)

// Repository persists invoice aggregates. Writes replace the whole record.
type Repository interface {
	Save(ctx context.Context, inv *invoice.Invoice) error
	GetByID(ctx context.Context, id string) (*invoice.Invoice, error)
	List(ctx context.Context) ([]*invoice.Invoice, error)
}

// RateResolver resolves a fiat exchange rate for a crypto symbol.
type RateResolver interface {
	Resolve(ctx context.Context, base, quote string, explicitRate float64) pricing.ExchangeRate
}

// InvoiceService handles invoice workflows.
type InvoiceService struct {
	repo     Repository
	resolver RateResolver
	profiles profile.Store
}

// NewInvoiceService constructs a service. The profile store may be nil when
// no issuer defaults are configured.
func NewInvoiceService(repo Repository, resolver RateResolver, profiles profile.Store) (*InvoiceService, error) {
	if repo == nil {
		return nil, errors.New("invoice service: nil repo")
	}
	if resolver == nil {
		return nil, errors.New("invoice service: nil resolver")
	}
	return &InvoiceService{repo: repo, resolver: resolver, profiles: profiles}, nil
}

// CreateInput carries everything needed to open an invoice.
type CreateInput struct {
	Sender        string
	Client        string
	Items         []invoice.LineItem
	TaxPercent    float64
	Discount      float64
	FiatCurrency  string
	CryptoSymbol  string
	WalletAddress string
	CryptoPrice   float64
}

// Create opens an invoice, pricing it in crypto when a symbol is given.
func (s *InvoiceService) Create(ctx context.Context, input CreateInput) (*invoice.Invoice, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoiceCreate(result, time.Since(start))
	}()

	if len(input.Items) == 0 {
		result = metrics.ResultError
		return nil, ErrItemsRequired
	}

	sender := strings.TrimSpace(input.Sender)
	wallet := strings.TrimSpace(input.WalletAddress)
	if s.profiles != nil && (sender == "" || wallet == "") {
		if p, err := s.profiles.Get(ctx); err == nil {
			if sender == "" {
				sender = p.BusinessName
			}
			if wallet == "" {
				wallet = p.WalletAddress
			}
		}
	}

	fiat := strings.ToLower(strings.TrimSpace(input.FiatCurrency))
	if fiat == "" {
		fiat = "usd"
	}

	now := time.Now().UTC()
	inv := &invoice.Invoice{
		ID:            "inv-" + uuid.NewString(),
		Sender:        sender,
		Client:        strings.TrimSpace(input.Client),
		Items:         append([]invoice.LineItem(nil), input.Items...),
		FiatCurrency:  fiat,
		CryptoSymbol:  strings.ToLower(strings.TrimSpace(input.CryptoSymbol)),
		WalletAddress: wallet,
		Totals:        invoice.ComputeTotals(input.Items, input.TaxPercent, input.Discount),
		Status:        invoice.StatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if inv.CryptoSymbol != "" {
		s.quote(ctx, inv, input.CryptoPrice)
	}

	if err := s.repo.Save(ctx, inv); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return inv, nil
}

// Get returns an invoice by id.
func (s *InvoiceService) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	if id == "" {
		return nil, invoice.ErrEmptyID
	}
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoice.ErrNotFound
	}
	return inv, nil
}

// List returns all stored invoices, newest first.
func (s *InvoiceService) List(ctx context.Context) ([]*invoice.Invoice, error) {
	return s.repo.List(ctx)
}

// SetStatus marks an invoice paid or unpaid.
func (s *InvoiceService) SetStatus(ctx context.Context, id, status string) (*invoice.Invoice, error) {
	if !invoice.ValidStatus(status) {
		metrics.IncInvoiceStatus(metrics.ResultError)
		return nil, invoice.ErrInvalidStatus
	}
	inv, err := s.Get(ctx, id)
	if err != nil {
		metrics.IncInvoiceStatus(metrics.ResultError)
		return nil, err
	}
	if inv.Status == status {
		metrics.IncInvoiceStatus(metrics.ResultSuccess)
		return inv, nil
	}
	inv.Status = status
	inv.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, inv); err != nil {
		metrics.IncInvoiceStatus(metrics.ResultError)
		return nil, err
	}
	metrics.IncInvoiceStatus(metrics.ResultSuccess)
	return inv, nil
}

// Requote re-resolves the exchange rate for an existing crypto invoice and
// rewrites its quote and payment request.
func (s *InvoiceService) Requote(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.CryptoSymbol == "" {
		return nil, ErrNoCryptoSymbol
	}
	inv.Totals = invoice.ComputeTotals(inv.Items, inv.Totals.TaxPercent, inv.Totals.Discount)
	s.quote(ctx, inv, 0)
	inv.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) quote(ctx context.Context, inv *invoice.Invoice, explicitRate float64) {
	rate := s.resolver.Resolve(ctx, inv.CryptoSymbol, inv.FiatCurrency, explicitRate)
	q := payment.Convert(inv.CryptoSymbol, inv.Totals.GrandTotal, rate.Rate)
	inv.Quote = &q
	inv.RateSource = rate.Source
	inv.PaymentURI = ""
	if q.Priced() {
		inv.PaymentURI = payment.BuildPaymentURI(inv.CryptoSymbol, inv.WalletAddress, q.Amount)
	}
}
