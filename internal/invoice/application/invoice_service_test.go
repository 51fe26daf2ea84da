package application

import (
	"context"
	"errors"
	"testing"

	invoice "cryptoinvoice-pro/internal/invoice/domain"
	"cryptoinvoice-pro/internal/invoice/infrastructure/memory"
	"cryptoinvoice-pro/internal/pricing"
	"cryptoinvoice-pro/internal/profile"
)

type stubResolver struct {
	rate   pricing.ExchangeRate
	calls  int
	lastEx float64
}

func (r *stubResolver) Resolve(_ context.Context, base, quote string, explicitRate float64) pricing.ExchangeRate {
	r.calls++
	r.lastEx = explicitRate
	out := r.rate
	out.Base = base
	out.Quote = quote
	return out
}

func newTestService(t *testing.T, resolver *stubResolver, profiles profile.Store) (*InvoiceService, *memory.InvoiceRepository) {
	t.Helper()
	repo := memory.NewInvoiceRepository()
	svc, err := NewInvoiceService(repo, resolver, profiles)
	if err != nil {
		t.Fatalf("NewInvoiceService: %v", err)
	}
	return svc, repo
}

func TestCreateFiatOnly(t *testing.T) {
	resolver := &stubResolver{}
	svc, _ := newTestService(t, resolver, nil)

	inv, err := svc.Create(context.Background(), CreateInput{
		Sender: "Acme",
		Client: "Globex",
		Items: []invoice.LineItem{
			{Description: "Design", Quantity: 2, UnitPrice: 10},
		},
		TaxPercent: 10,
		Discount:   1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.ID == "" || inv.Status != invoice.StatusUnpaid {
		t.Fatalf("invoice = %+v", inv)
	}
	if inv.Totals.GrandTotal != 21.00 {
		t.Fatalf("grand total = %v, want 21.00", inv.Totals.GrandTotal)
	}
	if inv.FiatCurrency != "usd" {
		t.Fatalf("fiat currency = %q, want usd", inv.FiatCurrency)
	}
	if inv.Quote != nil || inv.PaymentURI != "" {
		t.Fatalf("fiat invoice should carry no quote: %+v", inv)
	}
	if resolver.calls != 0 {
		t.Fatalf("resolver called %d times for fiat invoice", resolver.calls)
	}
}

func TestCreateCryptoInvoice(t *testing.T) {
	resolver := &stubResolver{rate: pricing.ExchangeRate{Rate: 30000, Source: pricing.SourceMarket}}
	svc, _ := newTestService(t, resolver, nil)

	inv, err := svc.Create(context.Background(), CreateInput{
		Client: "Globex",
		Items: []invoice.LineItem{
			{Description: "Audit", Quantity: 1, UnitPrice: 21},
		},
		CryptoSymbol:  "BTC",
		WalletAddress: "bc1xyz",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.CryptoSymbol != "btc" {
		t.Fatalf("symbol = %q", inv.CryptoSymbol)
	}
	if inv.Quote == nil || inv.Quote.Amount != 0.0007 {
		t.Fatalf("quote = %+v, want amount 0.0007", inv.Quote)
	}
	if inv.RateSource != pricing.SourceMarket {
		t.Fatalf("rate source = %q", inv.RateSource)
	}
	if inv.PaymentURI != "btc:bc1xyz?amount=0.0007" {
		t.Fatalf("payment uri = %q", inv.PaymentURI)
	}
}

func TestCreateUnpricedCryptoInvoice(t *testing.T) {
	resolver := &stubResolver{rate: pricing.ExchangeRate{Rate: 0, Source: pricing.SourceFallback}}
	svc, _ := newTestService(t, resolver, nil)

	inv, err := svc.Create(context.Background(), CreateInput{
		Items: []invoice.LineItem{
			{Description: "Audit", Quantity: 1, UnitPrice: 21},
		},
		CryptoSymbol:  "btc",
		WalletAddress: "bc1xyz",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.Quote == nil || inv.Quote.Priced() {
		t.Fatalf("quote = %+v, want unpriced", inv.Quote)
	}
	if inv.PaymentURI != "" {
		t.Fatalf("payment uri = %q, want none without a rate", inv.PaymentURI)
	}
	if inv.RateSource != pricing.SourceFallback {
		t.Fatalf("rate source = %q", inv.RateSource)
	}
}

func TestCreateExplicitRatePassedThrough(t *testing.T) {
	resolver := &stubResolver{rate: pricing.ExchangeRate{Rate: 42, Source: pricing.SourceCaller}}
	svc, _ := newTestService(t, resolver, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Items:        []invoice.LineItem{{Description: "x", Quantity: 1, UnitPrice: 1}},
		CryptoSymbol: "eth",
		CryptoPrice:  42,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resolver.lastEx != 42 {
		t.Fatalf("explicit rate = %v, want 42", resolver.lastEx)
	}
}

func TestCreateRequiresItems(t *testing.T) {
	svc, _ := newTestService(t, &stubResolver{}, nil)
	if _, err := svc.Create(context.Background(), CreateInput{Client: "Globex"}); err == nil {
		t.Fatalf("expected error for empty items")
	}
}

func TestCreateDefaultsFromProfile(t *testing.T) {
	resolver := &stubResolver{rate: pricing.ExchangeRate{Rate: 100, Source: pricing.SourceMarket}}
	profiles := profile.NewMemoryStore(profile.Profile{BusinessName: "Acme Labs", WalletAddress: "0xabc"})
	svc, _ := newTestService(t, resolver, profiles)

	inv, err := svc.Create(context.Background(), CreateInput{
		Items:        []invoice.LineItem{{Description: "x", Quantity: 1, UnitPrice: 5}},
		CryptoSymbol: "eth",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.Sender != "Acme Labs" || inv.WalletAddress != "0xabc" {
		t.Fatalf("profile defaults not applied: %+v", inv)
	}
	if inv.PaymentURI != "eth:0xabc?amount=0.05" {
		t.Fatalf("payment uri = %q", inv.PaymentURI)
	}
}

func TestSetStatus(t *testing.T) {
	svc, _ := newTestService(t, &stubResolver{}, nil)
	inv, err := svc.Create(context.Background(), CreateInput{
		Items: []invoice.LineItem{{Description: "x", Quantity: 1, UnitPrice: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.SetStatus(context.Background(), inv.ID, invoice.StatusPaid)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if updated.Status != invoice.StatusPaid {
		t.Fatalf("status = %q", updated.Status)
	}

	stored, err := svc.Get(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != invoice.StatusPaid {
		t.Fatalf("persisted status = %q", stored.Status)
	}

	if _, err := svc.SetStatus(context.Background(), inv.ID, "overdue"); !errors.Is(err, invoice.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if _, err := svc.SetStatus(context.Background(), "inv-missing", invoice.StatusPaid); !errors.Is(err, invoice.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRequote(t *testing.T) {
	resolver := &stubResolver{rate: pricing.ExchangeRate{Rate: 30000, Source: pricing.SourceMarket}}
	svc, _ := newTestService(t, resolver, nil)

	inv, err := svc.Create(context.Background(), CreateInput{
		Items:         []invoice.LineItem{{Description: "x", Quantity: 1, UnitPrice: 21}},
		CryptoSymbol:  "btc",
		WalletAddress: "bc1xyz",
		CryptoPrice:   30000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resolver.rate = pricing.ExchangeRate{Rate: 42000, Source: pricing.SourceMarket}
	requoted, err := svc.Requote(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("Requote: %v", err)
	}
	if requoted.Quote == nil || requoted.Quote.Rate != 42000 {
		t.Fatalf("quote = %+v, want rate 42000", requoted.Quote)
	}
	if resolver.lastEx != 0 {
		t.Fatalf("requote passed explicit rate %v, want 0", resolver.lastEx)
	}
	if requoted.Quote.Amount != 0.0005 {
		t.Fatalf("amount = %v, want 0.0005", requoted.Quote.Amount)
	}
}

func TestRequoteFiatInvoiceFails(t *testing.T) {
	svc, _ := newTestService(t, &stubResolver{}, nil)
	inv, err := svc.Create(context.Background(), CreateInput{
		Items: []invoice.LineItem{{Description: "x", Quantity: 1, UnitPrice: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Requote(context.Background(), inv.ID); err == nil {
		t.Fatalf("expected error requoting fiat invoice")
	}
}
