package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	invoice "cryptoinvoice-pro/internal/invoice/domain"
	"cryptoinvoice-pro/internal/pricing"
)

type stubResolver struct {
	rate pricing.ExchangeRate
}

func (r *stubResolver) Resolve(_ context.Context, base, quote string, explicitRate float64) pricing.ExchangeRate {
	if explicitRate > 0 {
		return pricing.ExchangeRate{Base: base, Quote: quote, Rate: explicitRate, Source: pricing.SourceCaller}
	}
	out := r.rate
	out.Base = base
	out.Quote = quote
	return out
}

func buildInvoiceForTest(t *testing.T, h *RenderHandler, body string) *invoice.Invoice {
	t.Helper()
	var req renderPayload
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/crypto-pdf", nil)
	return h.buildInvoice(r, req, true)
}

func newRenderHandler(t *testing.T) *RenderHandler {
	t.Helper()
	h, err := NewRenderHandler(&stubResolver{rate: pricing.ExchangeRate{Rate: 30000, Source: pricing.SourceMarket}})
	if err != nil {
		t.Fatalf("NewRenderHandler: %v", err)
	}
	return h
}

func TestRenderPDFMethodNotAllowed(t *testing.T) {
	h := newRenderHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/pdf", nil)
	rec := httptest.NewRecorder()
	h.HandlePDF(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("Allow = %q", allow)
	}
}

func TestRenderPDFRequiresItems(t *testing.T) {
	h := newRenderHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/pdf", strings.NewReader(`{"client":"Globex"}`))
	rec := httptest.NewRecorder()
	h.HandlePDF(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "items required") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRenderPDFBadJSON(t *testing.T) {
	h := newRenderHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/pdf", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	h.HandlePDF(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRenderPDF(t *testing.T) {
	h := newRenderHandler(t)
	body := `{
		"sender": "Acme",
		"client": "Globex",
		"items": [{"description": "Design", "quantity": 2, "unitPrice": 10}],
		"taxPercent": 10,
		"discount": 1
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/pdf", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandlePDF(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("cache control = %q", cc)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "invoice.pdf") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatalf("body does not start with %%PDF")
	}
}

func TestRenderCryptoPDFFieldAliases(t *testing.T) {
	h := newRenderHandler(t)
	body := `{
		"items": [{"name": "Design", "qty": 2, "price": 10}],
		"tax": 10,
		"discount": 1,
		"crypto": "BTC",
		"wallet": "bc1xyz",
		"price": 30000
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/crypto-pdf", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleCryptoPDF(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatalf("body does not start with %%PDF")
	}

	inv := buildInvoiceForTest(t, h, body)
	if inv.Totals.TaxAmount != 2.00 || inv.Totals.GrandTotal != 21.00 {
		t.Fatalf("totals = %+v", inv.Totals)
	}
	if inv.CryptoSymbol != "btc" || inv.Quote == nil || inv.Quote.Amount != 0.0007 {
		t.Fatalf("invoice = %+v", inv)
	}
	if inv.PaymentURI != "btc:bc1xyz?amount=0.0007" {
		t.Fatalf("payment uri = %q", inv.PaymentURI)
	}
}

func TestRenderCryptoPDF(t *testing.T) {
	h := newRenderHandler(t)
	body := `{
		"client": "Globex",
		"items": [{"name": "Audit", "qty": 1, "price": 21}],
		"cryptoSymbol": "btc",
		"wallet": "bc1xyz"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/crypto-pdf", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleCryptoPDF(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "crypto-invoice.pdf") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatalf("body does not start with %%PDF")
	}
}
