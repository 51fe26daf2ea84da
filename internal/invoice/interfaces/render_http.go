package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	invoiceapp "cryptoinvoice-pro/internal/invoice/application"
	invoice "cryptoinvoice-pro/internal/invoice/domain"
	"cryptoinvoice-pro/internal/observability/metrics"
	"cryptoinvoice-pro/internal/payment"
)

// RenderHandler renders one-shot invoice PDFs from a posted payload. Nothing
// is persisted; each request carries the full invoice.
type RenderHandler struct {
	resolver invoiceapp.RateResolver
}

// NewRenderHandler constructs a handler.
func NewRenderHandler(resolver invoiceapp.RateResolver) (*RenderHandler, error) {
	if resolver == nil {
		return nil, errors.New("render handler: nil resolver")
	}
	return &RenderHandler{resolver: resolver}, nil
}

type renderPayload struct {
	invoicePayload
	USDTotal *float64 `json:"usdTotal"`
}

// HandlePDF serves POST /api/v1/invoices/pdf.
func (h *RenderHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pdf", false)
}

// HandleCryptoPDF serves POST /api/v1/invoices/crypto-pdf.
func (h *RenderHandler) HandleCryptoPDF(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "crypto-pdf", true)
}

func (h *RenderHandler) render(w http.ResponseWriter, r *http.Request, kind string, crypto bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRender(kind, result, time.Since(start))
	}()

	var req renderPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		result = metrics.ResultError
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		result = metrics.ResultError
		http.Error(w, "invalid payload: items required", http.StatusBadRequest)
		return
	}

	inv := h.buildInvoice(r, req, crypto)
	data, err := BuildInvoicePDF(inv)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	filename := "invoice.pdf"
	if crypto {
		filename = "crypto-invoice.pdf"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *RenderHandler) buildInvoice(r *http.Request, req renderPayload, crypto bool) *invoice.Invoice {
	items := req.lineItems()
	fiat := strings.ToLower(strings.TrimSpace(req.FiatCurrency))
	if fiat == "" {
		fiat = "usd"
	}

	inv := &invoice.Invoice{
		Sender:        strings.TrimSpace(req.Sender),
		Client:        strings.TrimSpace(req.Client),
		Items:         items,
		FiatCurrency:  fiat,
		WalletAddress: strings.TrimSpace(req.WalletAddress),
		Totals:        invoice.ComputeTotals(items, req.taxPercent(), req.Discount),
		Status:        invoice.StatusUnpaid,
		CreatedAt:     time.Now().UTC(),
	}

	symbol := strings.ToLower(strings.TrimSpace(req.cryptoSymbol()))
	if !crypto || symbol == "" {
		return inv
	}

	total := inv.Totals.GrandTotal
	if req.USDTotal != nil {
		total = *req.USDTotal
	}
	rate := h.resolver.Resolve(r.Context(), symbol, fiat, req.cryptoPrice())
	q := payment.Convert(symbol, total, rate.Rate)
	inv.CryptoSymbol = symbol
	inv.Quote = &q
	inv.RateSource = rate.Source
	if q.Priced() {
		inv.PaymentURI = payment.BuildPaymentURI(symbol, inv.WalletAddress, q.Amount)
	}
	return inv
}
