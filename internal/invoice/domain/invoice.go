package invoice

import (
	"time"

	"cryptoinvoice-pro/internal/money"
	"cryptoinvoice-pro/internal/payment"
)

const (
	StatusUnpaid = "unpaid"
	StatusPaid   = "paid"
)

// LineItem is a single billable row. Quantity and unit price are fiat
// values; the line total is always derived, never stored.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// LineTotal returns the rounded line amount. Negative quantity or price is
// coerced to zero: invoices cannot contain negative line amounts.
func (i LineItem) LineTotal() float64 {
	return money.Round2(money.NonNegative(i.Quantity) * money.NonNegative(i.UnitPrice))
}

// Totals holds the derived 2-decimal invoice figures. It is a cache of its
// inputs, recomputed whenever items, tax or discount change.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	TaxPercent float64 `json:"taxPercent"`
	TaxAmount  float64 `json:"taxAmount"`
	Discount   float64 `json:"discount"`
	GrandTotal float64 `json:"grandTotal"`
}

// ComputeTotals derives invoice totals from line items, tax percent and
// discount. Pure function: no mutation of items, no error paths. Negative
// tax is coerced to zero; the discount is applied as given, so a discount
// larger than subtotal plus tax drives the grand total negative.
func ComputeTotals(items []LineItem, taxPercent, discount float64) Totals {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	subtotal = money.Round2(subtotal)
	taxPercent = money.NonNegative(taxPercent)
	taxAmount := money.Round2(subtotal * taxPercent / 100)
	discount = money.Round2(discount)
	return Totals{
		Subtotal:   subtotal,
		TaxPercent: taxPercent,
		TaxAmount:  taxAmount,
		Discount:   discount,
		GrandTotal: money.Round2(subtotal + taxAmount - discount),
	}
}

// Invoice is the persisted aggregate. Records are replaced whole on every
// write; there is no per-field merge.
type Invoice struct {
	ID            string               `json:"id"`
	Sender        string               `json:"sender"`
	Client        string               `json:"client"`
	Items         []LineItem           `json:"items"`
	FiatCurrency  string               `json:"fiatCurrency"`
	CryptoSymbol  string               `json:"cryptoSymbol,omitempty"`
	WalletAddress string               `json:"wallet,omitempty"`
	Totals        Totals               `json:"totals"`
	Quote         *payment.CryptoQuote `json:"cryptoQuote,omitempty"`
	RateSource    string               `json:"rateSource,omitempty"`
	PaymentURI    string               `json:"paymentUri,omitempty"`
	Status        string               `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// Clone returns a deep copy safe to hand across repository boundaries.
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	if inv.Items != nil {
		out.Items = make([]LineItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	if inv.Quote != nil {
		quote := *inv.Quote
		out.Quote = &quote
	}
	return &out
}

// ValidStatus reports whether s is a recognized payment status.
func ValidStatus(s string) bool {
	return s == StatusUnpaid || s == StatusPaid
}
