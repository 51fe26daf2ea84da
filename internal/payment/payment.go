package payment

import (
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"cryptoinvoice-pro/internal/money"
)

// CryptoQuote is the crypto-denominated amount for a fiat grand total.
// Amount is 0 when no usable rate was available; Priced distinguishes that
// from a genuine zero-amount invoice.
type CryptoQuote struct {
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// Priced reports whether the quote carries a usable exchange rate.
func (q CryptoQuote) Priced() bool {
	return q.Rate > 0
}

// Convert turns a fiat grand total into a crypto amount at the given rate.
// A rate of zero or less yields an unpriced quote instead of an error.
func Convert(symbol string, grandTotal, rate float64) CryptoQuote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if rate <= 0 || money.NonNegative(rate) == 0 {
		return CryptoQuote{Symbol: symbol, Rate: 0, Amount: 0}
	}
	return CryptoQuote{
		Symbol: symbol,
		Rate:   rate,
		Amount: money.Round8(grandTotal / rate),
	}
}

// FormatAmount renders a crypto amount as a plain decimal literal with up
// to 8 fractional digits and no exponent, trailing zeros stripped.
func FormatAmount(amount float64) string {
	s := strconv.FormatFloat(money.Round8(amount), 'f', 8, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// BuildPaymentURI builds a wallet scheme URI for a payment request. An
// empty wallet address after trimming yields no URI: the empty string.
func BuildPaymentURI(symbol, walletAddress string, amount float64) string {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return ""
	}
	scheme := strings.ToLower(strings.TrimSpace(symbol))
	return scheme + ":" + walletAddress + "?amount=" + FormatAmount(amount)
}

// QRPNG encodes a payment URI as a PNG image for embedding into rendered
// documents. An empty URI yields no image.
func QRPNG(uri string, size int) ([]byte, error) {
	if uri == "" {
		return nil, nil
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(uri, qrcode.Medium, size)
}
