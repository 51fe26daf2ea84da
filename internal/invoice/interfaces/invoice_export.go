package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	invoice "cryptoinvoice-pro/internal/invoice/domain"
	"cryptoinvoice-pro/internal/payment"
)

// BuildInvoicePDF renders an invoice document. Crypto payment details are
// included when the invoice carries a quote.
func BuildInvoicePDF(inv *invoice.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, invoice.ErrNilInvoice
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 16)
	pdf.AddPage()

	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	if inv.Sender != "" {
		pdf.Cell(0, 6, fmt.Sprintf("From: %s", inv.Sender))
		pdf.Ln(5)
	}
	if inv.Client != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Bill To: %s", inv.Client))
		pdf.Ln(5)
	}
	if inv.ID != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", inv.ID))
		pdf.Ln(5)
	}
	if !inv.CreatedAt.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Date: %s", inv.CreatedAt.Format("2006-01-02")))
		pdf.Ln(5)
	}
	if inv.Status != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Status: %s", inv.Status))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Unit Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range inv.Items {
		pdf.CellFormat(90, 6, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%g", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", item.LineTotal()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	currency := inv.FiatCurrency
	if currency == "" {
		currency = "usd"
	}
	pdf.Cell(0, 6, fmt.Sprintf("Subtotal: %.2f %s", inv.Totals.Subtotal, currency))
	pdf.Ln(5)
	if inv.Totals.TaxPercent != 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Tax (%.2f%%): %.2f %s", inv.Totals.TaxPercent, inv.Totals.TaxAmount, currency))
		pdf.Ln(5)
	}
	if inv.Totals.Discount != 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Discount: -%.2f %s", inv.Totals.Discount, currency))
		pdf.Ln(5)
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Total Due: %.2f %s", inv.Totals.GrandTotal, currency))
	pdf.Ln(9)

	if inv.Quote != nil {
		if err := writeCryptoSection(pdf, inv); err != nil {
			return nil, err
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Generated %s", time.Now().UTC().Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCryptoSection(pdf *gofpdf.Fpdf, inv *invoice.Invoice) error {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Crypto Payment")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)

	q := inv.Quote
	if !q.Priced() {
		pdf.Cell(0, 6, fmt.Sprintf("%s price unavailable; pay fiat total", q.Symbol))
		pdf.Ln(5)
		return nil
	}

	pdf.Cell(0, 6, fmt.Sprintf("Amount Due: %s %s", payment.FormatAmount(q.Amount), q.Symbol))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rate used: 1 %s = %.2f %s", q.Symbol, q.Rate, inv.FiatCurrency))
	pdf.Ln(5)
	if inv.RateSource != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Rate source: %s", inv.RateSource))
		pdf.Ln(5)
	}
	if inv.WalletAddress != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Wallet: %s", inv.WalletAddress))
		pdf.Ln(5)
	}
	if inv.PaymentURI != "" {
		pdf.Cell(0, 6, fmt.Sprintf("URI: %s", inv.PaymentURI))
		pdf.Ln(6)

		png, err := payment.QRPNG(inv.PaymentURI, 256)
		if err != nil {
			return err
		}
		if len(png) > 0 {
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("payment-qr", opts, bytes.NewReader(png))
			pdf.ImageOptions("payment-qr", pdf.GetX(), pdf.GetY(), 40, 40, false, opts, 0, "")
			pdf.Ln(42)
		}
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 5, "Payment is considered settled once the transaction is confirmed on-chain.")
	pdf.Ln(5)
	pdf.SetFont("Arial", "", 10)
	return nil
}

// BuildInvoiceXLSX renders an invoice workbook with summary and items sheets.
func BuildInvoiceXLSX(inv *invoice.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, invoice.ErrNilInvoice
	}

	f := excelize.NewFile()
	summarySheet := "summary"
	itemsSheet := "items"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(itemsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Invoice")
	_ = f.SetCellValue(summarySheet, "A3", "ID")
	_ = f.SetCellValue(summarySheet, "B3", inv.ID)
	_ = f.SetCellValue(summarySheet, "A4", "From")
	_ = f.SetCellValue(summarySheet, "B4", inv.Sender)
	_ = f.SetCellValue(summarySheet, "A5", "Bill To")
	_ = f.SetCellValue(summarySheet, "B5", inv.Client)
	_ = f.SetCellValue(summarySheet, "A6", "Status")
	_ = f.SetCellValue(summarySheet, "B6", inv.Status)
	_ = f.SetCellValue(summarySheet, "A7", "Currency")
	_ = f.SetCellValue(summarySheet, "B7", inv.FiatCurrency)
	_ = f.SetCellValue(summarySheet, "A8", "Subtotal")
	_ = f.SetCellValue(summarySheet, "B8", inv.Totals.Subtotal)
	_ = f.SetCellValue(summarySheet, "A9", "Tax")
	_ = f.SetCellValue(summarySheet, "B9", inv.Totals.TaxAmount)
	_ = f.SetCellValue(summarySheet, "A10", "Discount")
	_ = f.SetCellValue(summarySheet, "B10", inv.Totals.Discount)
	_ = f.SetCellValue(summarySheet, "A11", "Grand Total")
	_ = f.SetCellValue(summarySheet, "B11", inv.Totals.GrandTotal)
	if inv.Quote != nil && inv.Quote.Priced() {
		_ = f.SetCellValue(summarySheet, "A12", "Crypto Amount")
		_ = f.SetCellValue(summarySheet, "B12", payment.FormatAmount(inv.Quote.Amount)+" "+inv.Quote.Symbol)
		_ = f.SetCellValue(summarySheet, "A13", "Rate")
		_ = f.SetCellValue(summarySheet, "B13", inv.Quote.Rate)
		_ = f.SetCellValue(summarySheet, "A14", "Payment URI")
		_ = f.SetCellValue(summarySheet, "B14", inv.PaymentURI)
	}

	_ = f.SetCellValue(itemsSheet, "A1", "Description")
	_ = f.SetCellValue(itemsSheet, "B1", "Qty")
	_ = f.SetCellValue(itemsSheet, "C1", "Unit Price")
	_ = f.SetCellValue(itemsSheet, "D1", "Amount")
	for i, item := range inv.Items {
		row := i + 2
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("A%d", row), item.Description)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("B%d", row), item.Quantity)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("C%d", row), item.UnitPrice)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("D%d", row), item.LineTotal())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
