package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	invoice "cryptoinvoice-pro/internal/invoice/domain"
	"cryptoinvoice-pro/internal/payment"
)

const defaultInvoiceTable = "invoices"

// InvoiceRepository is a Postgres implementation for invoices.
type InvoiceRepository struct {
	db    *sql.DB
	table string
}

// NewInvoiceRepository constructs a repository with defaults.
func NewInvoiceRepository(db *sql.DB, opts ...RepositoryOption) *InvoiceRepository {
	repo := &InvoiceRepository{
		db:    db,
		table: defaultInvoiceTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RepositoryOption configures the repository.
type RepositoryOption func(*InvoiceRepository)

// WithTable overrides the default table.
func WithTable(table string) RepositoryOption {
	return func(repo *InvoiceRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Save upserts the whole invoice record.
func (r *InvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	if inv == nil {
		return invoice.ErrNilInvoice
	}
	if inv.ID == "" {
		return invoice.ErrEmptyID
	}

	items, err := json.Marshal(inv.Items)
	if err != nil {
		return err
	}
	var quote []byte
	if inv.Quote != nil {
		quote, err = json.Marshal(inv.Quote)
		if err != nil {
			return err
		}
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	sender,
	client,
	items,
	fiat_currency,
	crypto_symbol,
	wallet_address,
	subtotal,
	tax_percent,
	tax_amount,
	discount,
	grand_total,
	quote,
	rate_source,
	payment_uri,
	status,
	created_at,
	updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
)
ON CONFLICT (id)
DO UPDATE SET
	sender = EXCLUDED.sender,
	client = EXCLUDED.client,
	items = EXCLUDED.items,
	fiat_currency = EXCLUDED.fiat_currency,
	crypto_symbol = EXCLUDED.crypto_symbol,
	wallet_address = EXCLUDED.wallet_address,
	subtotal = EXCLUDED.subtotal,
	tax_percent = EXCLUDED.tax_percent,
	tax_amount = EXCLUDED.tax_amount,
	discount = EXCLUDED.discount,
	grand_total = EXCLUDED.grand_total,
	quote = EXCLUDED.quote,
	rate_source = EXCLUDED.rate_source,
	payment_uri = EXCLUDED.payment_uri,
	status = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at`, r.table)

	_, err = r.db.ExecContext(
		ctx,
		query,
		inv.ID,
		inv.Sender,
		inv.Client,
		items,
		inv.FiatCurrency,
		nullString(inv.CryptoSymbol),
		nullString(inv.WalletAddress),
		inv.Totals.Subtotal,
		inv.Totals.TaxPercent,
		inv.Totals.TaxAmount,
		inv.Totals.Discount,
		inv.Totals.GrandTotal,
		nullBytes(quote),
		nullString(inv.RateSource),
		nullString(inv.PaymentURI),
		inv.Status,
		inv.CreatedAt.UTC(),
		inv.UpdatedAt.UTC(),
	)
	return err
}

// GetByID loads an invoice, nil when absent.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*invoice.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	if id == "" {
		return nil, invoice.ErrEmptyID
	}

	query := fmt.Sprintf(`
SELECT id, sender, client, items, fiat_currency, crypto_symbol, wallet_address,
	subtotal, tax_percent, tax_amount, discount, grand_total,
	quote, rate_source, payment_uri, status, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	row := r.db.QueryRowContext(ctx, query, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

// List returns all invoices, newest first.
func (r *InvoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, sender, client, items, fiat_currency, crypto_symbol, wallet_address,
	subtotal, tax_percent, tax_amount, discount, grand_total,
	quote, rate_source, payment_uri, status, created_at, updated_at
FROM %s
ORDER BY created_at DESC, id DESC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	var items []byte
	var quote []byte
	var cryptoSymbol, wallet, rateSource, paymentURI sql.NullString

	err := row.Scan(
		&inv.ID,
		&inv.Sender,
		&inv.Client,
		&items,
		&inv.FiatCurrency,
		&cryptoSymbol,
		&wallet,
		&inv.Totals.Subtotal,
		&inv.Totals.TaxPercent,
		&inv.Totals.TaxAmount,
		&inv.Totals.Discount,
		&inv.Totals.GrandTotal,
		&quote,
		&rateSource,
		&paymentURI,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, err
		}
	}
	if len(quote) > 0 {
		var q payment.CryptoQuote
		if err := json.Unmarshal(quote, &q); err != nil {
			return nil, err
		}
		inv.Quote = &q
	}
	inv.CryptoSymbol = cryptoSymbol.String
	inv.WalletAddress = wallet.String
	inv.RateSource = rateSource.String
	inv.PaymentURI = paymentURI.String
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return &inv, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
