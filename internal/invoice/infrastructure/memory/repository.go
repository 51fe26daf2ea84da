package memory

import (
	"context"
	"sort"
	"sync"

	invoice "cryptoinvoice-pro/internal/invoice/domain"
)

// InvoiceRepository is an in-memory repository for invoices.
type InvoiceRepository struct {
	mu   sync.RWMutex
	data map[string]*invoice.Invoice
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{data: make(map[string]*invoice.Invoice)}
}

// Save persists an invoice (overwrites existing).
func (r *InvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	_ = ctx
	if inv == nil {
		return invoice.ErrNilInvoice
	}
	if inv.ID == "" {
		return invoice.ErrEmptyID
	}

	stored := inv.Clone()
	r.mu.Lock()
	r.data[inv.ID] = stored
	r.mu.Unlock()
	return nil
}

// GetByID loads an invoice, nil when absent.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*invoice.Invoice, error) {
	_ = ctx
	if id == "" {
		return nil, invoice.ErrEmptyID
	}

	r.mu.RLock()
	inv := r.data[id]
	r.mu.RUnlock()
	if inv == nil {
		return nil, nil
	}
	return inv.Clone(), nil
}

// List returns all invoices, newest first.
func (r *InvoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	_ = ctx

	r.mu.RLock()
	out := make([]*invoice.Invoice, 0, len(r.data))
	for _, inv := range r.data {
		out = append(out, inv.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
