package invoice

import "errors"

var (
	ErrNotFound      = errors.New("invoice: not found")
	ErrNilInvoice    = errors.New("invoice: nil invoice")
	ErrEmptyID       = errors.New("invoice: empty id")
	ErrInvalidStatus = errors.New("invoice: invalid status")
)
