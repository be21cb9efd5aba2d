package domain

import (
	"context"
	"errors"

	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
)

// Receipt is the invoicing provider's response for one issued invoice.
type Receipt struct {
	InvoiceNumber string `json:"invoice_number"`
	ExternalID    string `json:"external_id"`
	ExternalURL   string `json:"external_url"`
}

// Provider is the external invoicing system. One call per invoice; the
// returned number is sequential and scoped by year.
type Provider interface {
	Issue(ctx context.Context, invoice invoicedomain.Invoice) (Receipt, error)
}

// Ledger records issued invoices and serves year-scoped queries.
type Ledger interface {
	Add(ctx context.Context, invoice invoicedomain.Invoice, receipt Receipt) (*IssuedInvoice, error)
	ListByYear(ctx context.Context, year int) ([]IssuedInvoice, error)
	// NextInvoiceNumber scans PREFIX-YYYY-NNN numbers for the year and
	// returns the next one, zero-padded to three digits.
	NextInvoiceNumber(ctx context.Context, year int) (string, error)
	// Supersede marks the latest ledger entry for an invoice as replaced.
	// The entry itself is kept for audit history.
	Supersede(ctx context.Context, invoiceID string) error
}

var (
	ErrInvalidYear        = errors.New("invalid_year")
	ErrLedgerEntryMissing = errors.New("ledger_entry_missing")
)
