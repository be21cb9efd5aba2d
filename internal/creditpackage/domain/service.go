package domain

import (
	"context"
	"errors"
)

// Summaries is the read boundary over the credit-accounting subsystem.
type Summaries interface {
	// PackageInvoiceAmount returns the billable summary for a client and
	// month, or nil when the client has no package or nothing to bill.
	PackageInvoiceAmount(ctx context.Context, clientID string, year, month int) (*PackageSummary, error)
	// ListBillable returns all summaries with a positive invoice amount
	// for the period, keyed for single-attribution by the assembler.
	ListBillable(ctx context.Context, year, month int) (map[string]PackageSummary, error)
}

var ErrInvalidPeriod = errors.New("invalid_period")
