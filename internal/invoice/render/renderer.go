package render

import (
	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
)

// Renderer produces a print-ready preview of a draft invoice.
type Renderer interface {
	RenderHTML(invoice invoicedomain.Invoice) (string, error)
}
