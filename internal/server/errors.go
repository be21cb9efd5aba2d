package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	extraworkdomain "github.com/agencyops/fakturo/internal/extrawork/domain"
	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
	"github.com/agencyops/fakturo/internal/invoice/workspace"
	issuancedomain "github.com/agencyops/fakturo/internal/issuance/domain"
)

// APIError is the wire shape for every non-2xx response.
type APIError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }

// ErrNotFound backs the catch-all NoRoute handler.
var ErrNotFound = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "request body or query could not be parsed"}
}

func newValidationError(field, rule, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "validation_failed",
		Message: message,
		Details: map[string]any{"field": field, "rule": rule},
	}
}

// AbortWithError translates domain errors into HTTP responses. Unknown
// errors fall through as 500 without leaking internals.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	var unapproved *workspace.UnapprovedError
	if errors.As(err, &unapproved) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": &APIError{
			Code:    "unapproved_items",
			Message: "selection contains invoices with unapproved items",
			Details: map[string]any{"invoice_ids": unapproved.InvoiceIDs},
		}})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, invoicedomain.ErrLineItemNotFound),
		errors.Is(err, extraworkdomain.ErrWorkItemNotFound),
		errors.Is(err, issuancedomain.ErrLedgerEntryMissing):
		status = http.StatusNotFound
		code = err.Error()
	case errors.Is(err, invoicedomain.ErrInvalidPeriod),
		errors.Is(err, invoicedomain.ErrEmptySelection),
		errors.Is(err, invoicedomain.ErrInvalidEngagementRef),
		errors.Is(err, invoicedomain.ErrInvoiceNotIssued),
		errors.Is(err, extraworkdomain.ErrInvalidStatus),
		errors.Is(err, extraworkdomain.ErrInvalidWorkItemID),
		errors.Is(err, issuancedomain.ErrInvalidYear):
		status = http.StatusBadRequest
		code = err.Error()
	case errors.Is(err, invoicedomain.ErrInvoiceIssued),
		errors.Is(err, invoicedomain.ErrIssueInProgress),
		errors.Is(err, invoicedomain.ErrWorkingSetEdited),
		errors.Is(err, extraworkdomain.ErrIllegalTransition),
		errors.Is(err, extraworkdomain.ErrWorkItemInvoiced):
		status = http.StatusConflict
		code = err.Error()
	}

	resp := &APIError{Code: code, Message: "request failed"}
	if status != http.StatusInternalServerError {
		resp.Message = err.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": resp})
}
