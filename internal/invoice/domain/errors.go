package domain

import "errors"

var (
	ErrInvalidPeriod        = errors.New("invalid_period")
	ErrInvoiceNotFound      = errors.New("invoice_not_found")
	ErrLineItemNotFound     = errors.New("line_item_not_found")
	ErrInvoiceIssued        = errors.New("invoice_already_issued")
	ErrInvoiceNotIssued     = errors.New("invoice_not_issued")
	ErrEmptySelection       = errors.New("empty_selection")
	ErrUnapprovedItems      = errors.New("unapproved_items")
	ErrIssueInProgress      = errors.New("issue_in_progress")
	ErrWorkingSetEdited     = errors.New("working_set_edited")
	ErrInvalidEngagementRef = errors.New("invalid_engagement_reference")
)
