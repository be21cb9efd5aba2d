package domain

import (
	"context"
	"errors"
)

// Queue exposes the extra-work items the invoice assembler bills from,
// plus the lifecycle transitions driven by the approval flow.
type Queue interface {
	// GetReadyToInvoice returns items in ready_to_invoice for the period.
	GetReadyToInvoice(ctx context.Context, year, month int) ([]WorkItem, error)
	GetByID(ctx context.Context, id string) (*WorkItem, error)
	// Transition applies one lifecycle step, rejecting illegal jumps.
	Transition(ctx context.Context, id string, to WorkStatus) (*WorkItem, error)
	// MarkInvoiced moves an item into the terminal invoiced state.
	MarkInvoiced(ctx context.Context, id string) error
}

var (
	ErrInvalidWorkItemID   = errors.New("invalid_work_item_id")
	ErrWorkItemNotFound    = errors.New("work_item_not_found")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrIllegalTransition   = errors.New("illegal_status_transition")
	ErrWorkItemInvoiced    = errors.New("work_item_already_invoiced")
	ErrInvalidBillingMonth = errors.New("invalid_billing_month")
)
