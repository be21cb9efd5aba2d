// Package workspace holds the editable monthly invoice working set. It
// is session state layered over the CRM stores: generation fills it,
// user edits mutate it, issuance drains it into the ledger.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agencyops/fakturo/internal/clock"
	engagementdomain "github.com/agencyops/fakturo/internal/engagement/domain"
	"github.com/agencyops/fakturo/internal/events"
	extraworkdomain "github.com/agencyops/fakturo/internal/extrawork/domain"
	"github.com/agencyops/fakturo/internal/invoice/assembler"
	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
	issuancedomain "github.com/agencyops/fakturo/internal/issuance/domain"
	"github.com/agencyops/fakturo/internal/observability/metrics"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// EditState replaces the "non-empty set wins" heuristic with an explicit
// flag, so a legitimately emptied working set still counts as edited.
type EditState string

const (
	StateUntouched           EditState = "untouched"
	StateEdited              EditState = "user_edited"
	StateRegenerateRequested EditState = "regenerate_requested"
)

// ManualItemInput seeds a manual line item added outside generation.
type ManualItemInput struct {
	Description string  `json:"description"`
	UnitPrice   int64   `json:"unit_price"`
	Quantity    float64 `json:"quantity"`
	Note        string  `json:"note"`
}

// IssueResult summarizes one issuance batch.
type IssueResult struct {
	IssuedCount  int64           `json:"issued_count"`
	IssuedAmount int64           `json:"issued_amount"`
	Invoices     []IssuedSummary `json:"invoices"`
}

// IssuedSummary carries both numbering schemes for one issued invoice.
type IssuedSummary struct {
	InvoiceID      string `json:"invoice_id"`
	InternalNumber string `json:"internal_number"`
	ExternalNumber string `json:"external_number"`
	ExternalURL    string `json:"external_url"`
}

// Stats aggregates the currently-issued partition by source category.
// one_off and manual are reported together.
type Stats struct {
	TotalCount    int              `json:"total_count"`
	TotalAmount   int64            `json:"total_amount"`
	ByCategory    map[string]int64 `json:"by_category"`
	CountByStatus map[string]int   `json:"count_by_status"`
}

// UnapprovedError names the invoices blocking an issuance batch.
type UnapprovedError struct {
	InvoiceIDs []string
}

func (e *UnapprovedError) Error() string {
	return "unapproved_items: " + strings.Join(e.InvoiceIDs, ", ")
}

func (e *UnapprovedError) Unwrap() error { return invoicedomain.ErrUnapprovedItems }

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	Assembler   *assembler.Assembler
	Ledger      issuancedomain.Ledger
	Provider    issuancedomain.Provider
	Engagements engagementdomain.Store
	ExtraWork   extraworkdomain.Queue
	Outbox      *events.Outbox
	Metrics     *metrics.BillingMetrics `optional:"true"`
}

type Workspace struct {
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	assembler   *assembler.Assembler
	ledger      issuancedomain.Ledger
	provider    issuancedomain.Provider
	engagements engagementdomain.Store
	extraWork   extraworkdomain.Queue
	outbox      *events.Outbox
	metrics     *metrics.BillingMetrics

	mu        sync.Mutex
	year      int
	month     int
	invoices  []invoicedomain.Invoice
	editState EditState
	selected  map[string]bool
	issued    map[string]bool
	issuing   bool
	stats     Stats
}

func New(p Params) *Workspace {
	return &Workspace{
		log:         p.Log.Named("invoice.workspace"),
		clock:       p.Clock,
		genID:       p.GenID,
		assembler:   p.Assembler,
		ledger:      p.Ledger,
		provider:    p.Provider,
		engagements: p.Engagements,
		extraWork:   p.ExtraWork,
		outbox:      p.Outbox,
		metrics:     p.Metrics,
		editState:   StateUntouched,
		selected:    make(map[string]bool),
		issued:      make(map[string]bool),
		stats:       Stats{ByCategory: map[string]int64{}, CountByStatus: map[string]int{}},
	}
}

// Generate fills the working set for the period. A user-edited set is
// authoritative and survives regeneration until explicitly released via
// RequestRegeneration; a period switch while edited is refused rather
// than silently rebuilding over the edits.
func (w *Workspace) Generate(ctx context.Context, year, month int) ([]invoicedomain.Invoice, error) {
	w.mu.Lock()
	samePeriod := w.year == year && w.month == month
	edited := w.editState == StateEdited
	w.mu.Unlock()

	if edited {
		if samePeriod {
			return w.Invoices(), nil
		}
		return nil, invoicedomain.ErrWorkingSetEdited
	}

	generated, err := w.assembler.GenerateInvoices(ctx, year, month)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.year = year
	w.month = month
	w.invoices = generated
	w.editState = StateUntouched
	w.selected = make(map[string]bool)
	w.issued = make(map[string]bool)
	w.recomputeStatsLocked()
	return cloneInvoices(w.invoices), nil
}

// RequestRegeneration releases a user-edited set so the next Generate
// call rebuilds from source data.
func (w *Workspace) RequestRegeneration() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editState == StateEdited {
		w.editState = StateRegenerateRequested
	}
}

// Invoices returns a snapshot of the working set.
func (w *Workspace) Invoices() []invoicedomain.Invoice {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneInvoices(w.invoices)
}

// EditState exposes the working-set lifecycle flag.
func (w *Workspace) EditState() EditState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editState
}

// UpdateLineItem merges a patch into one item and recomputes all derived
// amounts. Issued invoices are read-only until reissued.
func (w *Workspace) UpdateLineItem(invoiceID, lineItemID string, patch invoicedomain.LineItemPatch) (*invoicedomain.Invoice, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	inv, err := w.editableInvoiceLocked(invoiceID)
	if err != nil {
		return nil, err
	}
	index := inv.ItemIndex(lineItemID)
	if index < 0 {
		return nil, invoicedomain.ErrLineItemNotFound
	}

	patch.Apply(&inv.Items[index])
	w.touchLocked(inv)
	result := cloneInvoice(*inv)
	return &result, nil
}

// AddManualItem appends a zero-valued manual item, editable in full.
func (w *Workspace) AddManualItem(invoiceID string) (*invoicedomain.Invoice, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	inv, err := w.editableInvoiceLocked(invoiceID)
	if err != nil {
		return nil, err
	}

	item := invoicedomain.LineItem{
		ID:        fmt.Sprintf("li-manual-%s", w.genID.Generate()),
		InvoiceID: inv.ID,
		Source:    invoicedomain.SourceManual,
		Quantity:  1,
		Currency:  inv.Currency,
	}
	item.Recompute()
	inv.Items = append(inv.Items, item)
	w.touchLocked(inv)
	result := cloneInvoice(*inv)
	return &result, nil
}

// RemoveLineItem deletes an item of any source and recomputes totals.
// The default UI only offers removal for manual items; the engine stays
// general.
func (w *Workspace) RemoveLineItem(invoiceID, lineItemID string) (*invoicedomain.Invoice, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	inv, err := w.editableInvoiceLocked(invoiceID)
	if err != nil {
		return nil, err
	}
	index := inv.ItemIndex(lineItemID)
	if index < 0 {
		return nil, invoicedomain.ErrLineItemNotFound
	}

	inv.Items = append(inv.Items[:index], inv.Items[index+1:]...)
	w.touchLocked(inv)
	result := cloneInvoice(*inv)
	return &result, nil
}

// DuplicateLineItem clones an item immediately after itself. The copy is
// manual, unapproved and carries a "(kopie)" suffix.
func (w *Workspace) DuplicateLineItem(invoiceID, lineItemID string) (*invoicedomain.Invoice, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	inv, err := w.editableInvoiceLocked(invoiceID)
	if err != nil {
		return nil, err
	}
	index := inv.ItemIndex(lineItemID)
	if index < 0 {
		return nil, invoicedomain.ErrLineItemNotFound
	}

	duplicate := inv.Items[index]
	duplicate.ID = fmt.Sprintf("li-manual-%s", w.genID.Generate())
	duplicate.Source = invoicedomain.SourceManual
	duplicate.SourceRef = ""
	duplicate.IsApproved = false
	duplicate.Description = strings.TrimSpace(duplicate.Description) + " (kopie)"
	duplicate.Recompute()

	inv.Items = append(inv.Items, invoicedomain.LineItem{})
	copy(inv.Items[index+2:], inv.Items[index+1:])
	inv.Items[index+1] = duplicate

	w.touchLocked(inv)
	result := cloneInvoice(*inv)
	return &result, nil
}

// DuplicateInvoice clones a whole invoice as a fresh draft with new ids.
func (w *Workspace) DuplicateInvoice(invoiceID string) (*invoicedomain.Invoice, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	index := w.invoiceIndexLocked(invoiceID)
	if index < 0 {
		return nil, invoicedomain.ErrInvoiceNotFound
	}

	duplicate := cloneInvoice(w.invoices[index])
	duplicate.ID = fmt.Sprintf("%s-kopie-%s", duplicate.ID, w.genID.Generate())
	duplicate.Status = invoicedomain.InvoiceStatusDraft
	duplicate.IssuedAt = nil
	for i := range duplicate.Items {
		duplicate.Items[i].ID = fmt.Sprintf("li-manual-%s", w.genID.Generate())
		duplicate.Items[i].InvoiceID = duplicate.ID
	}
	duplicate.RecomputeTotals()

	now := w.clock.Now().UTC()
	duplicate.CreatedAt = now
	duplicate.UpdatedAt = now
	w.invoices = append(w.invoices, duplicate)
	w.editState = StateEdited

	result := cloneInvoice(duplicate)
	return &result, nil
}

// RemoveInvoice drops an invoice from the working set and clears any
// selection of it.
func (w *Workspace) RemoveInvoice(invoiceID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	index := w.invoiceIndexLocked(invoiceID)
	if index < 0 {
		return invoicedomain.ErrInvoiceNotFound
	}
	if w.issued[invoiceID] {
		return invoicedomain.ErrInvoiceIssued
	}

	w.invoices = append(w.invoices[:index], w.invoices[index+1:]...)
	delete(w.selected, invoiceID)
	w.editState = StateEdited
	return nil
}

// AddInvoice appends a manual item to the contract's existing invoice
// for the current period, or synthesizes a new invoice around it.
func (w *Workspace) AddInvoice(ctx context.Context, engagementID string, input ManualItemInput) (*invoicedomain.Invoice, error) {
	engagementID = strings.TrimSpace(engagementID)
	if engagementID == "" {
		return nil, invoicedomain.ErrInvalidEngagementRef
	}

	contract, err := w.engagements.GetByID(ctx, engagementID)
	if errors.Is(err, engagementdomain.ErrEngagementNotFound) {
		return nil, invoicedomain.ErrInvalidEngagementRef
	}
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, invoicedomain.ErrInvalidEngagementRef
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.year == 0 {
		return nil, invoicedomain.ErrInvalidPeriod
	}

	invoiceID := invoicedomain.InvoiceID(engagementID, w.year, w.month)
	item := invoicedomain.LineItem{
		ID:          fmt.Sprintf("li-manual-%s", w.genID.Generate()),
		InvoiceID:   invoiceID,
		Source:      invoicedomain.SourceManual,
		Description: input.Description,
		UnitPrice:   input.UnitPrice,
		Quantity:    input.Quantity,
		Note:        input.Note,
		Currency:    contract.Currency,
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	item.Recompute()

	if index := w.invoiceIndexLocked(invoiceID); index >= 0 {
		inv := &w.invoices[index]
		if w.issued[invoiceID] {
			return nil, invoicedomain.ErrInvoiceIssued
		}
		inv.Items = append(inv.Items, item)
		w.touchLocked(inv)
		result := cloneInvoice(*inv)
		return &result, nil
	}

	now := w.clock.Now().UTC()
	inv := invoicedomain.Invoice{
		ID:           invoiceID,
		EngagementID: engagementID,
		ClientID:     contract.ClientID,
		Year:         w.year,
		Month:        w.month,
		Currency:     contract.Currency,
		Status:       invoicedomain.InvoiceStatusDraft,
		Items:        []invoicedomain.LineItem{item},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	inv.RecomputeTotals()
	w.invoices = append(w.invoices, inv)
	w.editState = StateEdited

	result := cloneInvoice(inv)
	return &result, nil
}

func (w *Workspace) editableInvoiceLocked(invoiceID string) (*invoicedomain.Invoice, error) {
	index := w.invoiceIndexLocked(invoiceID)
	if index < 0 {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	if w.issued[invoiceID] {
		return nil, invoicedomain.ErrInvoiceIssued
	}
	return &w.invoices[index], nil
}

func (w *Workspace) invoiceIndexLocked(invoiceID string) int {
	for i := range w.invoices {
		if w.invoices[i].ID == invoiceID {
			return i
		}
	}
	return -1
}

// touchLocked is the shared tail of every mutation: recompute totals,
// bump updated_at, mark the set user-edited.
func (w *Workspace) touchLocked(inv *invoicedomain.Invoice) {
	inv.RecomputeTotals()
	inv.UpdatedAt = w.clock.Now().UTC()
	w.editState = StateEdited
}

func cloneInvoice(inv invoicedomain.Invoice) invoicedomain.Invoice {
	out := inv
	out.Items = make([]invoicedomain.LineItem, len(inv.Items))
	copy(out.Items, inv.Items)
	return out
}

func cloneInvoices(invoices []invoicedomain.Invoice) []invoicedomain.Invoice {
	out := make([]invoicedomain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, cloneInvoice(inv))
	}
	return out
}

func sortedIDs(set map[string]bool) []string {
	ids := make([]string, 0, len(set))
	for id, ok := range set {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
