package workspace

import (
	"context"
	"time"

	"github.com/agencyops/fakturo/internal/events"
	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
	"go.uber.org/zap"
)

// Categories reported by the issued-stats snapshot. one_off and manual
// bill through the same bucket.
const (
	CategoryEngagement    = "engagement"
	CategoryExtraWork     = "extra_work"
	CategoryCreativeBoost = "creative_boost"
	CategoryOneOff        = "one_off"
)

// Select marks an invoice for batch issuance. Selecting auto-approves
// every item on it; the checkbox is the visible approval action.
func (w *Workspace) Select(invoiceID string) (*invoicedomain.Invoice, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	inv, err := w.editableInvoiceLocked(invoiceID)
	if err != nil {
		return nil, err
	}

	changed := false
	for i := range inv.Items {
		if !inv.Items[i].IsApproved {
			inv.Items[i].IsApproved = true
			changed = true
		}
	}
	if changed {
		w.touchLocked(inv)
	}
	w.selected[invoiceID] = true

	result := cloneInvoice(*inv)
	return &result, nil
}

// Deselect removes an invoice from the issuance selection. Approval
// flags are left as they are.
func (w *Workspace) Deselect(invoiceID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.selected, invoiceID)
}

// SelectedIDs returns the current selection in stable order.
func (w *Workspace) SelectedIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return sortedIDs(w.selected)
}

// IssuedIDs returns the issued partition in stable order.
func (w *Workspace) IssuedIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return sortedIDs(w.issued)
}

// IssueSelected issues the current selection.
func (w *Workspace) IssueSelected(ctx context.Context) (*IssueResult, error) {
	return w.IssueInvoices(ctx, w.SelectedIDs())
}

// IssueInvoices issues a batch. The approval gate is all-or-nothing: any
// unapproved item anywhere rejects the whole batch, naming the offending
// invoices, before a single ledger entry is written. Issuance itself is
// then atomic per invoice.
func (w *Workspace) IssueInvoices(ctx context.Context, invoiceIDs []string) (*IssueResult, error) {
	if len(invoiceIDs) == 0 {
		return nil, invoicedomain.ErrEmptySelection
	}

	w.mu.Lock()
	if w.issuing {
		w.mu.Unlock()
		return nil, invoicedomain.ErrIssueInProgress
	}

	batch := make([]invoicedomain.Invoice, 0, len(invoiceIDs))
	var blocking []string
	for _, id := range invoiceIDs {
		index := w.invoiceIndexLocked(id)
		if index < 0 {
			w.mu.Unlock()
			return nil, invoicedomain.ErrInvoiceNotFound
		}
		if w.issued[id] {
			w.mu.Unlock()
			return nil, invoicedomain.ErrInvoiceIssued
		}
		inv := w.invoices[index]
		if !inv.AllApproved() {
			blocking = append(blocking, id)
			continue
		}
		batch = append(batch, cloneInvoice(inv))
	}
	if len(blocking) > 0 {
		w.mu.Unlock()
		return nil, &UnapprovedError{InvoiceIDs: blocking}
	}
	w.issuing = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.issuing = false
		w.mu.Unlock()
	}()

	result := &IssueResult{}
	for _, inv := range batch {
		receipt, err := w.provider.Issue(ctx, inv)
		if err != nil {
			return result, err
		}
		record, err := w.ledger.Add(ctx, inv, receipt)
		if err != nil {
			return result, err
		}

		if err := w.markSourcesInvoiced(ctx, inv); err != nil {
			w.log.Warn("marking sources invoiced failed",
				zap.String("invoice_id", inv.ID),
				zap.Error(err),
			)
		}

		w.commitIssued(inv.ID, record.IssuedAt)
		w.metrics.ObserveIssued(inv.Currency, inv.TotalAmount)

		if err := w.outbox.Publish(ctx, events.Event{
			Type: events.EventInvoiceIssued,
			Payload: events.InvoiceIssuedPayload{
				InvoiceID:      inv.ID,
				EngagementID:   inv.EngagementID,
				InternalNumber: record.InternalNumber,
				ExternalNumber: record.ExternalNumber,
				TotalAmount:    inv.TotalAmount,
				Currency:       inv.Currency,
			}.ToMap(),
			DedupeKey: "invoice_issued:" + record.ID.String(),
		}); err != nil {
			w.log.Warn("outbox publish failed", zap.String("invoice_id", inv.ID), zap.Error(err))
		}

		result.IssuedCount++
		result.IssuedAmount += inv.TotalAmount
		result.Invoices = append(result.Invoices, IssuedSummary{
			InvoiceID:      inv.ID,
			InternalNumber: record.InternalNumber,
			ExternalNumber: record.ExternalNumber,
			ExternalURL:    record.ExternalURL,
		})
	}

	w.log.Info("issuance batch completed",
		zap.Int64("issued_count", result.IssuedCount),
		zap.Int64("issued_amount", result.IssuedAmount),
	)
	return result, nil
}

// Reissue reopens an issued invoice for editing. The ledger entry is
// marked superseded but kept for audit history.
func (w *Workspace) Reissue(ctx context.Context, invoiceID string) error {
	w.mu.Lock()
	index := w.invoiceIndexLocked(invoiceID)
	if index < 0 {
		w.mu.Unlock()
		return invoicedomain.ErrInvoiceNotFound
	}
	if !w.issued[invoiceID] {
		w.mu.Unlock()
		return invoicedomain.ErrInvoiceNotIssued
	}
	w.mu.Unlock()

	if err := w.ledger.Supersede(ctx, invoiceID); err != nil {
		return err
	}

	w.mu.Lock()
	delete(w.issued, invoiceID)
	if index := w.invoiceIndexLocked(invoiceID); index >= 0 {
		w.invoices[index].Status = invoicedomain.InvoiceStatusDraft
		w.invoices[index].IssuedAt = nil
		w.invoices[index].UpdatedAt = w.clock.Now().UTC()
	}
	w.recomputeStatsLocked()
	w.mu.Unlock()

	if err := w.outbox.Publish(ctx, events.Event{
		Type:      events.EventInvoiceReissued,
		Payload:   map[string]any{"invoice_id": invoiceID},
		DedupeKey: "",
	}); err != nil {
		w.log.Warn("outbox publish failed", zap.String("invoice_id", invoiceID), zap.Error(err))
	}
	return nil
}

// StatsSnapshot returns the issued-partition aggregates.
func (w *Workspace) StatsSnapshot() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := Stats{
		TotalCount:    w.stats.TotalCount,
		TotalAmount:   w.stats.TotalAmount,
		ByCategory:    make(map[string]int64, len(w.stats.ByCategory)),
		CountByStatus: make(map[string]int, len(w.stats.CountByStatus)),
	}
	for category, amount := range w.stats.ByCategory {
		snapshot.ByCategory[category] = amount
	}
	for status, count := range w.stats.CountByStatus {
		snapshot.CountByStatus[status] = count
	}
	return snapshot
}

// markSourcesInvoiced flips the backing records of one-off and
// extra-work items to their terminal invoiced states.
func (w *Workspace) markSourcesInvoiced(ctx context.Context, inv invoicedomain.Invoice) error {
	var firstErr error
	for _, item := range inv.Items {
		if item.SourceRef == "" {
			continue
		}
		var err error
		switch item.Source {
		case invoicedomain.SourceOneOff:
			err = w.engagements.MarkServiceInvoiced(ctx, item.SourceRef)
		case invoicedomain.SourceExtraWork:
			err = w.extraWork.MarkInvoiced(ctx, item.SourceRef)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *Workspace) commitIssued(invoiceID string, issuedAt time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.issued[invoiceID] = true
	delete(w.selected, invoiceID)
	if index := w.invoiceIndexLocked(invoiceID); index >= 0 {
		at := issuedAt
		w.invoices[index].Status = invoicedomain.InvoiceStatusIssued
		w.invoices[index].IssuedAt = &at
	}
	w.recomputeStatsLocked()
}

// recomputeStatsLocked walks all items of all issued invoices and sums
// per source category. Recomputed on every issued-set change.
func (w *Workspace) recomputeStatsLocked() {
	stats := Stats{
		ByCategory:    map[string]int64{},
		CountByStatus: map[string]int{},
	}

	for i := range w.invoices {
		inv := &w.invoices[i]
		stats.CountByStatus[string(inv.Status)]++
		if !w.issued[inv.ID] {
			continue
		}
		stats.TotalCount++
		stats.TotalAmount += inv.TotalAmount
		for _, item := range inv.Items {
			switch item.Source {
			case invoicedomain.SourceEngagement:
				stats.ByCategory[CategoryEngagement] += item.FinalAmount
			case invoicedomain.SourceExtraWork:
				stats.ByCategory[CategoryExtraWork] += item.FinalAmount
			case invoicedomain.SourceCreativeBoost:
				stats.ByCategory[CategoryCreativeBoost] += item.FinalAmount
			case invoicedomain.SourceOneOff, invoicedomain.SourceManual:
				stats.ByCategory[CategoryOneOff] += item.FinalAmount
			}
		}
	}

	w.stats = stats
	w.metrics.SetIssuedOpen(stats.TotalCount)
}
