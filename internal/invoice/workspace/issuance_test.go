package workspace

import (
	"context"
	"errors"
	"testing"

	engagementdomain "github.com/agencyops/fakturo/internal/engagement/domain"
	extraworkdomain "github.com/agencyops/fakturo/internal/extrawork/domain"
	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
)

func TestSelectAutoApprovesItems(t *testing.T) {
	f := newFixture(t)
	invoices := generate(t, f)

	if invoices[0].AllApproved() {
		t.Fatal("generated invoice should start unapproved")
	}

	inv, err := f.workspace.Select(invoices[0].ID)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !inv.AllApproved() {
		t.Fatal("selection must approve every item")
	}

	selected := f.workspace.SelectedIDs()
	if len(selected) != 1 || selected[0] != invoices[0].ID {
		t.Fatalf("selected = %v", selected)
	}
}

func TestDeselectKeepsApprovalFlags(t *testing.T) {
	f := newFixture(t)
	invoices := generate(t, f)

	if _, err := f.workspace.Select(invoices[0].ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	f.workspace.Deselect(invoices[0].ID)

	if len(f.workspace.SelectedIDs()) != 0 {
		t.Fatal("selection not cleared")
	}
	for _, inv := range f.workspace.Invoices() {
		if inv.ID == invoices[0].ID && !inv.AllApproved() {
			t.Fatal("deselect must not revoke approval")
		}
	}
}

func TestIssueSelectedHappyPath(t *testing.T) {
	f := newFixture(t)
	invoices := generate(t, f)

	for _, inv := range invoices {
		if _, err := f.workspace.Select(inv.ID); err != nil {
			t.Fatalf("select %s: %v", inv.ID, err)
		}
	}

	result, err := f.workspace.IssueSelected(context.Background())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if result.IssuedCount != 2 {
		t.Fatalf("issued count = %d, want 2", result.IssuedCount)
	}
	if result.IssuedAmount != 70000 {
		t.Fatalf("issued amount = %d, want 70000", result.IssuedAmount)
	}

	for _, summary := range result.Invoices {
		if summary.InternalNumber == "" || summary.ExternalNumber == "" {
			t.Fatalf("summary missing numbers: %+v", summary)
		}
		if summary.InternalNumber == summary.ExternalNumber {
			t.Fatalf("numbering schemes collapsed: %q", summary.InternalNumber)
		}
	}

	if len(f.workspace.SelectedIDs()) != 0 {
		t.Fatal("selection must drain after issuance")
	}
	if len(f.workspace.IssuedIDs()) != 2 {
		t.Fatalf("issued ids = %v", f.workspace.IssuedIDs())
	}
	for _, inv := range f.workspace.Invoices() {
		if inv.Status != invoicedomain.InvoiceStatusIssued {
			t.Fatalf("invoice %s status = %q", inv.ID, inv.Status)
		}
		if inv.IssuedAt == nil {
			t.Fatalf("invoice %s missing issued_at", inv.ID)
		}
	}

	var eventCount int64
	if err := f.db.Raw(`SELECT COUNT(*) FROM billing_events WHERE event_type = ?`, "invoice_issued").Scan(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != 2 {
		t.Fatalf("outbox events = %d, want 2", eventCount)
	}
}

func TestIssueRejectsUnapprovedBatchEntirely(t *testing.T) {
	f := newFixture(t)
	invoices := generate(t, f)

	if _, err := f.workspace.Select(invoices[0].ID); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, err := f.workspace.IssueInvoices(context.Background(), []string{invoices[0].ID, invoices[1].ID})

	var unapproved *UnapprovedError
	if !errors.As(err, &unapproved) {
		t.Fatalf("err = %v, want UnapprovedError", err)
	}
	if len(unapproved.InvoiceIDs) != 1 || unapproved.InvoiceIDs[0] != invoices[1].ID {
		t.Fatalf("blocking ids = %v", unapproved.InvoiceIDs)
	}
	if !errors.Is(err, invoicedomain.ErrUnapprovedItems) {
		t.Fatal("UnapprovedError must unwrap to the sentinel")
	}

	// Nothing was issued, not even the approved invoice.
	if len(f.ledger.entries) != 0 {
		t.Fatalf("ledger entries = %d, want 0", len(f.ledger.entries))
	}
	if len(f.workspace.IssuedIDs()) != 0 {
		t.Fatal("no invoice may issue from a rejected batch")
	}
}

func TestIssueEmptySelection(t *testing.T) {
	f := newFixture(t)
	generate(t, f)

	_, err := f.workspace.IssueSelected(context.Background())
	if !errors.Is(err, invoicedomain.ErrEmptySelection) {
		t.Fatalf("err = %v, want empty selection", err)
	}
}

func TestIssuedInvoiceIsReadOnly(t *testing.T) {
	f := newFixture(t)
	invoices := generate(t, f)

	if _, err := f.workspace.Select(invoices[0].ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := f.workspace.IssueSelected(context.Background()); err != nil {
		t.Fatalf("issue: %v", err)
	}

	price := int64(1)
	_, err := f.workspace.UpdateLineItem(invoices[0].ID, invoices[0].Items[0].ID, invoicedomain.LineItemPatch{UnitPrice: &price})
	if !errors.Is(err, invoicedomain.ErrInvoiceIssued) {
		t.Fatalf("update err = %v, want issued", err)
	}
	if err := f.workspace.RemoveInvoice(invoices[0].ID); !errors.Is(err, invoicedomain.ErrInvoiceIssued) {
		t.Fatalf("remove err = %v, want issued", err)
	}

	_, err = f.workspace.IssueInvoices(context.Background(), []string{invoices[0].ID})
	if !errors.Is(err, invoicedomain.ErrInvoiceIssued) {
		t.Fatalf("reissue-batch err = %v, want issued", err)
	}
}

func TestIssueMarksSourceRecords(t *testing.T) {
	f := newFixture(t)
	engID := "eng-1"
	f.engagements.oneOffs = []engagementdomain.EngagementService{
		{ID: "svc-5", EngagementID: engID, Name: "Redesign webu", Price: 45000, Currency: "CZK", BillingType: engagementdomain.BillingTypeOneOff},
	}
	f.queue.ready = []extraworkdomain.WorkItem{
		{ID: "ew-1", EngagementID: &engID, Description: "Bannery", Amount: 7200, Currency: "CZK", Status: extraworkdomain.WorkStatusReadyToInvoice},
	}

	invoices := generate(t, f)
	for _, inv := range invoices {
		if _, err := f.workspace.Select(inv.ID); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	if _, err := f.workspace.IssueSelected(context.Background()); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if len(f.engagements.invoiced) != 1 || f.engagements.invoiced[0] != "svc-5" {
		t.Fatalf("one-off services marked = %v", f.engagements.invoiced)
	}
	if len(f.queue.invoiced) != 1 || f.queue.invoiced[0] != "ew-1" {
		t.Fatalf("extra work marked = %v", f.queue.invoiced)
	}
}

func TestReissueReopensInvoice(t *testing.T) {
	f := newFixture(t)
	invoices := generate(t, f)

	if _, err := f.workspace.Select(invoices[0].ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := f.workspace.IssueSelected(context.Background()); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := f.workspace.Reissue(context.Background(), invoices[0].ID); err != nil {
		t.Fatalf("reissue: %v", err)
	}

	if len(f.ledger.superseded) != 1 || f.ledger.superseded[0] != invoices[0].ID {
		t.Fatalf("superseded = %v", f.ledger.superseded)
	}
	if len(f.workspace.IssuedIDs()) != 0 {
		t.Fatal("invoice still in issued partition")
	}

	// Editable again.
	price := int64(60000)
	inv, err := f.workspace.UpdateLineItem(invoices[0].ID, invoices[0].Items[0].ID, invoicedomain.LineItemPatch{UnitPrice: &price})
	if err != nil {
		t.Fatalf("update after reissue: %v", err)
	}
	if inv.Status != invoicedomain.InvoiceStatusDraft {
		t.Fatalf("status = %q, want draft", inv.Status)
	}
}

func TestReissueRequiresIssuedInvoice(t *testing.T) {
	f := newFixture(t)
	invoices := generate(t, f)

	err := f.workspace.Reissue(context.Background(), invoices[0].ID)
	if !errors.Is(err, invoicedomain.ErrInvoiceNotIssued) {
		t.Fatalf("err = %v, want not issued", err)
	}
}

func TestStatsFollowIssuedPartition(t *testing.T) {
	f := newFixture(t)
	engID := "eng-1"
	f.queue.ready = []extraworkdomain.WorkItem{
		{ID: "ew-1", EngagementID: &engID, Description: "Bannery", Amount: 7200, Currency: "CZK", Status: extraworkdomain.WorkStatusReadyToInvoice},
	}
	invoices := generate(t, f)

	if f.workspace.StatsSnapshot().TotalCount != 0 {
		t.Fatal("stats must start empty")
	}

	for _, inv := range invoices {
		if _, err := f.workspace.Select(inv.ID); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	if _, err := f.workspace.IssueSelected(context.Background()); err != nil {
		t.Fatalf("issue: %v", err)
	}

	stats := f.workspace.StatsSnapshot()
	if stats.TotalCount != 2 {
		t.Fatalf("total count = %d, want 2", stats.TotalCount)
	}
	if stats.TotalAmount != 77200 {
		t.Fatalf("total amount = %d, want 77200", stats.TotalAmount)
	}
	if stats.ByCategory[CategoryEngagement] != 70000 {
		t.Fatalf("engagement amount = %d, want 70000", stats.ByCategory[CategoryEngagement])
	}
	if stats.ByCategory[CategoryExtraWork] != 7200 {
		t.Fatalf("extra work amount = %d, want 7200", stats.ByCategory[CategoryExtraWork])
	}
	if stats.CountByStatus[string(invoicedomain.InvoiceStatusIssued)] != 2 {
		t.Fatalf("issued status count = %v", stats.CountByStatus)
	}

	if err := f.workspace.Reissue(context.Background(), invoices[0].ID); err != nil {
		t.Fatalf("reissue: %v", err)
	}
	after := f.workspace.StatsSnapshot()
	if after.TotalCount != 1 {
		t.Fatalf("total count after reissue = %d, want 1", after.TotalCount)
	}
}

func TestIssueProviderFailureStopsBatch(t *testing.T) {
	f := newFixture(t)
	invoices := generate(t, f)

	f.provider.err = errors.New("provider_down")
	for _, inv := range invoices {
		if _, err := f.workspace.Select(inv.ID); err != nil {
			t.Fatalf("select: %v", err)
		}
	}

	_, err := f.workspace.IssueSelected(context.Background())
	if err == nil || err.Error() != "provider_down" {
		t.Fatalf("err = %v, want provider_down", err)
	}
	if len(f.ledger.entries) != 0 {
		t.Fatalf("ledger entries = %d, want 0", len(f.ledger.entries))
	}

	// The gate releases; a retry works once the provider recovers.
	f.provider.err = nil
	if _, err := f.workspace.IssueSelected(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestStatsGroupsManualWithOneOff(t *testing.T) {
	f := newFixture(t)
	invoices := generate(t, f)

	inv, err := f.workspace.AddManualItem(invoices[0].ID)
	if err != nil {
		t.Fatalf("add manual: %v", err)
	}
	price := int64(3000)
	manualID := inv.Items[len(inv.Items)-1].ID
	if _, err := f.workspace.UpdateLineItem(inv.ID, manualID, invoicedomain.LineItemPatch{UnitPrice: &price}); err != nil {
		t.Fatalf("update manual: %v", err)
	}

	if _, err := f.workspace.Select(inv.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := f.workspace.IssueSelected(context.Background()); err != nil {
		t.Fatalf("issue: %v", err)
	}

	stats := f.workspace.StatsSnapshot()
	if stats.ByCategory[CategoryOneOff] != 3000 {
		t.Fatalf("one_off bucket = %d, want 3000", stats.ByCategory[CategoryOneOff])
	}
}
