package domain

import (
	"fmt"
	"math"
	"time"
)

// SourceType tags a line item with its originating revenue source.
type SourceType string

const (
	SourceEngagement    SourceType = "engagement"
	SourceExtraWork     SourceType = "extra_work"
	SourceCreativeBoost SourceType = "creative_boost"
	SourceOneOff        SourceType = "one_off"
	SourceManual        SourceType = "manual"
)

// InvoiceStatus is the working-set state of a monthly invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
)

// LineItem is one billable entry on a monthly invoice.
type LineItem struct {
	ID               string     `json:"id"`
	InvoiceID        string     `json:"invoice_id"`
	Source           SourceType `json:"source"`
	SourceRef        string     `json:"source_ref,omitempty"`
	Description      string     `json:"description"`
	UnitPrice        int64      `json:"unit_price"`
	Quantity         float64    `json:"quantity"`
	AdjustmentAmount int64      `json:"adjustment_amount"`
	AdjustmentReason string     `json:"adjustment_reason,omitempty"`
	FinalAmount      int64      `json:"final_amount"`
	IsApproved       bool       `json:"is_approved"`
	Note             string     `json:"note,omitempty"`
	Hours            *float64   `json:"hours,omitempty"`
	HourlyRate       *int64     `json:"hourly_rate,omitempty"`
	Currency         string     `json:"currency"`
	ReverseCharge    bool       `json:"reverse_charge"`
	ProratedDays     *int       `json:"prorated_days,omitempty"`
	TotalDaysInMonth *int       `json:"total_days_in_month,omitempty"`
}

// BaseAmount is unit_price x quantity, rounded half-up.
func (li LineItem) BaseAmount() int64 {
	return int64(math.Floor(float64(li.UnitPrice)*li.Quantity + 0.5))
}

// Recompute restores the final_amount invariant. Every mutation path
// must pass through here (directly or via ApplyPatch).
func (li *LineItem) Recompute() {
	li.FinalAmount = li.BaseAmount() + li.AdjustmentAmount
}

// Invoice aggregates one contract's billables for a (year, month).
type Invoice struct {
	ID           string        `json:"id"`
	EngagementID string        `json:"engagement_id"`
	ClientID     string        `json:"client_id"`
	ClientName   string        `json:"client_name"`
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	Currency     string        `json:"currency"`
	Status       InvoiceStatus `json:"status"`
	Items        []LineItem    `json:"items"`

	Subtotal         int64 `json:"subtotal"`
	TotalAdjustments int64 `json:"total_adjustments"`
	TotalAmount      int64 `json:"total_amount"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
}

// RecomputeTotals rederives all invoice totals from the current items.
// Totals are never mutated independently of this.
func (inv *Invoice) RecomputeTotals() {
	var subtotal, adjustments int64
	for i := range inv.Items {
		inv.Items[i].Recompute()
		subtotal += inv.Items[i].BaseAmount()
		adjustments += inv.Items[i].AdjustmentAmount
	}
	inv.Subtotal = subtotal
	inv.TotalAdjustments = adjustments
	inv.TotalAmount = subtotal + adjustments
}

// AllApproved reports whether every line item carries the approval flag.
func (inv Invoice) AllApproved() bool {
	for _, item := range inv.Items {
		if !item.IsApproved {
			return false
		}
	}
	return true
}

// ItemIndex locates a line item by id, or -1.
func (inv Invoice) ItemIndex(lineItemID string) int {
	for i := range inv.Items {
		if inv.Items[i].ID == lineItemID {
			return i
		}
	}
	return -1
}

// Deterministic identifiers: regenerating a period reproduces the same
// ids, so regeneration can never duplicate financial records.

func InvoiceID(engagementID string, year, month int) string {
	return fmt.Sprintf("inv-%s-%d-%d", engagementID, year, month)
}

func ServiceLineItemID(serviceID string, year, month int) string {
	return fmt.Sprintf("li-%s-%d-%d", serviceID, year, month)
}

func ExtraWorkLineItemID(workID string, year, month int) string {
	return fmt.Sprintf("li-ew-%s-%d-%d", workID, year, month)
}

func OneOffLineItemID(serviceID string, year, month int) string {
	return fmt.Sprintf("li-oneoff-%s-%d-%d", serviceID, year, month)
}

var czechMonths = [...]string{
	"leden", "únor", "březen", "duben", "květen", "červen",
	"červenec", "srpen", "září", "říjen", "listopad", "prosinec",
}

// MonthLabel renders the localized month label used in descriptions.
func MonthLabel(year, month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d/%d", month, year)
	}
	return fmt.Sprintf("%s %d", czechMonths[month-1], year)
}
