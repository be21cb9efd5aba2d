package domain

// LineItemPatch carries partial edits to a line item. Nil fields are
// left untouched. Applying a patch always ends in a recompute, which is
// the only way final_amount and invoice totals may change.
type LineItemPatch struct {
	Description      *string  `json:"description,omitempty"`
	UnitPrice        *int64   `json:"unit_price,omitempty"`
	Quantity         *float64 `json:"quantity,omitempty"`
	AdjustmentAmount *int64   `json:"adjustment_amount,omitempty"`
	AdjustmentReason *string  `json:"adjustment_reason,omitempty"`
	Note             *string  `json:"note,omitempty"`
	IsApproved       *bool    `json:"is_approved,omitempty"`
	Hours            *float64 `json:"hours,omitempty"`
	HourlyRate       *int64   `json:"hourly_rate,omitempty"`
	ReverseCharge    *bool    `json:"reverse_charge,omitempty"`
}

// Apply merges the patch into the item and recomputes its final amount.
func (p LineItemPatch) Apply(item *LineItem) {
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.UnitPrice != nil {
		item.UnitPrice = *p.UnitPrice
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.AdjustmentAmount != nil {
		item.AdjustmentAmount = *p.AdjustmentAmount
	}
	if p.AdjustmentReason != nil {
		item.AdjustmentReason = *p.AdjustmentReason
	}
	if p.Note != nil {
		item.Note = *p.Note
	}
	if p.IsApproved != nil {
		item.IsApproved = *p.IsApproved
	}
	if p.Hours != nil {
		item.Hours = p.Hours
	}
	if p.HourlyRate != nil {
		item.HourlyRate = p.HourlyRate
	}
	if p.ReverseCharge != nil {
		item.ReverseCharge = *p.ReverseCharge
	}
	item.Recompute()
}
