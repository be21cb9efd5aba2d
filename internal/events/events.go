package events

// Billing event types emitted via the outbox.
const (
	EventInvoiceIssued          = "invoice_issued"
	EventInvoiceReissued        = "invoice_reissued"
	EventExtraWorkStatusChanged = "extra_work_status_changed"
)

// InvoiceIssuedPayload captures the minimal data for downstream consumers.
type InvoiceIssuedPayload struct {
	InvoiceID      string `json:"invoice_id"`
	EngagementID   string `json:"engagement_id"`
	InternalNumber string `json:"internal_number"`
	ExternalNumber string `json:"external_number"`
	TotalAmount    int64  `json:"total_amount"`
	Currency       string `json:"currency"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p InvoiceIssuedPayload) ToMap() map[string]any {
	return map[string]any{
		"invoice_id":      p.InvoiceID,
		"engagement_id":   p.EngagementID,
		"internal_number": p.InternalNumber,
		"external_number": p.ExternalNumber,
		"total_amount":    p.TotalAmount,
		"currency":        p.Currency,
	}
}

// ExtraWorkStatusPayload records a lifecycle transition.
type ExtraWorkStatusPayload struct {
	WorkItemID string `json:"work_item_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p ExtraWorkStatusPayload) ToMap() map[string]any {
	return map[string]any{
		"work_item_id": p.WorkItemID,
		"from":         p.From,
		"to":           p.To,
	}
}
