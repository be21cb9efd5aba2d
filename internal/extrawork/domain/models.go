package domain

import (
	"fmt"
	"time"
)

// WorkStatus is the extra-work lifecycle state.
// pending_approval -> in_progress -> ready_to_invoice -> invoiced (terminal).
type WorkStatus string

const (
	WorkStatusPendingApproval WorkStatus = "pending_approval"
	WorkStatusInProgress      WorkStatus = "in_progress"
	WorkStatusReadyToInvoice  WorkStatus = "ready_to_invoice"
	WorkStatusInvoiced        WorkStatus = "invoiced"
)

var allowedTransitions = map[WorkStatus][]WorkStatus{
	WorkStatusPendingApproval: {WorkStatusInProgress},
	WorkStatusInProgress:      {WorkStatusReadyToInvoice},
	WorkStatusReadyToInvoice:  {WorkStatusInvoiced},
	WorkStatusInvoiced:        {},
}

// Valid reports whether s is a known lifecycle state.
func (s WorkStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to WorkStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// WorkItem is ad hoc billable work queued for a specific billing period.
type WorkItem struct {
	ID            string     `gorm:"primaryKey" json:"id"`
	EngagementID  *string    `gorm:"index" json:"engagement_id,omitempty"`
	Description   string     `gorm:"type:text;not null;default:''" json:"description"`
	Amount        int64      `gorm:"not null;default:0" json:"amount"`
	Hours         *float64   `json:"hours,omitempty"`
	HourlyRate    *int64     `json:"hourly_rate,omitempty"`
	Currency      string     `gorm:"type:text;not null;default:'CZK'" json:"currency"`
	BillingPeriod string     `gorm:"type:text;not null" json:"billing_period"`
	Status        WorkStatus `gorm:"type:text;not null;default:'pending_approval'" json:"status"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (WorkItem) TableName() string { return "extra_work_items" }

// BillingPeriodKey formats a (year, month) pair the way billing_period stores it.
func BillingPeriodKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
