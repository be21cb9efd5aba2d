package domain

import "time"

// EngagementType distinguishes recurring retainers from one-time work.
type EngagementType string

const (
	EngagementTypeRetainer EngagementType = "retainer"
	EngagementTypeOneOff   EngagementType = "one_off"
	EngagementTypeInternal EngagementType = "internal"
)

// EngagementStatus is the contract lifecycle state.
type EngagementStatus string

const (
	EngagementStatusPlanned   EngagementStatus = "planned"
	EngagementStatusActive    EngagementStatus = "active"
	EngagementStatusPaused    EngagementStatus = "paused"
	EngagementStatusCompleted EngagementStatus = "completed"
	EngagementStatusCancelled EngagementStatus = "cancelled"
)

// BillingType controls how a service turns into line items.
type BillingType string

const (
	BillingTypeMonthly BillingType = "monthly"
	BillingTypeOneOff  BillingType = "one_off"
)

// InvoicingStatus tracks one-off services through billing.
type InvoicingStatus string

const (
	InvoicingStatusPending  InvoicingStatus = "pending"
	InvoicingStatusInvoiced InvoicingStatus = "invoiced"
)

// Engagement is a billable agreement with a client.
// Only active retainers participate in monthly invoice generation.
type Engagement struct {
	ID         string           `gorm:"primaryKey" json:"id"`
	ClientID   string           `gorm:"not null;index" json:"client_id"`
	Type       EngagementType   `gorm:"type:text;not null" json:"type"`
	Status     EngagementStatus `gorm:"type:text;not null" json:"status"`
	MonthlyFee int64            `gorm:"not null;default:0" json:"monthly_fee"`
	Currency   string           `gorm:"type:text;not null;default:'CZK'" json:"currency"`
	StartDate  time.Time        `gorm:"not null" json:"start_date"`
	EndDate    *time.Time       `json:"end_date,omitempty"`
	CreatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Engagement) TableName() string { return "engagements" }

// Overlaps reports whether the contract's active span touches the period.
func (e Engagement) Overlaps(periodStart, periodEnd time.Time) bool {
	if e.StartDate.After(periodEnd) {
		return false
	}
	if e.EndDate != nil && e.EndDate.Before(periodStart) {
		return false
	}
	return true
}

// EngagementService is one billable service on an engagement.
type EngagementService struct {
	ID              string          `gorm:"primaryKey" json:"id"`
	EngagementID    string          `gorm:"not null;index" json:"engagement_id"`
	Name            string          `gorm:"type:text;not null" json:"name"`
	Price           int64           `gorm:"not null;default:0" json:"price"`
	Currency        string          `gorm:"type:text;not null;default:'CZK'" json:"currency"`
	BillingType     BillingType     `gorm:"type:text;not null" json:"billing_type"`
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`
	IsCreditPackage bool            `gorm:"not null;default:false" json:"is_credit_package"`
	MaxCredits      int             `gorm:"not null;default:0" json:"max_credits"`
	PricePerCredit  int64           `gorm:"not null;default:0" json:"price_per_credit"`
	InvoicingStatus InvoicingStatus `gorm:"type:text;not null;default:'pending'" json:"invoicing_status"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (EngagementService) TableName() string { return "engagement_services" }
