package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// IssuedInvoice is the immutable ledger snapshot written at issuance.
// Reissuing marks the row superseded; it is never mutated otherwise.
//
// Two numbering schemes coexist deliberately: InternalNumber is the
// ledger-local PREFIX-YYYY-NNN sequence, ExternalNumber comes from the
// invoicing provider. Neither is collapsed into the other.
type IssuedInvoice struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	InvoiceID      string         `gorm:"not null;index" json:"invoice_id"`
	EngagementID   string         `gorm:"not null" json:"engagement_id"`
	ClientID       string         `gorm:"not null" json:"client_id"`
	Year           int            `gorm:"not null;index" json:"year"`
	Month          int            `gorm:"not null" json:"month"`
	InternalNumber string         `gorm:"type:text;not null" json:"internal_number"`
	ExternalNumber string         `gorm:"type:text;not null" json:"external_number"`
	ExternalID     string         `gorm:"type:text;not null;default:''" json:"external_id"`
	ExternalURL    string         `gorm:"type:text;not null;default:''" json:"external_url"`
	TotalAmount    int64          `gorm:"not null;default:0" json:"total_amount"`
	Currency       string         `gorm:"type:text;not null;default:'CZK'" json:"currency"`
	LineItems      datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"line_items"`
	IssuedAt       time.Time      `gorm:"not null" json:"issued_at"`
	SupersededAt   *time.Time     `json:"superseded_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (IssuedInvoice) TableName() string { return "issued_invoices" }
