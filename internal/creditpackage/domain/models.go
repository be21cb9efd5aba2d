package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PackageSummary is the precomputed Creative Boost billing summary for
// one client and month, materialized by the credit-accounting subsystem.
type PackageSummary struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID      string       `gorm:"not null;uniqueIndex:ux_credit_package_period,priority:1" json:"client_id"`
	Year          int          `gorm:"not null;uniqueIndex:ux_credit_package_period,priority:2" json:"year"`
	Month         int          `gorm:"not null;uniqueIndex:ux_credit_package_period,priority:3" json:"month"`
	MaxCredits    int          `gorm:"not null;default:0" json:"max_credits"`
	UsedCredits   int          `gorm:"not null;default:0" json:"used_credits"`
	InvoiceAmount int64        `gorm:"not null;default:0" json:"invoice_amount"`
	Currency      string       `gorm:"type:text;not null;default:'CZK'" json:"currency"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PackageSummary) TableName() string { return "credit_package_summaries" }

// Billable reports whether the summary should appear on an invoice.
func (p PackageSummary) Billable() bool { return p.InvoiceAmount > 0 }
