package domain

import "time"

// Client is a directory record for an agency client.
type Client struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	BrandName string    `gorm:"type:text;not null;default:''" json:"brand_name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }

// DisplayName prefers the brand name when present.
func (c Client) DisplayName() string {
	if c.BrandName != "" {
		return c.BrandName
	}
	return c.Name
}
