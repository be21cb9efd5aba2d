package domain

import (
	"context"
	"errors"
)

// Store is the read side the invoice assembler consumes, plus the
// invoicing-status writes applied at issuance time.
type Store interface {
	// ListActiveRetainers returns active retainer engagements only.
	ListActiveRetainers(ctx context.Context) ([]Engagement, error)
	// GetByID returns ErrEngagementNotFound for an unknown id.
	GetByID(ctx context.Context, id string) (*Engagement, error)
	// ListMonthlyServices returns active monthly services on the engagement.
	ListMonthlyServices(ctx context.Context, engagementID string) ([]EngagementService, error)
	// ListUnbilledOneOffServices returns active one_off services still pending.
	ListUnbilledOneOffServices(ctx context.Context) ([]EngagementService, error)
	// MarkServiceInvoiced flips a one-off service to invoiced. Idempotent.
	MarkServiceInvoiced(ctx context.Context, serviceID string) error
}

var (
	ErrInvalidEngagementID = errors.New("invalid_engagement_id")
	ErrInvalidServiceID    = errors.New("invalid_service_id")
	ErrEngagementNotFound  = errors.New("engagement_not_found")
)
