// Package provider holds the invoicing-provider boundary. The simulated
// implementation stands in for a real invoicing API: it assigns
// year-scoped sequential numbers and dereferenceable URLs.
package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agencyops/fakturo/internal/config"
	issuancedomain "github.com/agencyops/fakturo/internal/issuance/domain"
	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Cfg   config.Config
	GenID *snowflake.Node
}

// Simulated issues invoices against an in-process sequence per year.
type Simulated struct {
	log   *zap.Logger
	genID *snowflake.Node
	delay time.Duration

	mu     sync.Mutex
	byYear map[int]int
}

func NewSimulated(p Params) issuancedomain.Provider {
	return &Simulated{
		log:    p.Log.Named("issuance.provider"),
		genID:  p.GenID,
		delay:  p.Cfg.IssueDelay,
		byYear: make(map[int]int),
	}
}

// Issue simulates the provider round trip, including its latency.
func (s *Simulated) Issue(ctx context.Context, invoice invoicedomain.Invoice) (issuancedomain.Receipt, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return issuancedomain.Receipt{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	s.mu.Lock()
	s.byYear[invoice.Year]++
	sequence := s.byYear[invoice.Year]
	s.mu.Unlock()

	externalID := s.genID.Generate().String()
	receipt := issuancedomain.Receipt{
		InvoiceNumber: fmt.Sprintf("%04d-%04d", invoice.Year, sequence),
		ExternalID:    externalID,
		ExternalURL:   fmt.Sprintf("https://invoicing.example.com/invoices/%s", externalID),
	}

	s.log.Debug("invoice issued at provider",
		zap.String("invoice_id", invoice.ID),
		zap.String("number", receipt.InvoiceNumber),
	)
	return receipt, nil
}
