package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/agencyops/fakturo/internal/clock"
	"github.com/agencyops/fakturo/internal/config"
	issuancedomain "github.com/agencyops/fakturo/internal/issuance/domain"
	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
	"github.com/agencyops/fakturo/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
	GenID *snowflake.Node
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	prefix     string
	issuedRepo repository.Repository[issuancedomain.IssuedInvoice]
}

func NewService(p Params) issuancedomain.Ledger {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("issuance.ledger"),
		clock:      p.Clock,
		genID:      p.GenID,
		prefix:     p.Cfg.InvoiceNumberPrefix,
		issuedRepo: repository.ProvideStore[issuancedomain.IssuedInvoice](p.DB),
	}
}

func (s *Service) Add(ctx context.Context, invoice invoicedomain.Invoice, receipt issuancedomain.Receipt) (*issuancedomain.IssuedInvoice, error) {
	internalNumber, err := s.NextInvoiceNumber(ctx, invoice.Year)
	if err != nil {
		return nil, err
	}

	itemsJSON, err := json.Marshal(invoice.Items)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	record := issuancedomain.IssuedInvoice{
		ID:             s.genID.Generate(),
		InvoiceID:      invoice.ID,
		EngagementID:   invoice.EngagementID,
		ClientID:       invoice.ClientID,
		Year:           invoice.Year,
		Month:          invoice.Month,
		InternalNumber: internalNumber,
		ExternalNumber: receipt.InvoiceNumber,
		ExternalID:     receipt.ExternalID,
		ExternalURL:    receipt.ExternalURL,
		TotalAmount:    invoice.TotalAmount,
		Currency:       invoice.Currency,
		LineItems:      itemsJSON,
		IssuedAt:       now,
		CreatedAt:      now,
	}

	if err := s.issuedRepo.Create(ctx, &record); err != nil {
		return nil, err
	}

	s.log.Info("issued invoice recorded",
		zap.String("invoice_id", invoice.ID),
		zap.String("internal_number", internalNumber),
		zap.String("external_number", receipt.InvoiceNumber),
		zap.Int64("total_amount", invoice.TotalAmount),
	)
	return &record, nil
}

func (s *Service) ListByYear(ctx context.Context, year int) ([]issuancedomain.IssuedInvoice, error) {
	if year <= 0 {
		return nil, issuancedomain.ErrInvalidYear
	}
	var rows []issuancedomain.IssuedInvoice
	err := s.db.WithContext(ctx).
		Where("year = ?", year).
		Order("issued_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) NextInvoiceNumber(ctx context.Context, year int) (string, error) {
	if year <= 0 {
		return "", issuancedomain.ErrInvalidYear
	}

	var numbers []string
	err := s.db.WithContext(ctx).
		Model(&issuancedomain.IssuedInvoice{}).
		Where("year = ?", year).
		Pluck("internal_number", &numbers).Error
	if err != nil {
		return "", err
	}

	pattern := regexp.MustCompile(fmt.Sprintf(`^%s-%d-(\d{3})$`, regexp.QuoteMeta(s.prefix), year))
	max := 0
	for _, number := range numbers {
		match := pattern.FindStringSubmatch(number)
		if match == nil {
			continue
		}
		value, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if value > max {
			max = value
		}
	}

	return fmt.Sprintf("%s-%d-%03d", s.prefix, year, max+1), nil
}

func (s *Service) Supersede(ctx context.Context, invoiceID string) error {
	var latest issuancedomain.IssuedInvoice
	err := s.db.WithContext(ctx).
		Where("invoice_id = ? AND superseded_at IS NULL", invoiceID).
		Order("issued_at DESC, id DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return issuancedomain.ErrLedgerEntryMissing
	}
	if err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&issuancedomain.IssuedInvoice{}).
		Where("id = ?", latest.ID).
		Update("superseded_at", now).Error
}
