package service

import (
	"context"
	"strings"

	creditpackagedomain "github.com/agencyops/fakturo/internal/creditpackage/domain"
	"github.com/agencyops/fakturo/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	log         *zap.Logger
	summaryRepo repository.Repository[creditpackagedomain.PackageSummary]
}

func NewService(p Params) creditpackagedomain.Summaries {
	return &Service{
		log:         p.Log.Named("creditpackage.summaries"),
		summaryRepo: repository.ProvideStore[creditpackagedomain.PackageSummary](p.DB),
	}
}

func (s *Service) PackageInvoiceAmount(ctx context.Context, clientID string, year, month int) (*creditpackagedomain.PackageSummary, error) {
	if year <= 0 || month < 1 || month > 12 {
		return nil, creditpackagedomain.ErrInvalidPeriod
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, nil
	}

	summary, err := s.summaryRepo.First(ctx,
		"client_id = ? AND year = ? AND month = ?",
		clientID, year, month,
	)
	if err != nil {
		return nil, err
	}
	if summary == nil || !summary.Billable() {
		return nil, nil
	}
	return summary, nil
}

func (s *Service) ListBillable(ctx context.Context, year, month int) (map[string]creditpackagedomain.PackageSummary, error) {
	if year <= 0 || month < 1 || month > 12 {
		return nil, creditpackagedomain.ErrInvalidPeriod
	}

	rows, err := s.summaryRepo.Find(ctx,
		"year = ? AND month = ? AND invoice_amount > 0",
		year, month,
	)
	if err != nil {
		return nil, err
	}

	byClient := make(map[string]creditpackagedomain.PackageSummary, len(rows))
	for _, row := range rows {
		byClient[row.ClientID] = row
	}
	return byClient, nil
}
