package service

import (
	"context"
	"errors"
	"strings"
	"time"

	engagementdomain "github.com/agencyops/fakturo/internal/engagement/domain"
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
	db          *gorm.DB
	log         *zap.Logger
	serviceRepo repository.Repository[engagementdomain.EngagementService]
}

func NewService(p Params) engagementdomain.Store {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("engagement.store"),
		serviceRepo: repository.ProvideStore[engagementdomain.EngagementService](p.DB),
	}
}

func (s *Service) ListActiveRetainers(ctx context.Context) ([]engagementdomain.Engagement, error) {
	var rows []engagementdomain.Engagement
	err := s.db.WithContext(ctx).
		Where("status = ? AND type = ?",
			engagementdomain.EngagementStatusActive,
			engagementdomain.EngagementTypeRetainer,
		).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*engagementdomain.Engagement, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, engagementdomain.ErrInvalidEngagementID
	}

	var row engagementdomain.Engagement
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, engagementdomain.ErrEngagementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Service) ListMonthlyServices(ctx context.Context, engagementID string) ([]engagementdomain.EngagementService, error) {
	engagementID = strings.TrimSpace(engagementID)
	if engagementID == "" {
		return nil, engagementdomain.ErrInvalidEngagementID
	}
	return s.serviceRepo.Find(ctx,
		"engagement_id = ? AND is_active = ? AND billing_type = ?",
		engagementID, true, engagementdomain.BillingTypeMonthly,
	)
}

func (s *Service) ListUnbilledOneOffServices(ctx context.Context) ([]engagementdomain.EngagementService, error) {
	return s.serviceRepo.Find(ctx,
		"is_active = ? AND billing_type = ? AND invoicing_status = ?",
		true, engagementdomain.BillingTypeOneOff, engagementdomain.InvoicingStatusPending,
	)
}

func (s *Service) MarkServiceInvoiced(ctx context.Context, serviceID string) error {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return engagementdomain.ErrInvalidServiceID
	}
	return s.db.WithContext(ctx).
		Model(&engagementdomain.EngagementService{}).
		Where("id = ?", serviceID).
		Updates(map[string]any{
			"invoicing_status": engagementdomain.InvoicingStatusInvoiced,
			"updated_at":       time.Now().UTC(),
		}).Error
}
