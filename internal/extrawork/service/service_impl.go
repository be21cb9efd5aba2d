package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/fakturo/internal/events"
	extraworkdomain "github.com/agencyops/fakturo/internal/extrawork/domain"
	"github.com/agencyops/fakturo/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Outbox *events.Outbox
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	outbox   *events.Outbox
	workRepo repository.Repository[extraworkdomain.WorkItem]
}

func NewService(p Params) extraworkdomain.Queue {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("extrawork.queue"),
		outbox:   p.Outbox,
		workRepo: repository.ProvideStore[extraworkdomain.WorkItem](p.DB),
	}
}

func (s *Service) GetReadyToInvoice(ctx context.Context, year, month int) ([]extraworkdomain.WorkItem, error) {
	if year <= 0 || month < 1 || month > 12 {
		return nil, extraworkdomain.ErrInvalidBillingMonth
	}
	return s.workRepo.Find(ctx,
		"status = ? AND billing_period = ?",
		extraworkdomain.WorkStatusReadyToInvoice,
		extraworkdomain.BillingPeriodKey(year, month),
	)
}

func (s *Service) GetByID(ctx context.Context, id string) (*extraworkdomain.WorkItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, extraworkdomain.ErrInvalidWorkItemID
	}
	return s.workRepo.First(ctx, "id = ?", id)
}

func (s *Service) Transition(ctx context.Context, id string, to extraworkdomain.WorkStatus) (*extraworkdomain.WorkItem, error) {
	switch to {
	case extraworkdomain.WorkStatusPendingApproval,
		extraworkdomain.WorkStatusInProgress,
		extraworkdomain.WorkStatusReadyToInvoice,
		extraworkdomain.WorkStatusInvoiced:
	default:
		return nil, extraworkdomain.ErrInvalidStatus
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, extraworkdomain.ErrWorkItemNotFound
	}
	if item.Status == extraworkdomain.WorkStatusInvoiced {
		return nil, extraworkdomain.ErrWorkItemInvoiced
	}
	if !extraworkdomain.CanTransition(item.Status, to) {
		return nil, extraworkdomain.ErrIllegalTransition
	}

	from := item.Status
	item.Status = to
	item.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventExtraWorkStatusChanged,
			Payload: events.ExtraWorkStatusPayload{
				WorkItemID: item.ID,
				From:       string(from),
				To:         string(to),
			}.ToMap(),
			DedupeKey: "extra_work:" + item.ID + ":" + string(to),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("extra work transitioned",
		zap.String("work_item_id", item.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return item, nil
}

func (s *Service) MarkInvoiced(ctx context.Context, id string) error {
	_, err := s.Transition(ctx, id, extraworkdomain.WorkStatusInvoiced)
	return err
}
