// Package scheduler drains the billing_events outbox. Events are written
// transactionally with the state change that caused them; this loop
// publishes them to downstream consumers after the fact.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config Config `optional:"true"`
}

type outboxRow struct {
	ID        int64
	EventType string
	Payload   datatypes.JSONMap
	CreatedAt time.Time
}

// Dispatcher publishes unsent outbox rows in batches. It assumes a
// single running instance; rows are claimed inside one transaction.
type Dispatcher struct {
	db  *gorm.DB
	log *zap.Logger
	cfg Config
}

func NewDispatcher(p Params) *Dispatcher {
	return &Dispatcher{
		db:  p.DB,
		log: p.Log.Named("scheduler.outbox"),
		cfg: p.Config.withDefaults(),
	}
}

func (d *Dispatcher) RunForever(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := d.RunOnce(ctx); err != nil {
			d.log.Warn("outbox dispatch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce dispatches at most one batch and returns the number of events
// published.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	if d.db == nil {
		return 0, errors.New("dispatcher_unavailable")
	}

	dispatched := 0
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []outboxRow
		err := tx.Raw(
			`SELECT id, event_type, payload, created_at
			 FROM billing_events
			 WHERE published = false
			 ORDER BY created_at, id
			 LIMIT ?`,
			d.cfg.BatchSize,
		).Scan(&rows).Error
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		for _, row := range rows {
			// Delivery target is a log sink for now; a broker client
			// would slot in here without changing the claim semantics.
			d.log.Info("billing event published",
				zap.Int64("event_id", row.ID),
				zap.String("event_type", row.EventType),
				zap.Any("payload", map[string]any(row.Payload)),
			)
			if err := tx.Exec(`UPDATE billing_events SET published = true WHERE id = ?`, row.ID).Error; err != nil {
				return err
			}
			dispatched++
		}
		return nil
	})
	if err != nil {
		return dispatched, err
	}
	return dispatched, nil
}
