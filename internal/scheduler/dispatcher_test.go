package scheduler

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agencyops/fakturo/internal/events"
)

func setupDispatcher(t *testing.T) (*Dispatcher, *events.Outbox, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec(`CREATE TABLE billing_events (
		id INTEGER PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload TEXT,
		dedupe_key TEXT UNIQUE,
		published BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create billing_events: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	dispatcher := NewDispatcher(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Config: Config{BatchSize: 10},
	})
	return dispatcher, events.NewOutbox(db, node), db
}

func TestRunOnceDispatchesUnpublishedEvents(t *testing.T) {
	dispatcher, outbox, db := setupDispatcher(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := outbox.Publish(ctx, events.Event{
			Type:      events.EventInvoiceIssued,
			Payload:   map[string]any{"invoice_id": "inv-" + key},
			DedupeKey: "invoice_issued:" + key,
		}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	dispatched, err := dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if dispatched != 3 {
		t.Fatalf("dispatched = %d, want 3", dispatched)
	}

	var unpublished int64
	if err := db.Raw(`SELECT COUNT(*) FROM billing_events WHERE published = false`).Scan(&unpublished).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if unpublished != 0 {
		t.Fatalf("unpublished = %d, want 0", unpublished)
	}

	// A second run finds nothing.
	dispatched, err = dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if dispatched != 0 {
		t.Fatalf("second run dispatched = %d, want 0", dispatched)
	}
}

func TestOutboxDeduplicatesByKey(t *testing.T) {
	dispatcher, outbox, _ := setupDispatcher(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := outbox.Publish(ctx, events.Event{
			Type:      events.EventInvoiceIssued,
			Payload:   map[string]any{"invoice_id": "inv-1"},
			DedupeKey: "invoice_issued:inv-1",
		}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	dispatched, err := dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if dispatched != 1 {
		t.Fatalf("dispatched = %d, want 1 after dedupe", dispatched)
	}
}
