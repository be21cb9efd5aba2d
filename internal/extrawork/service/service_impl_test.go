package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agencyops/fakturo/internal/events"
	extraworkdomain "github.com/agencyops/fakturo/internal/extrawork/domain"
)

func setupQueue(t *testing.T) (extraworkdomain.Queue, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&extraworkdomain.WorkItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
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

	queue := NewService(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Outbox: events.NewOutbox(db, node),
	})
	return queue, db
}

func insertWorkItem(t *testing.T, db *gorm.DB, id string, status extraworkdomain.WorkStatus, period string) {
	t.Helper()
	item := extraworkdomain.WorkItem{
		ID:            id,
		Description:   "Bannery pro kampaň",
		Amount:        7200,
		Currency:      "CZK",
		BillingPeriod: period,
		Status:        status,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("insert work item: %v", err)
	}
}

func TestGetReadyToInvoiceFiltersByPeriodAndStatus(t *testing.T) {
	queue, db := setupQueue(t)
	ctx := context.Background()

	insertWorkItem(t, db, "ew-1", extraworkdomain.WorkStatusReadyToInvoice, "2025-07")
	insertWorkItem(t, db, "ew-2", extraworkdomain.WorkStatusInProgress, "2025-07")
	insertWorkItem(t, db, "ew-3", extraworkdomain.WorkStatusReadyToInvoice, "2025-06")

	items, err := queue.GetReadyToInvoice(ctx, 2025, 7)
	if err != nil {
		t.Fatalf("get ready: %v", err)
	}
	if len(items) != 1 || items[0].ID != "ew-1" {
		t.Fatalf("items = %+v, want just ew-1", items)
	}

	if _, err := queue.GetReadyToInvoice(ctx, 2025, 13); !errors.Is(err, extraworkdomain.ErrInvalidBillingMonth) {
		t.Fatalf("err = %v, want invalid billing month", err)
	}
}

func TestTransitionFollowsLifecycle(t *testing.T) {
	queue, db := setupQueue(t)
	ctx := context.Background()

	insertWorkItem(t, db, "ew-1", extraworkdomain.WorkStatusPendingApproval, "2025-07")

	item, err := queue.Transition(ctx, "ew-1", extraworkdomain.WorkStatusInProgress)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if item.Status != extraworkdomain.WorkStatusInProgress {
		t.Fatalf("status = %q", item.Status)
	}

	if _, err := queue.Transition(ctx, "ew-1", extraworkdomain.WorkStatusReadyToInvoice); err != nil {
		t.Fatalf("second step: %v", err)
	}
	if err := queue.MarkInvoiced(ctx, "ew-1"); err != nil {
		t.Fatalf("mark invoiced: %v", err)
	}

	var reloaded extraworkdomain.WorkItem
	if err := db.First(&reloaded, "id = ?", "ew-1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != extraworkdomain.WorkStatusInvoiced {
		t.Fatalf("persisted status = %q", reloaded.Status)
	}

	var eventCount int64
	if err := db.Raw(`SELECT COUNT(*) FROM billing_events WHERE event_type = ?`, events.EventExtraWorkStatusChanged).Scan(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != 3 {
		t.Fatalf("events = %d, want 3", eventCount)
	}
}

func TestTransitionRejectsSkippingStates(t *testing.T) {
	queue, db := setupQueue(t)
	ctx := context.Background()

	insertWorkItem(t, db, "ew-1", extraworkdomain.WorkStatusPendingApproval, "2025-07")

	if _, err := queue.Transition(ctx, "ew-1", extraworkdomain.WorkStatusReadyToInvoice); !errors.Is(err, extraworkdomain.ErrIllegalTransition) {
		t.Fatalf("err = %v, want illegal transition", err)
	}
	if _, err := queue.Transition(ctx, "ew-1", extraworkdomain.WorkStatusPendingApproval); !errors.Is(err, extraworkdomain.ErrIllegalTransition) {
		t.Fatalf("self transition err = %v, want illegal transition", err)
	}
}

func TestTransitionInvoicedIsTerminal(t *testing.T) {
	queue, db := setupQueue(t)
	ctx := context.Background()

	insertWorkItem(t, db, "ew-1", extraworkdomain.WorkStatusInvoiced, "2025-07")

	if _, err := queue.Transition(ctx, "ew-1", extraworkdomain.WorkStatusInProgress); !errors.Is(err, extraworkdomain.ErrWorkItemInvoiced) {
		t.Fatalf("err = %v, want already invoiced", err)
	}
}

func TestTransitionValidation(t *testing.T) {
	queue, _ := setupQueue(t)
	ctx := context.Background()

	if _, err := queue.Transition(ctx, "ew-1", extraworkdomain.WorkStatus("shipped")); !errors.Is(err, extraworkdomain.ErrInvalidStatus) {
		t.Fatalf("err = %v, want invalid status", err)
	}
	if _, err := queue.Transition(ctx, "  ", extraworkdomain.WorkStatusInProgress); !errors.Is(err, extraworkdomain.ErrInvalidWorkItemID) {
		t.Fatalf("err = %v, want invalid id", err)
	}
	if _, err := queue.Transition(ctx, "ew-missing", extraworkdomain.WorkStatusInProgress); !errors.Is(err, extraworkdomain.ErrWorkItemNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
