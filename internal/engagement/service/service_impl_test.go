package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	engagementdomain "github.com/agencyops/fakturo/internal/engagement/domain"
)

func setupStore(t *testing.T) (engagementdomain.Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&engagementdomain.Engagement{}, &engagementdomain.EngagementService{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := NewService(Params{DB: db, Log: zap.NewNop()})
	return store, db
}

func TestGetByIDReturnsContract(t *testing.T) {
	store, db := setupStore(t)

	contract := engagementdomain.Engagement{
		ID:         "eng-1",
		ClientID:   "cl-1",
		Type:       engagementdomain.EngagementTypeRetainer,
		Status:     engagementdomain.EngagementStatusActive,
		MonthlyFee: 50000,
		Currency:   "CZK",
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&contract).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := store.GetByID(context.Background(), "eng-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MonthlyFee != 50000 {
		t.Fatalf("monthly fee = %d, want 50000", got.MonthlyFee)
	}
}

func TestGetByIDUnknownContract(t *testing.T) {
	store, _ := setupStore(t)

	if _, err := store.GetByID(context.Background(), "eng-missing"); !errors.Is(err, engagementdomain.ErrEngagementNotFound) {
		t.Fatalf("err = %v, want engagement_not_found", err)
	}
	if _, err := store.GetByID(context.Background(), "  "); !errors.Is(err, engagementdomain.ErrInvalidEngagementID) {
		t.Fatalf("err = %v, want invalid_engagement_id", err)
	}
}

func TestMarkServiceInvoicedRemovesFromUnbilled(t *testing.T) {
	store, db := setupStore(t)

	svc := engagementdomain.EngagementService{
		ID:              "svc-5",
		EngagementID:    "eng-1",
		Name:            "Úvodní audit",
		BillingType:     engagementdomain.BillingTypeOneOff,
		InvoicingStatus: engagementdomain.InvoicingStatusPending,
		Price:           12000,
		IsActive:        true,
	}
	if err := db.Create(&svc).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	pending, err := store.ListUnbilledOneOffServices(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	if err := store.MarkServiceInvoiced(context.Background(), "svc-5"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	pending, err = store.ListUnbilledOneOffServices(context.Background())
	if err != nil {
		t.Fatalf("list after mark: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after mark = %d, want 0", len(pending))
	}
}
