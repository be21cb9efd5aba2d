package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	clientdomain "github.com/agencyops/fakturo/internal/client/domain"
	creditdomain "github.com/agencyops/fakturo/internal/creditpackage/domain"
	engagementdomain "github.com/agencyops/fakturo/internal/engagement/domain"
	extraworkdomain "github.com/agencyops/fakturo/internal/extrawork/domain"
)

// EnsureDemoData loads a small agency portfolio for local development.
// It is idempotent and must never run in production.
func EnsureDemoData(db *gorm.DB, now time.Time) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	year, month := now.Year(), int(now.Month())

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clients := []clientdomain.Client{
			{ID: "cl-1", Name: "Novak Retail s.r.o.", BrandName: "NovaShop"},
			{ID: "cl-2", Name: "Horizont Media a.s."},
			{ID: "cl-3", Name: "Zelena Zahrada s.r.o.", BrandName: "GreenGarden"},
		}
		for _, c := range clients {
			if err := firstOrCreate(tx, &clientdomain.Client{}, &c, "id = ?", c.ID); err != nil {
				return err
			}
		}

		midMonth := time.Date(year, time.Month(month), 10, 0, 0, 0, 0, time.UTC)
		engagements := []engagementdomain.Engagement{
			{
				ID:         "eng-1",
				ClientID:   "cl-1",
				Type:       engagementdomain.EngagementTypeRetainer,
				Status:     engagementdomain.EngagementStatusActive,
				MonthlyFee: 50000,
				Currency:   "CZK",
				StartDate:  time.Date(year-1, time.January, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				ID:         "eng-2",
				ClientID:   "cl-2",
				Type:       engagementdomain.EngagementTypeRetainer,
				Status:     engagementdomain.EngagementStatusActive,
				MonthlyFee: 80000,
				Currency:   "CZK",
				StartDate:  midMonth,
			},
			{
				ID:         "eng-3",
				ClientID:   "cl-3",
				Type:       engagementdomain.EngagementTypeRetainer,
				Status:     engagementdomain.EngagementStatusActive,
				MonthlyFee: 30000,
				Currency:   "CZK",
				StartDate:  time.Date(year-1, time.June, 3, 0, 0, 0, 0, time.UTC),
			},
		}
		for _, e := range engagements {
			if err := firstOrCreate(tx, &engagementdomain.Engagement{}, &e, "id = ?", e.ID); err != nil {
				return err
			}
		}

		services := []engagementdomain.EngagementService{
			{
				ID:           "svc-1",
				EngagementID: "eng-1",
				Name:         "Správa PPC kampaní",
				Price:        30000,
				Currency:     "CZK",
				BillingType:  engagementdomain.BillingTypeMonthly,
				IsActive:     true,
			},
			{
				ID:           "svc-2",
				EngagementID: "eng-1",
				Name:         "Social media management",
				Price:        20000,
				Currency:     "CZK",
				BillingType:  engagementdomain.BillingTypeMonthly,
				IsActive:     true,
			},
			{
				ID:              "svc-3",
				EngagementID:    "eng-1",
				Name:            "Creative Boost",
				Currency:        "CZK",
				BillingType:     engagementdomain.BillingTypeMonthly,
				IsActive:        true,
				IsCreditPackage: true,
				MaxCredits:      10,
				PricePerCredit:  1500,
			},
			{
				ID:           "svc-4",
				EngagementID: "eng-2",
				Name:         "Výkonnostní marketing",
				Price:        80000,
				Currency:     "CZK",
				BillingType:  engagementdomain.BillingTypeMonthly,
				IsActive:     true,
			},
			{
				ID:              "svc-5",
				EngagementID:    "eng-3",
				Name:            "Redesign webu",
				Price:           45000,
				Currency:        "CZK",
				BillingType:     engagementdomain.BillingTypeOneOff,
				IsActive:        true,
				InvoicingStatus: engagementdomain.InvoicingStatusPending,
			},
		}
		for _, s := range services {
			if err := firstOrCreate(tx, &engagementdomain.EngagementService{}, &s, "id = ?", s.ID); err != nil {
				return err
			}
		}

		engOne := "eng-1"
		hours := 6.0
		rate := int64(1200)
		work := extraworkdomain.WorkItem{
			ID:            "ew-1",
			EngagementID:  &engOne,
			Description:   "Bannery pro letní kampaň",
			Amount:        7200,
			Hours:         &hours,
			HourlyRate:    &rate,
			Currency:      "CZK",
			BillingPeriod: extraworkdomain.BillingPeriodKey(year, month),
			Status:        extraworkdomain.WorkStatusReadyToInvoice,
		}
		if err := firstOrCreate(tx, &extraworkdomain.WorkItem{}, &work, "id = ?", work.ID); err != nil {
			return err
		}

		summary := creditdomain.PackageSummary{
			ID:            node.Generate(),
			ClientID:      "cl-1",
			Year:          year,
			Month:         month,
			MaxCredits:    10,
			UsedCredits:   7,
			InvoiceAmount: 10500,
			Currency:      "CZK",
		}
		return firstOrCreate(tx, &creditdomain.PackageSummary{}, &summary,
			"client_id = ? AND year = ? AND month = ?", summary.ClientID, summary.Year, summary.Month)
	})
}

func firstOrCreate(tx *gorm.DB, probe any, record any, query string, args ...any) error {
	err := tx.Where(query, args...).First(probe).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(record).Error
}
