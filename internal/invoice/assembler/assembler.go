package assembler

import (
	"context"
	"fmt"
	"time"

	clientdomain "github.com/agencyops/fakturo/internal/client/domain"
	"github.com/agencyops/fakturo/internal/clock"
	creditpackagedomain "github.com/agencyops/fakturo/internal/creditpackage/domain"
	engagementdomain "github.com/agencyops/fakturo/internal/engagement/domain"
	extraworkdomain "github.com/agencyops/fakturo/internal/extrawork/domain"
	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
	"github.com/agencyops/fakturo/internal/observability/metrics"
	"github.com/agencyops/fakturo/internal/proration"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log            *zap.Logger
	Clock          clock.Clock
	Engagements    engagementdomain.Store
	ExtraWork      extraworkdomain.Queue
	CreditPackages creditpackagedomain.Summaries
	Clients        clientdomain.Directory
	Metrics        *metrics.BillingMetrics `optional:"true"`
}

// Assembler derives the draft invoice set for a billing month from all
// revenue sources. Generation is pure recomputation: ids are
// deterministic and no source data is mutated.
type Assembler struct {
	log            *zap.Logger
	clock          clock.Clock
	engagements    engagementdomain.Store
	extraWork      extraworkdomain.Queue
	creditPackages creditpackagedomain.Summaries
	clients        clientdomain.Directory
	metrics        *metrics.BillingMetrics
}

func NewAssembler(p Params) *Assembler {
	return &Assembler{
		log:            p.Log.Named("invoice.assembler"),
		clock:          p.Clock,
		engagements:    p.Engagements,
		extraWork:      p.ExtraWork,
		creditPackages: p.CreditPackages,
		clients:        p.Clients,
		metrics:        p.Metrics,
	}
}

// GenerateInvoices builds one draft invoice per active retainer contract
// overlapping the period. Contracts with no billable content produce no
// invoice at all.
func (a *Assembler) GenerateInvoices(ctx context.Context, year, month int) ([]invoicedomain.Invoice, error) {
	if year <= 0 || month < 1 || month > 12 {
		return nil, invoicedomain.ErrInvalidPeriod
	}

	periodStart, periodEnd, totalDays := proration.MonthBounds(year, time.Month(month))

	contracts, err := a.engagements.ListActiveRetainers(ctx)
	if err != nil {
		return nil, err
	}

	extraWorkByContract, err := a.loadExtraWork(ctx, year, month)
	if err != nil {
		return nil, err
	}

	oneOffByContract, err := a.loadOneOffs(ctx)
	if err != nil {
		return nil, err
	}

	// Credit packages bill once per client per month: the first contract
	// that claims a client's summary removes it from the pool.
	creditPool, err := a.creditPackages.ListBillable(ctx, year, month)
	if err != nil {
		return nil, err
	}

	now := a.clock.Now().UTC()
	invoices := make([]invoicedomain.Invoice, 0, len(contracts))

	for _, contract := range contracts {
		if !contract.Overlaps(periodStart, periodEnd) {
			continue
		}

		window := proration.Compute(periodStart, periodEnd, totalDays, contract.StartDate, contract.EndDate)

		inv := invoicedomain.Invoice{
			ID:           invoicedomain.InvoiceID(contract.ID, year, month),
			EngagementID: contract.ID,
			ClientID:     contract.ClientID,
			ClientName:   a.clientName(ctx, contract.ClientID),
			Year:         year,
			Month:        month,
			Currency:     contract.Currency,
			Status:       invoicedomain.InvoiceStatusDraft,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		services, err := a.engagements.ListMonthlyServices(ctx, contract.ID)
		if err != nil {
			return nil, err
		}
		for _, svc := range services {
			if svc.IsCreditPackage {
				continue
			}
			inv.Items = append(inv.Items, serviceLineItem(inv.ID, svc, window, year, month))
		}

		if summary, ok := creditPool[contract.ClientID]; ok {
			inv.Items = append(inv.Items, creditPackageLineItem(inv.ID, summary, year, month))
			delete(creditPool, contract.ClientID)
		}

		for _, work := range extraWorkByContract[contract.ID] {
			inv.Items = append(inv.Items, extraWorkLineItem(inv.ID, work, year, month))
		}

		for _, svc := range oneOffByContract[contract.ID] {
			inv.Items = append(inv.Items, oneOffLineItem(inv.ID, svc, year, month))
		}

		if len(inv.Items) == 0 {
			continue
		}

		inv.RecomputeTotals()
		invoices = append(invoices, inv)
	}

	a.metrics.ObserveGenerated(len(invoices))
	a.log.Info("invoices generated",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("count", len(invoices)),
	)
	return invoices, nil
}

func (a *Assembler) loadExtraWork(ctx context.Context, year, month int) (map[string][]extraworkdomain.WorkItem, error) {
	items, err := a.extraWork.GetReadyToInvoice(ctx, year, month)
	if err != nil {
		return nil, err
	}
	byContract := make(map[string][]extraworkdomain.WorkItem)
	for _, item := range items {
		if item.EngagementID == nil || *item.EngagementID == "" {
			continue
		}
		byContract[*item.EngagementID] = append(byContract[*item.EngagementID], item)
	}
	return byContract, nil
}

func (a *Assembler) loadOneOffs(ctx context.Context) (map[string][]engagementdomain.EngagementService, error) {
	services, err := a.engagements.ListUnbilledOneOffServices(ctx)
	if err != nil {
		return nil, err
	}
	byContract := make(map[string][]engagementdomain.EngagementService)
	for _, svc := range services {
		byContract[svc.EngagementID] = append(byContract[svc.EngagementID], svc)
	}
	return byContract, nil
}

// clientName resolves the display name, falling back to a placeholder on
// dangling references instead of failing the run.
func (a *Assembler) clientName(ctx context.Context, clientID string) string {
	record, err := a.clients.GetByID(ctx, clientID)
	if err != nil || record == nil {
		if err != nil {
			a.log.Warn("client lookup failed", zap.String("client_id", clientID), zap.Error(err))
		}
		return "—"
	}
	return record.DisplayName()
}

func serviceLineItem(invoiceID string, svc engagementdomain.EngagementService, window proration.Result, year, month int) invoicedomain.LineItem {
	item := invoicedomain.LineItem{
		ID:          invoicedomain.ServiceLineItemID(svc.ID, year, month),
		InvoiceID:   invoiceID,
		Source:      invoicedomain.SourceEngagement,
		SourceRef:   svc.ID,
		Description: fmt.Sprintf("%s – %s", svc.Name, invoicedomain.MonthLabel(year, month)),
		UnitPrice:   window.Amount(svc.Price),
		Quantity:    1,
		Currency:    svc.Currency,
	}
	if window.IsProrated {
		activeDays := window.ActiveDays
		totalDays := window.TotalDays
		item.ProratedDays = &activeDays
		item.TotalDaysInMonth = &totalDays
	}
	item.Recompute()
	return item
}

func creditPackageLineItem(invoiceID string, summary creditpackagedomain.PackageSummary, year, month int) invoicedomain.LineItem {
	item := invoicedomain.LineItem{
		ID:          fmt.Sprintf("li-cb-%s-%d-%d", summary.ClientID, year, month),
		InvoiceID:   invoiceID,
		Source:      invoicedomain.SourceCreativeBoost,
		SourceRef:   summary.ClientID,
		Description: fmt.Sprintf("Creative Boost – %s", invoicedomain.MonthLabel(year, month)),
		UnitPrice:   summary.InvoiceAmount,
		Quantity:    1,
		Currency:    summary.Currency,
		Note:        fmt.Sprintf("kredity: %d/%d", summary.UsedCredits, summary.MaxCredits),
	}
	item.Recompute()
	return item
}

func extraWorkLineItem(invoiceID string, work extraworkdomain.WorkItem, year, month int) invoicedomain.LineItem {
	item := invoicedomain.LineItem{
		ID:          invoicedomain.ExtraWorkLineItemID(work.ID, year, month),
		InvoiceID:   invoiceID,
		Source:      invoicedomain.SourceExtraWork,
		SourceRef:   work.ID,
		Description: work.Description,
		UnitPrice:   work.Amount,
		Quantity:    1,
		Currency:    work.Currency,
		Hours:       work.Hours,
		HourlyRate:  work.HourlyRate,
	}
	item.Recompute()
	return item
}

func oneOffLineItem(invoiceID string, svc engagementdomain.EngagementService, year, month int) invoicedomain.LineItem {
	item := invoicedomain.LineItem{
		ID:          invoicedomain.OneOffLineItemID(svc.ID, year, month),
		InvoiceID:   invoiceID,
		Source:      invoicedomain.SourceOneOff,
		SourceRef:   svc.ID,
		Description: svc.Name,
		UnitPrice:   svc.Price,
		Quantity:    1,
		Currency:    svc.Currency,
	}
	item.Recompute()
	return item
}
