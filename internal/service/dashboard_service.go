package service

import (
	"context"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/billing"
	"printscrap/internal/dto"
	"printscrap/internal/infra"
	"printscrap/internal/model"
	"printscrap/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	recentEntryLimit = 5
	adminSummaryKey  = "admin-summary"
)

// DashboardService builds the landing-page summaries. The admin summary spans
// every tenant and is cached for the configured TTL.
type DashboardService interface {
	Client(ctx context.Context, userID uint) (*dto.ClientDashboardResponse, error)
	Admin(ctx context.Context) (*dto.AdminDashboardResponse, error)
}

type dashboardService struct {
	ledger      LedgerService
	entries     repository.ScrapEntryRepository
	sales       repository.SaleRepository
	categories  repository.CategoryRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	subs        repository.SubscriptionRepository
	requests    repository.PlanRequestRepository
	subscriber  SubscriptionService
	cache       *infra.Cache
	loc         *time.Location
	now         func() time.Time
}

// DashboardDeps groups the repositories the dashboards read from.
type DashboardDeps struct {
	Ledger        LedgerService
	Entries       repository.ScrapEntryRepository
	Sales         repository.SaleRepository
	Categories    repository.CategoryRepository
	Departments   repository.DepartmentRepository
	Users         repository.UserRepository
	Subscriptions repository.SubscriptionRepository
	Requests      repository.PlanRequestRepository
	Subscriber    SubscriptionService
}

func NewDashboardService(deps DashboardDeps, cache *infra.Cache, loc *time.Location) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{
		ledger:      deps.Ledger,
		entries:     deps.Entries,
		sales:       deps.Sales,
		categories:  deps.Categories,
		departments: deps.Departments,
		users:       deps.Users,
		subs:        deps.Subscriptions,
		requests:    deps.Requests,
		subscriber:  deps.Subscriber,
		cache:       cache,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *dashboardService) Client(ctx context.Context, userID uint) (*dto.ClientDashboardResponse, error) {
	now := s.now()
	monthStart, monthEnd := monthBounds(now, s.loc)
	dayStart, dayEnd := dayBounds(now, s.loc)

	out := &dto.ClientDashboardResponse{
		StockValue:      decimal.Zero,
		StockByCategory: []dto.CategoryStockSummary{},
	}

	rows, err := s.ledger.ListForTenant(ctx, userID)
	if err != nil {
		return nil, err
	}
	byCat := map[uint]int{}
	for _, r := range rows {
		out.StockValue = out.StockValue.Add(r.TotalValue)
		i, ok := byCat[r.CategoryID]
		if !ok {
			i = len(out.StockByCategory)
			byCat[r.CategoryID] = i
			out.StockByCategory = append(out.StockByCategory, dto.CategoryStockSummary{
				CategoryID:     r.CategoryID,
				CategoryName:   r.CategoryName,
				AvailableStock: decimal.Zero,
				TotalValue:     decimal.Zero,
			})
		}
		sum := &out.StockByCategory[i]
		sum.AvailableStock = sum.AvailableStock.Add(r.AvailableStock)
		sum.TotalValue = sum.TotalValue.Add(r.TotalValue)
	}

	if out.MonthInflowValue, out.MonthEntryCount, err = s.entries.SumBetween(ctx, userID, monthStart, monthEnd); err != nil {
		return nil, apierror.Storage("sum scrap entries", err)
	}
	if out.MonthSalesAmount, out.MonthSaleCount, err = s.sales.SumBetween(ctx, userID, monthStart, monthEnd); err != nil {
		return nil, apierror.Storage("sum sales", err)
	}
	if out.TodaySalesAmount, _, err = s.sales.SumBetween(ctx, userID, dayStart, dayEnd); err != nil {
		return nil, apierror.Storage("sum sales", err)
	}
	if out.CategoryCount, err = s.categories.Count(ctx, userID); err != nil {
		return nil, apierror.Storage("count categories", err)
	}
	if out.DepartmentCount, err = s.departments.Count(ctx, userID); err != nil {
		return nil, apierror.Storage("count departments", err)
	}

	recent, _, err := s.entries.List(ctx, userID, repository.ScrapEntryQuery{Limit: recentEntryLimit})
	if err != nil {
		return nil, apierror.Storage("list recent entries", err)
	}
	out.RecentEntries = make([]dto.ScrapEntryResponse, 0, len(recent))
	for i := range recent {
		out.RecentEntries = append(out.RecentEntries, scrapEntryToResponse(&recent[i]))
	}

	if sub, err := s.subscriber.Current(ctx, userID); err == nil {
		out.Subscription = sub
	}
	return out, nil
}

func (s *dashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	var cached dto.AdminDashboardResponse
	if hit, err := s.cache.GetJSON(ctx, adminSummaryKey, &cached); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache read failed")
	} else if hit {
		return &cached, nil
	}

	out := &dto.AdminDashboardResponse{MonthlyRecurringValue: decimal.Zero}
	var err error
	if out.TotalTenants, out.ActiveTenants, err = s.users.CountClients(ctx); err != nil {
		return nil, apierror.Storage("count tenants", err)
	}
	if out.PendingPlanRequests, err = s.requests.CountPending(ctx); err != nil {
		return nil, apierror.Storage("count plan requests", err)
	}

	subs, err := s.subs.ListAll(ctx)
	if err != nil {
		return nil, apierror.Storage("list subscriptions", err)
	}
	now := s.now()
	for _, sub := range subs {
		switch billing.EffectiveStatus(now, sub.Status, sub.EndDate) {
		case model.SubscriptionTrial:
			out.TrialSubscriptions++
		case model.SubscriptionActive:
			out.ActiveSubscriptions++
			if sub.Plan != nil {
				out.MonthlyRecurringValue = out.MonthlyRecurringValue.Add(monthlyValue(sub.Plan))
			}
		case model.SubscriptionExpired:
			out.ExpiredSubscriptions++
		}
	}
	out.MonthlyRecurringValue = out.MonthlyRecurringValue.Round(2)
	out.GeneratedAt = formatTime(now)

	if err := s.cache.SetJSON(ctx, adminSummaryKey, out); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache write failed")
	}
	return out, nil
}

// monthlyValue normalises a plan's price to a 30-day month.
func monthlyValue(p *model.Plan) decimal.Decimal {
	switch p.BillingCycle {
	case model.CycleDaily:
		return p.Price.Mul(decimal.NewFromInt(30))
	case model.CycleYearly:
		return p.Price.Div(decimal.NewFromInt(12))
	default:
		return p.Price
	}
}
