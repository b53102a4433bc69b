package service

import (
	"context"
	"testing"
	"time"

	"printscrap/internal/config"
	"printscrap/internal/model"
	"printscrap/internal/repository"
	"printscrap/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

// env wires every service against one SQLite database, with a shared clock.
type env struct {
	db  *gorm.DB
	ctx context.Context
	now time.Time

	users       repository.UserRepository
	categories  repository.CategoryRepository
	departments repository.DepartmentRepository
	stock       repository.StockRepository
	sales       repository.SaleRepository
	entries     repository.ScrapEntryRepository
	subs        repository.SubscriptionRepository
	requests    repository.PlanRequestRepository
	plans       repository.PlanRepository

	ledgerSvc LedgerService
	entrySvc  ScrapEntryService
	saleSvc   *saleService
	subSvc    *subscriptionService
	authSvc   *authService
	planSvc   PlanService
	catSvc    CategoryService
	deptSvc   DepartmentService
	unitSvc   UnitService
	dashSvc   *dashboardService
	reportSvc *reportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewSQLite(t)
	e := &env{
		db:          db,
		ctx:         context.Background(),
		now:         time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		users:       repository.NewUserRepository(db),
		categories:  repository.NewCategoryRepository(db),
		departments: repository.NewDepartmentRepository(db),
		stock:       repository.NewStockRepository(db),
		sales:       repository.NewSaleRepository(db),
		entries:     repository.NewScrapEntryRepository(db),
		subs:        repository.NewSubscriptionRepository(db),
		requests:    repository.NewPlanRequestRepository(db),
		plans:       repository.NewPlanRepository(db),
	}
	clock := func() time.Time { return e.now }
	cfg := &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DefaultPhoneRegion: "IN",
	}

	e.ledgerSvc = NewLedgerService(e.stock, e.categories)
	e.entrySvc = NewScrapEntryService(e.entries, e.categories, e.departments, e.ledgerSvc, time.UTC)
	e.entrySvc.(*scrapEntryService).now = clock
	e.saleSvc = NewSaleService(e.sales, e.stock, e.categories, e.users, e.ledgerSvc, nil, time.UTC, "IN").(*saleService)
	e.saleSvc.now = clock
	e.subSvc = NewSubscriptionService(e.subs, e.requests, e.plans, e.users, nil, 24*time.Hour, time.UTC).(*subscriptionService)
	e.subSvc.now = clock
	e.authSvc = NewAuthService(e.users, e.subSvc, nil, cfg).(*authService)
	e.authSvc.now = clock
	e.planSvc = NewPlanService(e.plans)
	e.catSvc = NewCategoryService(e.categories)
	e.deptSvc = NewDepartmentService(e.departments)
	e.unitSvc = NewUnitService(repository.NewUnitRepository(db))
	e.dashSvc = NewDashboardService(DashboardDeps{
		Ledger:        e.ledgerSvc,
		Entries:       e.entries,
		Sales:         e.sales,
		Categories:    e.categories,
		Departments:   e.departments,
		Users:         e.users,
		Subscriptions: e.subs,
		Requests:      e.requests,
		Subscriber:    e.subSvc,
	}, nil, time.UTC).(*dashboardService)
	e.dashSvc.now = clock
	e.reportSvc = NewReportService(e.entries, e.sales, e.ledgerSvc, time.UTC).(*reportService)
	e.reportSvc.now = clock
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func (e *env) client(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Owner", CompanyName: "Press " + email, Email: email, PasswordHash: "x", Role: model.RoleClient, Active: true}
	require.NoError(t, e.users.CreateTx(e.db, u))
	return u
}

func (e *env) category(t *testing.T, userID uint, name, marketRate string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, Unit: "Kg", MarketRate: dec(marketRate), CreatedBy: userID}
	require.NoError(t, e.categories.Create(e.ctx, c))
	return c
}

func (e *env) sub(t *testing.T, userID, categoryID uint, name string) *model.SubCategory {
	t.Helper()
	s := &model.SubCategory{CategoryID: categoryID, Name: name, Unit: "Kg", CreatedBy: userID}
	require.NoError(t, e.categories.CreateSub(e.ctx, s))
	return s
}

func (e *env) department(t *testing.T, userID uint, name string) *model.Department {
	t.Helper()
	d := &model.Department{Name: name, CreatedBy: userID}
	require.NoError(t, e.departments.Create(e.ctx, d))
	return d
}

func (e *env) machine(t *testing.T, userID, departmentID uint, name string) *model.Machine {
	t.Helper()
	m := &model.Machine{DepartmentID: departmentID, Name: name, CreatedBy: userID}
	require.NoError(t, e.departments.CreateMachine(e.ctx, m))
	return m
}

func ptr[T any](v T) *T { return &v }
