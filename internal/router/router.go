package router

import (
	"printscrap/internal/config"
	"printscrap/internal/handler"
	"printscrap/internal/infra"
	"printscrap/internal/middleware"
	"printscrap/internal/model"
	"printscrap/internal/repository"
	"printscrap/internal/service"
	"printscrap/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb, dispatcher and mailCB may be nil: notifications are then dropped and
// the dashboard cache and rate limiter fall back to in-process behaviour.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, mailCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigin))
	r.Use(middleware.ErrorHandler())

	loc := cfg.Location()

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	stockRepo := repository.NewStockRepository(db)
	entryRepo := repository.NewScrapEntryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	planRepo := repository.NewPlanRepository(db)
	requestRepo := repository.NewPlanRequestRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	notifier := service.NewNotifier(dispatcher, cfg.AdminEmail, loc)

	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, requestRepo, planRepo, userRepo, notifier, cfg.TrialDuration(), loc)
	authSvc := service.NewAuthService(userRepo, subscriptionSvc, notifier, cfg)
	ledgerSvc := service.NewLedgerService(stockRepo, categoryRepo)
	entrySvc := service.NewScrapEntryService(entryRepo, categoryRepo, departmentRepo, ledgerSvc, loc)
	saleSvc := service.NewSaleService(saleRepo, stockRepo, categoryRepo, userRepo, ledgerSvc, notifier, loc, cfg.DefaultPhoneRegion)
	unitSvc := service.NewUnitService(unitRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	departmentSvc := service.NewDepartmentService(departmentRepo)
	planSvc := service.NewPlanService(planRepo)
	reportSvc := service.NewReportService(entryRepo, saleRepo, ledgerSvc, loc)
	dashboardSvc := service.NewDashboardService(service.DashboardDeps{
		Ledger:        ledgerSvc,
		Entries:       entryRepo,
		Sales:         saleRepo,
		Categories:    categoryRepo,
		Departments:   departmentRepo,
		Users:         userRepo,
		Subscriptions: subscriptionRepo,
		Requests:      requestRepo,
		Subscriber:    subscriptionSvc,
	}, infra.NewCache(rdb, "printscrap:", cfg.CacheTTL()), loc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	unitH := handler.NewUnitHandler(unitSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	departmentH := handler.NewDepartmentHandler(departmentSvc)
	entryH := handler.NewScrapEntryHandler(entrySvc)
	stockH := handler.NewStockHandler(ledgerSvc)
	saleH := handler.NewSaleHandler(saleSvc)
	reportH := handler.NewReportHandler(reportSvc)
	planH := handler.NewPlanHandler(planSvc)
	subscriptionH := handler.NewSubscriptionHandler(subscriptionSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	api := r.Group("/v1", middleware.APIRateLimiter(rdb, cfg.RateLimitPerMinute))

	// Auth (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.LoginRateLimiter(rdb), authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(rdb), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	v1 := api.Group("", middleware.JWTAuth(cfg.JWTSecret))
	v1.GET("/auth/me", authH.Me)
	v1.GET("/plans", planH.List)

	// Account: reachable by clients whose subscription has lapsed, so they
	// can see why and ask for a plan.
	account := v1.Group("", middleware.RequireRole(model.RoleClient))
	{
		account.GET("/subscription", subscriptionH.Current)
		account.POST("/plan-requests", subscriptionH.SubmitRequest)
		account.GET("/plan-requests", subscriptionH.ListRequests)
	}

	// Tenant reads: clients see their own tenant, super admins pass ?userId=.
	// The subscription gate skips super admins.
	reads := v1.Group("",
		middleware.RequireRole(model.RoleClient, model.RoleSuperAdmin),
		middleware.RequireActiveSubscription(subscriptionSvc))
	{
		reads.GET("/stock", stockH.List)
		reads.GET("/sales", saleH.List)
		reads.GET("/sales/:id", saleH.Get)
		reads.GET("/scrap-entries", entryH.List)
		reads.GET("/scrap-entries/:id", entryH.Get)
	}

	// Tenant workspace: clients with a trial or active plan only.
	tenant := v1.Group("",
		middleware.RequireRole(model.RoleClient),
		middleware.RequireActiveSubscription(subscriptionSvc))
	{
		tenant.GET("/dashboard", dashboardH.Client)
		tenant.GET("/stock/available", stockH.Available)

		tenant.POST("/scrap-entries", entryH.Create)
		tenant.POST("/sales", saleH.Create)
		tenant.GET("/sales/:id/invoice.pdf", saleH.Invoice)

		reports := tenant.Group("/reports")
		{
			reports.GET("/scrap-entries.xlsx", reportH.ScrapEntries)
			reports.GET("/sales.xlsx", reportH.Sales)
			reports.GET("/stock.xlsx", reportH.Stock)
		}

		units := tenant.Group("/units")
		{
			units.GET("", unitH.List)
			units.POST("", unitH.Create)
			units.GET("/:id", unitH.Get)
			units.PUT("/:id", unitH.Update)
			units.DELETE("/:id", unitH.Delete)
		}

		categories := tenant.Group("/categories")
		{
			categories.GET("", categoryH.List)
			categories.POST("", categoryH.Create)
			categories.GET("/:id", categoryH.Get)
			categories.PUT("/:id", categoryH.Update)
			categories.DELETE("/:id", categoryH.Delete)
		}

		subs := tenant.Group("/sub-categories")
		{
			subs.GET("", categoryH.ListSubs)
			subs.POST("", categoryH.CreateSub)
			subs.GET("/:id", categoryH.GetSub)
			subs.PUT("/:id", categoryH.UpdateSub)
			subs.DELETE("/:id", categoryH.DeleteSub)
		}

		departments := tenant.Group("/departments")
		{
			departments.GET("", departmentH.List)
			departments.POST("", departmentH.Create)
			departments.GET("/:id", departmentH.Get)
			departments.PUT("/:id", departmentH.Update)
			departments.DELETE("/:id", departmentH.Delete)
		}

		machines := tenant.Group("/machines")
		{
			machines.GET("", departmentH.ListMachines)
			machines.POST("", departmentH.CreateMachine)
			machines.GET("/:id", departmentH.GetMachine)
			machines.PUT("/:id", departmentH.UpdateMachine)
			machines.DELETE("/:id", departmentH.DeleteMachine)
		}
	}

	// Super admin console
	admin := v1.Group("/admin", middleware.RequireRole(model.RoleSuperAdmin))
	{
		admin.GET("/dashboard", dashboardH.Admin)

		admin.GET("/tenants", authH.ListTenants)
		admin.PATCH("/tenants/:id/active", authH.SetTenantActive)

		admin.GET("/plans", planH.List)
		admin.POST("/plans", planH.Create)
		admin.PUT("/plans/:id", planH.Update)
		admin.DELETE("/plans/:id", planH.Delete)

		admin.GET("/plan-requests", subscriptionH.ListRequests)
		admin.POST("/plan-requests/:id/approve", subscriptionH.Approve)
		admin.POST("/plan-requests/:id/reject", subscriptionH.Reject)

		admin.GET("/subscriptions", subscriptionH.List)
		admin.POST("/subscriptions/:id/cancel", subscriptionH.Cancel)
		admin.POST("/subscriptions/:id/extend", subscriptionH.Extend)
	}

	// Swagger UI, outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
