package dto

import "github.com/shopspring/decimal"

type CategoryStockSummary struct {
	CategoryID     uint            `json:"categoryId"`
	CategoryName   string          `json:"categoryName"`
	AvailableStock decimal.Decimal `json:"availableStock"`
	TotalValue     decimal.Decimal `json:"totalValue"`
}

type ClientDashboardResponse struct {
	StockValue       decimal.Decimal        `json:"stockValue"`
	MonthInflowValue decimal.Decimal        `json:"monthInflowValue"`
	MonthEntryCount  int64                  `json:"monthEntryCount"`
	MonthSalesAmount decimal.Decimal        `json:"monthSalesAmount"`
	MonthSaleCount   int64                  `json:"monthSaleCount"`
	TodaySalesAmount decimal.Decimal        `json:"todaySalesAmount"`
	CategoryCount    int64                  `json:"categoryCount"`
	DepartmentCount  int64                  `json:"departmentCount"`
	StockByCategory  []CategoryStockSummary `json:"stockByCategory"`
	RecentEntries    []ScrapEntryResponse   `json:"recentEntries"`
	Subscription     *SubscriptionResponse  `json:"subscription,omitempty"`
}

type AdminDashboardResponse struct {
	TotalTenants          int64           `json:"totalTenants"`
	ActiveTenants         int64           `json:"activeTenants"`
	TrialSubscriptions    int64           `json:"trialSubscriptions"`
	ActiveSubscriptions   int64           `json:"activeSubscriptions"`
	ExpiredSubscriptions  int64           `json:"expiredSubscriptions"`
	PendingPlanRequests   int64           `json:"pendingPlanRequests"`
	MonthlyRecurringValue decimal.Decimal `json:"monthlyRecurringValue"`
	GeneratedAt           string          `json:"generatedAt"`
}
