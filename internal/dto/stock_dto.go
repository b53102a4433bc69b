package dto

import "github.com/shopspring/decimal"

// StockQuery is bound from GET /v1/stock. UserID is honoured for super admins only.
type StockQuery struct {
	UserID uint `form:"userId"`
}

// AvailableQuery is bound from GET /v1/stock/available.
type AvailableQuery struct {
	CategoryID    uint  `form:"categoryId" validate:"required"`
	SubCategoryID *uint `form:"subCategoryId"`
}

type StockResponse struct {
	CategoryID      uint            `json:"categoryId"`
	CategoryName    string          `json:"categoryName,omitempty"`
	SubCategoryID   *uint           `json:"subCategoryId,omitempty"`
	SubCategoryName string          `json:"subCategoryName,omitempty"`
	TotalInflow     decimal.Decimal `json:"totalInflow"`
	TotalOutflow    decimal.Decimal `json:"totalOutflow"`
	AvailableStock  decimal.Decimal `json:"availableStock"`
	Unit            string          `json:"unit"`
	AverageRate     decimal.Decimal `json:"averageRate"`
	TotalValue      decimal.Decimal `json:"totalValue"`
}
