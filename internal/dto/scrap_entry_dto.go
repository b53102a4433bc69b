package dto

import "github.com/shopspring/decimal"

type CreateScrapEntryRequest struct {
	EntryType     string          `json:"entryType"     validate:"required,oneof=job-based general"`
	CategoryID    uint            `json:"categoryId"    validate:"required"`
	SubCategoryID *uint           `json:"subCategoryId"`
	DepartmentID  uint            `json:"departmentId"  validate:"required"`
	MachineID     *uint           `json:"machineId"`
	Quantity      decimal.Decimal `json:"quantity"      validate:"gt=0"`
	Unit          string          `json:"unit"          validate:"omitempty,max=20"`
	Rate          decimal.Decimal `json:"rate"          validate:"gte=0"`
	JobNumber     *string         `json:"jobNumber"     validate:"omitempty,max=50"`
	Remarks       *string         `json:"remarks"       validate:"omitempty,max=500"`
}

// ScrapEntryFilter is bound from the query string of GET /v1/scrap-entries.
type ScrapEntryFilter struct {
	PageQuery
	UserID       uint   `form:"userId"`
	From         string `form:"from"` // YYYY-MM-DD, inclusive
	To           string `form:"to"`   // YYYY-MM-DD, inclusive
	CategoryID   uint   `form:"categoryId"`
	DepartmentID uint   `form:"departmentId"`
	EntryType    string `form:"entryType" validate:"omitempty,oneof=job-based general"`
}

type ScrapEntryResponse struct {
	ID              uint            `json:"id"`
	EntryType       string          `json:"entryType"`
	CategoryID      uint            `json:"categoryId"`
	CategoryName    string          `json:"categoryName,omitempty"`
	SubCategoryID   *uint           `json:"subCategoryId,omitempty"`
	SubCategoryName string          `json:"subCategoryName,omitempty"`
	DepartmentID    uint            `json:"departmentId"`
	DepartmentName  string          `json:"departmentName,omitempty"`
	MachineID       *uint           `json:"machineId,omitempty"`
	MachineName     string          `json:"machineName,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	Rate            decimal.Decimal `json:"rate"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	JobNumber       *string         `json:"jobNumber,omitempty"`
	Remarks         *string         `json:"remarks,omitempty"`
	CreatedBy       uint            `json:"createdBy"`
	CreatedAt       string          `json:"createdAt"`
}
