package dto

import "github.com/shopspring/decimal"

// ── Units ─────────────────────────────────────────────────────────────────────

type UnitRequest struct {
	Name   string `json:"name"   validate:"required,min=1,max=50"`
	Symbol string `json:"symbol" validate:"required,min=1,max=10"`
}

type UnitResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// ── Categories ────────────────────────────────────────────────────────────────

type CategoryRequest struct {
	Name       string          `json:"name"       validate:"required,min=2,max=100"`
	Unit       string          `json:"unit"       validate:"required,max=20"`
	MarketRate decimal.Decimal `json:"marketRate" validate:"gte=0"`
}

type CategoryResponse struct {
	ID               uint            `json:"id"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	MarketRate       decimal.Decimal `json:"marketRate"`
	SubCategoryCount int             `json:"subCategoryCount"`
}

// ── Sub-categories ────────────────────────────────────────────────────────────

type SubCategoryRequest struct {
	CategoryID uint    `json:"categoryId" validate:"required"`
	Name       string  `json:"name"       validate:"required,min=1,max=100"`
	Size       *string `json:"size"       validate:"omitempty,max=50"`
	Remarks    *string `json:"remarks"    validate:"omitempty,max=500"`
	Unit       string  `json:"unit"       validate:"omitempty,max=20"`
}

type SubCategoryResponse struct {
	ID           uint    `json:"id"`
	CategoryID   uint    `json:"categoryId"`
	CategoryName string  `json:"categoryName,omitempty"`
	Name         string  `json:"name"`
	Size         *string `json:"size,omitempty"`
	Remarks      *string `json:"remarks,omitempty"`
	Unit         string  `json:"unit"`
}

// ── Departments ───────────────────────────────────────────────────────────────

type DepartmentRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type DepartmentResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	MachineCount int     `json:"machineCount"`
}

// ── Machines ──────────────────────────────────────────────────────────────────

type MachineRequest struct {
	DepartmentID uint    `json:"departmentId" validate:"required"`
	Name         string  `json:"name"         validate:"required,min=1,max=100"`
	Code         *string `json:"code"         validate:"omitempty,max=50"`
	Description  *string `json:"description"  validate:"omitempty,max=500"`
}

type MachineResponse struct {
	ID             uint    `json:"id"`
	DepartmentID   uint    `json:"departmentId"`
	DepartmentName string  `json:"departmentName,omitempty"`
	Name           string  `json:"name"`
	Code           *string `json:"code,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// SubCategoryQuery is bound from GET /v1/sub-categories.
type SubCategoryQuery struct {
	CategoryID uint `form:"categoryId"`
}

// MachineQuery is bound from GET /v1/machines.
type MachineQuery struct {
	DepartmentID uint `form:"departmentId"`
}
