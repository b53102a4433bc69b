package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	CategoryID    uint            `json:"categoryId"    validate:"required"`
	SubCategoryID *uint           `json:"subCategoryId"`
	Quantity      decimal.Decimal `json:"quantity"      validate:"gt=0"`
	Rate          decimal.Decimal `json:"rate"          validate:"gte=0"`
}

type CreateSaleRequest struct {
	BuyerName    string  `json:"buyerName"    validate:"required,min=1,max=150"`
	BuyerContact *string `json:"buyerContact" validate:"omitempty,max=100"`
	// BuyerEmail: optional, when present the invoice PDF is mailed to the buyer.
	BuyerEmail *string `json:"buyerEmail" validate:"omitempty,email"`
	Remarks    *string `json:"remarks"    validate:"omitempty,max=500"`

	SaleItems []SaleItemRequest `json:"saleItems" validate:"required,min=1,dive"`
}

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	PageQuery
	UserID uint   `form:"userId"`
	From   string `form:"from"` // YYYY-MM-DD, inclusive
	To     string `form:"to"`   // YYYY-MM-DD, inclusive
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID              uint            `json:"id"`
	CategoryID      uint            `json:"categoryId"`
	CategoryName    string          `json:"categoryName,omitempty"`
	SubCategoryID   *uint           `json:"subCategoryId,omitempty"`
	SubCategoryName string          `json:"subCategoryName,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	TotalValue      decimal.Decimal `json:"totalValue"`
}

type SaleResponse struct {
	ID            uint               `json:"id"`
	InvoiceNumber string             `json:"invoiceNumber"`
	BuyerName     string             `json:"buyerName"`
	BuyerContact  *string            `json:"buyerContact,omitempty"`
	BuyerEmail    *string            `json:"buyerEmail,omitempty"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	Remarks       *string            `json:"remarks,omitempty"`
	CreatedBy     uint               `json:"createdBy"`
	SaleDate      string             `json:"saleDate"`
	SaleItems     []SaleItemResponse `json:"saleItems"`
}
