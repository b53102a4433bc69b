package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the aggregate root of a multi-line outflow. It and its items are
// written in a single transaction together with the stock decrements.
type Sale struct {
	ID            uint            `gorm:"primaryKey"`
	InvoiceNumber string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_sales_tenant_invoice"`
	BuyerName     string          `gorm:"not null"`
	BuyerContact  *string
	BuyerEmail    *string
	TotalAmount   decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	Remarks       *string
	CreatedBy     uint      `gorm:"not null;uniqueIndex:idx_sales_tenant_invoice;index"`
	SaleDate      time.Time `gorm:"not null;index"`
	CreatedAt     time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

func (Sale) TableName() string { return "sales" }

// SaleItem is one line of a Sale.
type SaleItem struct {
	ID            uint            `gorm:"primaryKey"`
	SaleID        uint            `gorm:"not null;index"`
	CategoryID    uint            `gorm:"not null"`
	SubCategoryID *uint
	Quantity      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Rate          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalValue    decimal.Decimal `gorm:"type:numeric(16,2);not null"`

	Category    *Category    `gorm:"foreignKey:CategoryID"`
	SubCategory *SubCategory `gorm:"foreignKey:SubCategoryID"`
}

func (SaleItem) TableName() string { return "sale_items" }

// InvoiceSequence is the per-tenant, per-day invoice counter. Its upsert takes
// a row lock that serialises concurrent sales of the same tenant and day until
// the surrounding transaction ends, and a rolled-back sale rolls the counter
// back with it.
type InvoiceSequence struct {
	UserID  uint   `gorm:"primaryKey;autoIncrement:false"`
	Day     string `gorm:"primaryKey;type:varchar(8)"`
	LastSeq int    `gorm:"not null"`
}

func (InvoiceSequence) TableName() string { return "invoice_sequences" }

// All lists every model in dependency order, for migrations.
func All() []any {
	return []any{
		&User{}, &Plan{}, &Subscription{}, &PlanActivationRequest{},
		&Unit{}, &Category{}, &SubCategory{}, &Department{}, &Machine{},
		&ScrapEntry{}, &StockLedger{}, &Sale{}, &SaleItem{}, &InvoiceSequence{},
	}
}
