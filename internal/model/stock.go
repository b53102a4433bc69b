package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StockLedger is the derived balance of one ledger key
// (UserID, CategoryID, SubCategoryID-or-NULL).
//
// Accumulators are stored at full precision; rounding to 2 dp happens only
// when a row is rendered. AvailableStock, AverageRate and TotalValue are
// denormalised from the accumulators so SQL can list and guard on them.
type StockLedger struct {
	ID            uint            `gorm:"primaryKey"`
	LedgerKey     string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID        uint            `gorm:"not null;index"`
	CategoryID    uint            `gorm:"not null;index"`
	SubCategoryID *uint           `gorm:"index"`
	Unit          string          `gorm:"not null;default:''"`
	TotalInflow   decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0"`
	TotalOutflow  decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0"`
	InflowCost    decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0"`
	// AvailableStock = TotalInflow - TotalOutflow, never negative.
	AvailableStock decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0"`
	// AverageRate = InflowCost / TotalInflow; outflows never touch it.
	AverageRate decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0"`
	TotalValue  decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0"`
	UpdatedAt   time.Time
}

func (StockLedger) TableName() string { return "stock" }

// LedgerKeyOf renders the unique key used for upserts. A NULL sub-category is
// spelled "-" so it can never collide with a real sub-category id.
func LedgerKeyOf(userID, categoryID uint, subCategoryID *uint) string {
	sub := "-"
	if subCategoryID != nil {
		sub = fmt.Sprintf("%d", *subCategoryID)
	}
	return fmt.Sprintf("%d:%d:%s", userID, categoryID, sub)
}
