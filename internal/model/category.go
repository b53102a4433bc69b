package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a tenant's scrap material class (paper, plates, ink drums...).
// MarketRate is the reference price used as cost basis before any inflow exists.
type Category struct {
	ID         uint            `gorm:"primaryKey"`
	Name       string          `gorm:"not null;index"`
	Unit       string          `gorm:"not null"`
	MarketRate decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CreatedBy  uint            `gorm:"not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Category) TableName() string { return "categories" }

// SubCategory always belongs to exactly one Category.
type SubCategory struct {
	ID         uint   `gorm:"primaryKey"`
	CategoryID uint   `gorm:"not null;index"`
	Name       string `gorm:"not null"`
	Size       *string
	Remarks    *string
	Unit       string `gorm:"not null"`
	CreatedBy  uint   `gorm:"not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}

func (SubCategory) TableName() string { return "sub_categories" }
