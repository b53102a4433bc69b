package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EntryJobBased = "job-based"
	EntryGeneral  = "general"
)

// ScrapEntry is an immutable inflow event. TotalValue is frozen at write time
// so historical entries keep their value when category rates change later.
type ScrapEntry struct {
	ID            uint            `gorm:"primaryKey"`
	EntryType     string          `gorm:"type:varchar(10);not null"`
	CategoryID    uint            `gorm:"not null;index"`
	SubCategoryID *uint           `gorm:"index"`
	DepartmentID  uint            `gorm:"not null;index"`
	MachineID     *uint           `gorm:"index"`
	Quantity      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Unit          string          `gorm:"not null"`
	Rate          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalValue    decimal.Decimal `gorm:"type:numeric(16,2);not null"`
	JobNumber     *string
	Remarks       *string
	CreatedBy     uint `gorm:"not null;index"`
	CreatedAt     time.Time

	Category    *Category    `gorm:"foreignKey:CategoryID"`
	SubCategory *SubCategory `gorm:"foreignKey:SubCategoryID"`
	Department  *Department  `gorm:"foreignKey:DepartmentID"`
	Machine     *Machine     `gorm:"foreignKey:MachineID"`
}

func (ScrapEntry) TableName() string { return "scrap_entries" }
