package model

import "time"

// Unit is a tenant-defined unit of measure (Kg, Pcs, Ton).
type Unit struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Symbol    string `gorm:"not null"`
	CreatedBy uint   `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Unit) TableName() string { return "units" }
