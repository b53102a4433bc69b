package model

import "time"

// Department is a shop-floor area that produces scrap (pre-press, press, binding).
type Department struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description *string
	CreatedBy   uint `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Department) TableName() string { return "departments" }

// Machine belongs to exactly one Department.
type Machine struct {
	ID           uint   `gorm:"primaryKey"`
	DepartmentID uint   `gorm:"not null;index"`
	Name         string `gorm:"not null"`
	Code         *string
	Description  *string
	CreatedBy    uint `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Department *Department `gorm:"foreignKey:DepartmentID"`
}

func (Machine) TableName() string { return "machines" }
