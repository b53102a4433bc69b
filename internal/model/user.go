package model

import "time"

const (
	RoleClient     = "client"
	RoleSuperAdmin = "super_admin"
)

// User is a tenant account (role client) or a platform operator (role super_admin).
// Every tenant-owned row carries the client's ID as its partition key.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	CompanyName  string `gorm:"not null;default:''"`
	Email        string `gorm:"uniqueIndex;not null"`
	Phone        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null;default:'client'"`
	Active       bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Subscription *Subscription `gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "users" }
