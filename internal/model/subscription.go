package model

import "time"

// Subscription statuses. Expired is derived lazily from EndDate on read.
const (
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// Subscription is the single access window of a tenant. PlanID is nil while on trial.
type Subscription struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	PlanID    *uint     `gorm:"index"`
	Status    string    `gorm:"type:varchar(10);not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	AutoRenew bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Plan *Plan `gorm:"foreignKey:PlanID"`
}

func (Subscription) TableName() string { return "subscriptions" }
