package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Billing cycles understood by billing.NextWindow.
const (
	CycleDaily   = "daily"
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

// Plan is a purchasable subscription tier managed by the super admin.
type Plan struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"uniqueIndex;not null"`
	Description  *string
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	BillingCycle string          `gorm:"type:varchar(10);not null"`
	Features     *string
	Active       bool `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Plan) TableName() string { return "plans" }

// Plan request states. Rejected is terminal; the client submits a new request.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// PlanActivationRequest is a client's ask to move onto a plan. The super admin
// approves (activating the subscription) or rejects it.
type PlanActivationRequest struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"not null;index"`
	PlanID       uint   `gorm:"not null"`
	Status       string `gorm:"type:varchar(10);not null;default:'pending';index"`
	Message      *string
	AdminRemarks *string
	ProcessedBy  *uint
	ProcessedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	User *User `gorm:"foreignKey:UserID"`
	Plan *Plan `gorm:"foreignKey:PlanID"`
}

func (PlanActivationRequest) TableName() string { return "plan_activation_requests" }
