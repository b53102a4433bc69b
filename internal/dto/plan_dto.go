package dto

import "github.com/shopspring/decimal"

// ── Plans ─────────────────────────────────────────────────────────────────────

type PlanRequest struct {
	Name         string          `json:"name"         validate:"required,min=2,max=100"`
	Description  *string         `json:"description"  validate:"omitempty,max=1000"`
	Price        decimal.Decimal `json:"price"        validate:"gte=0"`
	BillingCycle string          `json:"billingCycle" validate:"required,oneof=daily monthly yearly"`
	Features     *string         `json:"features"     validate:"omitempty,max=2000"`
	Active       *bool           `json:"active"`
}

type PlanResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	BillingCycle string          `json:"billingCycle"`
	Features     *string         `json:"features,omitempty"`
	Active       bool            `json:"active"`
}

// ── Plan activation requests ──────────────────────────────────────────────────

type SubmitPlanRequest struct {
	PlanID  uint    `json:"planId"  validate:"required"`
	Message *string `json:"message" validate:"omitempty,max=500"`
}

// ProcessPlanRequest approves or rejects. StartDate/EndDate (RFC 3339) override
// the window the plan's billing cycle would produce.
type ProcessPlanRequest struct {
	Remarks   *string `json:"remarks"   validate:"omitempty,max=500"`
	StartDate *string `json:"startDate" validate:"omitempty"`
	EndDate   *string `json:"endDate"   validate:"omitempty"`
}

type PlanRequestFilter struct {
	PageQuery
	Status string `form:"status" validate:"omitempty,oneof=pending approved rejected"`
}

type PlanRequestResponse struct {
	ID           uint    `json:"id"`
	UserID       uint    `json:"userId"`
	UserName     string  `json:"userName,omitempty"`
	CompanyName  string  `json:"companyName,omitempty"`
	PlanID       uint    `json:"planId"`
	PlanName     string  `json:"planName,omitempty"`
	Status       string  `json:"status"`
	Message      *string `json:"message,omitempty"`
	AdminRemarks *string `json:"adminRemarks,omitempty"`
	ProcessedAt  *string `json:"processedAt,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

// ── Subscriptions ─────────────────────────────────────────────────────────────

type SubscriptionResponse struct {
	ID        uint    `json:"id"`
	UserID    uint    `json:"userId"`
	PlanID    *uint   `json:"planId,omitempty"`
	PlanName  string  `json:"planName,omitempty"`
	Status    string  `json:"status"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	AutoRenew bool    `json:"autoRenew"`
	DaysLeft  int     `json:"daysLeft"`
	Usable    bool    `json:"usable"`
	Company   *string `json:"companyName,omitempty"`
}

type ExtendSubscriptionRequest struct {
	EndDate string `json:"endDate" validate:"required"` // RFC 3339
}

type SubscriptionFilter struct {
	PageQuery
	Status string `form:"status" validate:"omitempty,oneof=trial active expired cancelled"`
}
