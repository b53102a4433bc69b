package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegisterRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=100"`
	CompanyName string  `json:"companyName" validate:"required,min=2,max=150"`
	Email       string  `json:"email"       validate:"required,email"`
	Phone       *string `json:"phone"       validate:"omitempty,min=6,max=20"`
	Password    string  `json:"password"    validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TenantFilter is bound from GET /v1/admin/tenants.
type TenantFilter struct {
	PageQuery
	Search string `form:"search" validate:"omitempty,max=100"`
}

type SetUserActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID           uint                  `json:"id"`
	Name         string                `json:"name"`
	CompanyName  string                `json:"companyName"`
	Email        string                `json:"email"`
	Phone        *string               `json:"phone,omitempty"`
	Role         string                `json:"role"`
	Active       bool                  `json:"active"`
	CreatedAt    string                `json:"createdAt"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
}

type LoginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int          `json:"expiresIn"` // seconds
	User         UserResponse `json:"user"`
}
