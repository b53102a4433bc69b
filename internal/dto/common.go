package dto

// PageQuery is bound from ?page=&limit= on list endpoints.
type PageQuery struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=50" validate:"min=1,max=200"`
}

// Normalize clamps out-of-range values to the defaults.
func (p *PageQuery) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 200 {
		p.Limit = 50
	}
}

// Offset is the row offset of the requested page.
func (p PageQuery) Offset() int { return (p.Page - 1) * p.Limit }

// Page is the body of every paginated list response.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// TenantQuery carries ?userId= on single-record reads. Super admins only.
type TenantQuery struct {
	UserID uint `form:"userId"`
}
