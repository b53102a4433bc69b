package repository

import (
	"context"
	"time"

	"printscrap/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanRepository interface {
	Create(ctx context.Context, p *model.Plan) error
	FindByID(ctx context.Context, id uint) (*model.Plan, error)
	List(ctx context.Context, activeOnly bool) ([]model.Plan, error)
	Update(ctx context.Context, p *model.Plan) error
	Delete(ctx context.Context, id uint) error
	// CountReferences counts subscriptions and requests that point at the plan.
	CountReferences(ctx context.Context, id uint) (int64, error)
}

type planRepo struct{ db *gorm.DB }

func NewPlanRepository(db *gorm.DB) PlanRepository { return &planRepo{db: db} }

func (r *planRepo) Create(ctx context.Context, p *model.Plan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *planRepo) FindByID(ctx context.Context, id uint) (*model.Plan, error) {
	var p model.Plan
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *planRepo) List(ctx context.Context, activeOnly bool) ([]model.Plan, error) {
	var plans []model.Plan
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Order("price ASC, name ASC").Find(&plans).Error
	return plans, err
}

func (r *planRepo) Update(ctx context.Context, p *model.Plan) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *planRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Plan{}, id).Error
}

func (r *planRepo) CountReferences(ctx context.Context, id uint) (int64, error) {
	return countRefs(r.db.WithContext(ctx), id,
		"subscriptions", "plan_id",
		"plan_activation_requests", "plan_id",
	)
}

// ── Plan activation requests ──────────────────────────────────────────────────

// PlanRequestQuery narrows the request list. UserID 0 lists every tenant.
type PlanRequestQuery struct {
	UserID uint
	Status string
	Offset int
	Limit  int
}

type PlanRequestRepository interface {
	Create(ctx context.Context, req *model.PlanActivationRequest) error
	// FindForUpdateTx loads and row-locks a request inside tx.
	FindForUpdateTx(tx *gorm.DB, id uint) (*model.PlanActivationRequest, error)
	HasPending(ctx context.Context, userID uint) (bool, error)
	List(ctx context.Context, q PlanRequestQuery) ([]model.PlanActivationRequest, int64, error)
	ResolveTx(tx *gorm.DB, id uint, status string, remarks *string, adminID uint, at time.Time) error
	CountPending(ctx context.Context) (int64, error)
	DB() *gorm.DB
}

type planRequestRepo struct{ db *gorm.DB }

func NewPlanRequestRepository(db *gorm.DB) PlanRequestRepository {
	return &planRequestRepo{db: db}
}

func (r *planRequestRepo) DB() *gorm.DB { return r.db }

func (r *planRequestRepo) Create(ctx context.Context, req *model.PlanActivationRequest) error {
	return r.db.WithContext(ctx).Omit("User", "Plan").Create(req).Error
}

func (r *planRequestRepo) FindForUpdateTx(tx *gorm.DB, id uint) (*model.PlanActivationRequest, error) {
	var req model.PlanActivationRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error
	if err != nil {
		return nil, err
	}
	var plan model.Plan
	if err := tx.First(&plan, req.PlanID).Error; err != nil {
		return nil, err
	}
	req.Plan = &plan
	return &req, nil
}

func (r *planRequestRepo) HasPending(ctx context.Context, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PlanActivationRequest{}).
		Where("user_id = ? AND status = ?", userID, model.RequestPending).
		Count(&n).Error
	return n > 0, err
}

func (r *planRequestRepo) List(ctx context.Context, q PlanRequestQuery) ([]model.PlanActivationRequest, int64, error) {
	var (
		reqs  []model.PlanActivationRequest
		total int64
	)
	base := r.db.WithContext(ctx).Model(&model.PlanActivationRequest{})
	if q.UserID != 0 {
		base = base.Where("user_id = ?", q.UserID)
	}
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	find := base.Preload("User").Preload("Plan").Order("created_at DESC, id DESC")
	if q.Limit > 0 {
		find = find.Offset(q.Offset).Limit(q.Limit)
	}
	err := find.Find(&reqs).Error
	return reqs, total, err
}

func (r *planRequestRepo) ResolveTx(tx *gorm.DB, id uint, status string, remarks *string, adminID uint, at time.Time) error {
	return tx.Model(&model.PlanActivationRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"admin_remarks": remarks,
			"processed_by":  adminID,
			"processed_at":  at,
		}).Error
}

func (r *planRequestRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PlanActivationRequest{}).
		Where("status = ?", model.RequestPending).
		Count(&n).Error
	return n, err
}
