package repository

import (
	"context"

	"printscrap/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	CreateTx(tx *gorm.DB, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	// ListClients pages through client accounts with their subscription and plan.
	ListClients(ctx context.Context, search string, offset, limit int) ([]model.User, int64, error)
	ListSuperAdmins(ctx context.Context) ([]model.User, error)
	SetActive(ctx context.Context, id uint, active bool) error
	CountClients(ctx context.Context) (total int64, active int64, err error)
	DB() *gorm.DB
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) DB() *gorm.DB { return r.db }

func (r *userRepo) CreateTx(tx *gorm.DB, u *model.User) error {
	return tx.Omit("Subscription").Create(u).Error
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	return &u, err
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Preload("Subscription.Plan").First(&u, id).Error
	return &u, err
}

func (r *userRepo) ListClients(ctx context.Context, search string, offset, limit int) ([]model.User, int64, error) {
	var (
		users []model.User
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", model.RoleClient)
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(company_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Subscription.Plan").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, total, err
}

func (r *userRepo) ListSuperAdmins(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Where("role = ? AND active = ?", model.RoleSuperAdmin, true).Find(&users).Error
	return users, err
}

func (r *userRepo) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("active", active).Error
}

func (r *userRepo) CountClients(ctx context.Context) (int64, int64, error) {
	var total, active int64
	base := r.db.WithContext(ctx)
	if err := base.Model(&model.User{}).Where("role = ?", model.RoleClient).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err := base.Model(&model.User{}).Where("role = ? AND active = ?", model.RoleClient, true).Count(&active).Error
	return total, active, err
}
