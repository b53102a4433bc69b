package repository

import (
	"context"

	"printscrap/internal/model"

	"gorm.io/gorm"
)

type UnitRepository interface {
	Create(ctx context.Context, u *model.Unit) error
	FindByID(ctx context.Context, userID, id uint) (*model.Unit, error)
	List(ctx context.Context, userID uint) ([]model.Unit, error)
	Update(ctx context.Context, u *model.Unit) error
	Delete(ctx context.Context, userID, id uint) error
	ExistsBySymbol(ctx context.Context, userID uint, symbol string, exceptID uint) (bool, error)
}

type unitRepo struct{ db *gorm.DB }

func NewUnitRepository(db *gorm.DB) UnitRepository { return &unitRepo{db: db} }

func (r *unitRepo) Create(ctx context.Context, u *model.Unit) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *unitRepo) FindByID(ctx context.Context, userID, id uint) (*model.Unit, error) {
	var u model.Unit
	err := r.db.WithContext(ctx).Scopes(tenant(userID)).First(&u, id).Error
	return &u, err
}

func (r *unitRepo) List(ctx context.Context, userID uint) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.WithContext(ctx).Scopes(tenant(userID)).Order("name ASC").Find(&units).Error
	return units, err
}

func (r *unitRepo) Update(ctx context.Context, u *model.Unit) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *unitRepo) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Scopes(tenant(userID)).Delete(&model.Unit{}, id).Error
}

func (r *unitRepo) ExistsBySymbol(ctx context.Context, userID uint, symbol string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Unit{}).Scopes(tenant(userID)).
		Where("LOWER(symbol) = LOWER(?) AND id <> ?", symbol, exceptID).
		Count(&n).Error
	return n > 0, err
}
