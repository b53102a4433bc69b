package repository

import (
	"context"
	"time"

	"printscrap/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScrapEntryQuery narrows a tenant's entries. Zero values mean "no filter";
// Limit 0 returns every row (reports).
type ScrapEntryQuery struct {
	From         *time.Time
	To           *time.Time
	CategoryID   uint
	DepartmentID uint
	EntryType    string
	Offset       int
	Limit        int
}

type ScrapEntryRepository interface {
	CreateTx(tx *gorm.DB, e *model.ScrapEntry) error
	FindByID(ctx context.Context, userID, id uint) (*model.ScrapEntry, error)
	List(ctx context.Context, userID uint, q ScrapEntryQuery) ([]model.ScrapEntry, int64, error)
	SumBetween(ctx context.Context, userID uint, from, to time.Time) (decimal.Decimal, int64, error)
	DB() *gorm.DB
}

type scrapEntryRepo struct{ db *gorm.DB }

func NewScrapEntryRepository(db *gorm.DB) ScrapEntryRepository { return &scrapEntryRepo{db: db} }

func (r *scrapEntryRepo) DB() *gorm.DB { return r.db }

func (r *scrapEntryRepo) CreateTx(tx *gorm.DB, e *model.ScrapEntry) error {
	// Associations are loaded for display only; never upsert them from here.
	return tx.Omit(clause.Associations).Create(e).Error
}

func withRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("SubCategory").Preload("Department").Preload("Machine")
}

func (r *scrapEntryRepo) FindByID(ctx context.Context, userID, id uint) (*model.ScrapEntry, error) {
	var e model.ScrapEntry
	err := r.db.WithContext(ctx).Scopes(tenant(userID), withRefs).First(&e, id).Error
	return &e, err
}

func (r *scrapEntryRepo) List(ctx context.Context, userID uint, q ScrapEntryQuery) ([]model.ScrapEntry, int64, error) {
	var (
		entries []model.ScrapEntry
		total   int64
	)
	base := r.db.WithContext(ctx).Model(&model.ScrapEntry{}).Scopes(tenant(userID))
	base = dateRange(base, "created_at", q.From, q.To)
	if q.CategoryID != 0 {
		base = base.Where("category_id = ?", q.CategoryID)
	}
	if q.DepartmentID != 0 {
		base = base.Where("department_id = ?", q.DepartmentID)
	}
	if q.EntryType != "" {
		base = base.Where("entry_type = ?", q.EntryType)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := base.Scopes(withRefs).Order("created_at DESC, id DESC")
	if q.Limit > 0 {
		find = find.Offset(q.Offset).Limit(q.Limit)
	}
	err := find.Find(&entries).Error
	return entries, total, err
}

func (r *scrapEntryRepo) SumBetween(ctx context.Context, userID uint, from, to time.Time) (decimal.Decimal, int64, error) {
	var agg struct {
		Total decimal.Decimal
		N     int64
	}
	err := r.db.WithContext(ctx).Model(&model.ScrapEntry{}).
		Scopes(tenant(userID)).
		Where("created_at >= ? AND created_at < ?", from, to).
		Select("COALESCE(SUM(total_value), 0) AS total, COUNT(*) AS n").
		Scan(&agg).Error
	return agg.Total, agg.N, err
}
