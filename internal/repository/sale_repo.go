package repository

import (
	"context"
	"time"

	"printscrap/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleQuery narrows a tenant's sales. Zero values mean "no filter"; Limit 0
// returns every row.
type SaleQuery struct {
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

type SaleRepository interface {
	// NextInvoiceSeqTx increments the tenant's counter for day (YYYYMMDD) and
	// returns the new value. The counter row stays locked until tx ends.
	NextInvoiceSeqTx(tx *gorm.DB, userID uint, day string) (int, error)
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, userID, id uint) (*model.Sale, error)
	List(ctx context.Context, userID uint, q SaleQuery) ([]model.Sale, int64, error)
	SumBetween(ctx context.Context, userID uint, from, to time.Time) (decimal.Decimal, int64, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) NextInvoiceSeqTx(tx *gorm.DB, userID uint, day string) (int, error) {
	seed := model.InvoiceSequence{UserID: userID, Day: day, LastSeq: 1}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_seq": gorm.Expr("invoice_sequences.last_seq + 1"),
		}),
	}).Create(&seed).Error
	if err != nil {
		return 0, err
	}

	var cur model.InvoiceSequence
	err = tx.Where("user_id = ? AND day = ?", userID, day).First(&cur).Error
	return cur.LastSeq, err
}

// CreateTx inserts the sale header and then its items.
func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, userID, id uint) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Scopes(tenant(userID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sale_items.id ASC") }).
		Preload("Items.Category").
		Preload("Items.SubCategory").
		First(&s, id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, userID uint, q SaleQuery) ([]model.Sale, int64, error) {
	var (
		sales []model.Sale
		total int64
	)
	base := dateRange(r.db.WithContext(ctx).Model(&model.Sale{}).Scopes(tenant(userID)), "sale_date", q.From, q.To)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := base.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sale_items.id ASC") }).
		Preload("Items.Category").
		Preload("Items.SubCategory").
		Order("sale_date DESC, id DESC")
	if q.Limit > 0 {
		find = find.Offset(q.Offset).Limit(q.Limit)
	}
	err := find.Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) SumBetween(ctx context.Context, userID uint, from, to time.Time) (decimal.Decimal, int64, error) {
	var agg struct {
		Total decimal.Decimal
		N     int64
	}
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Scopes(tenant(userID)).
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS n").
		Scan(&agg).Error
	return agg.Total, agg.N, err
}
