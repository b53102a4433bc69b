package repository

import (
	"context"
	"time"

	"printscrap/internal/ledger"
	"printscrap/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockKey identifies one ledger row. A nil SubCategoryID is the
// category-level key and is matched with IS NULL.
type StockKey struct {
	UserID        uint
	CategoryID    uint
	SubCategoryID *uint
}

func (k StockKey) String() string {
	return model.LedgerKeyOf(k.UserID, k.CategoryID, k.SubCategoryID)
}

// StockRow is a ledger row joined with its display names and the category
// market rate used as the average-rate fallback.
type StockRow struct {
	model.StockLedger
	CategoryName    string
	SubCategoryName *string
	MarketRate      decimal.Decimal
}

type StockRepository interface {
	// RecordInflowTx creates the row if missing, locks it and folds the
	// inflow into its accumulators. Returns the updated row.
	RecordInflowTx(tx *gorm.DB, key StockKey, unit string, quantity, rate decimal.Decimal) (*model.StockLedger, error)
	// RecordOutflowTx decrements available stock only if enough is there.
	// Returns ledger.ErrInsufficientStock when no row qualified.
	RecordOutflowTx(tx *gorm.DB, key StockKey, quantity decimal.Decimal) error
	FindTx(tx *gorm.DB, key StockKey) (*model.StockLedger, error)
	Find(ctx context.Context, key StockKey) (*model.StockLedger, error)
	ListByUser(ctx context.Context, userID uint) ([]StockRow, error)
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func byKey(q *gorm.DB, k StockKey) *gorm.DB {
	q = q.Where("user_id = ? AND category_id = ?", k.UserID, k.CategoryID)
	if k.SubCategoryID == nil {
		return q.Where("sub_category_id IS NULL")
	}
	return q.Where("sub_category_id = ?", *k.SubCategoryID)
}

func (r *stockRepo) RecordInflowTx(tx *gorm.DB, key StockKey, unit string, quantity, rate decimal.Decimal) (*model.StockLedger, error) {
	seed := model.StockLedger{
		LedgerKey:     key.String(),
		UserID:        key.UserID,
		CategoryID:    key.CategoryID,
		SubCategoryID: key.SubCategoryID,
		Unit:          unit,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ledger_key"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, err
	}

	var row model.StockLedger
	if err := byKey(tx.Clauses(clause.Locking{Strength: "UPDATE"}), key).First(&row).Error; err != nil {
		return nil, err
	}

	pos, err := ledger.Position{
		TotalInflow:  row.TotalInflow,
		TotalOutflow: row.TotalOutflow,
		InflowCost:   row.InflowCost,
	}.Inflow(quantity, rate)
	if err != nil {
		return nil, err
	}

	row.TotalInflow = pos.TotalInflow
	row.InflowCost = pos.InflowCost
	row.AvailableStock = pos.Available()
	row.AverageRate = pos.AverageRate(decimal.Zero)
	row.TotalValue = pos.TotalValue(decimal.Zero)
	if row.Unit == "" {
		row.Unit = unit
	}
	err = tx.Model(&model.StockLedger{}).Where("id = ?", row.ID).Updates(map[string]any{
		"total_inflow":    row.TotalInflow,
		"inflow_cost":     row.InflowCost,
		"available_stock": row.AvailableStock,
		"average_rate":    row.AverageRate,
		"total_value":     row.TotalValue,
		"unit":            row.Unit,
		"updated_at":      time.Now(),
	}).Error
	return &row, err
}

func (r *stockRepo) RecordOutflowTx(tx *gorm.DB, key StockKey, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return ledger.ErrNonPositiveQuantity
	}
	res := byKey(tx.Model(&model.StockLedger{}), key).
		Where("available_stock >= ?", quantity).
		Updates(map[string]any{
			"total_outflow":   gorm.Expr("total_outflow + ?", quantity),
			"available_stock": gorm.Expr("available_stock - ?", quantity),
			"total_value":     gorm.Expr("(available_stock - ?) * average_rate", quantity),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrInsufficientStock
	}
	return nil
}

func (r *stockRepo) FindTx(tx *gorm.DB, key StockKey) (*model.StockLedger, error) {
	var row model.StockLedger
	err := byKey(tx, key).Limit(1).Find(&row).Error
	if err != nil || row.ID == 0 {
		return nil, err
	}
	return &row, nil
}

// Find returns nil, nil when the key has never received an inflow.
func (r *stockRepo) Find(ctx context.Context, key StockKey) (*model.StockLedger, error) {
	return r.FindTx(r.db.WithContext(ctx), key)
}

func (r *stockRepo) ListByUser(ctx context.Context, userID uint) ([]StockRow, error) {
	var rows []StockRow
	err := r.db.WithContext(ctx).
		Table("stock AS s").
		Select("s.*, c.name AS category_name, sc.name AS sub_category_name, c.market_rate AS market_rate").
		Joins("JOIN categories c ON c.id = s.category_id").
		Joins("LEFT JOIN sub_categories sc ON sc.id = s.sub_category_id").
		Where("s.user_id = ?", userID).
		Order("c.name ASC, COALESCE(sc.name, '') ASC").
		Scan(&rows).Error
	return rows, err
}
