package repository

import (
	"context"
	"testing"

	"printscrap/internal/ledger"
	"printscrap/internal/model"
	"printscrap/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func seedCategory(t *testing.T, db *gorm.DB, userID uint, name string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, Unit: "Kg", MarketRate: dec("5"), CreatedBy: userID}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedSub(t *testing.T, db *gorm.DB, userID, categoryID uint, name string) *model.SubCategory {
	t.Helper()
	s := &model.SubCategory{CategoryID: categoryID, Name: name, Unit: "Kg", CreatedBy: userID}
	require.NoError(t, db.Omit("Category").Create(s).Error)
	return s
}

func inflow(t *testing.T, repo StockRepository, key StockKey, q, r string) *model.StockLedger {
	t.Helper()
	var row *model.StockLedger
	err := repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = repo.RecordInflowTx(tx, key, "Kg", dec(q), dec(r))
		return err
	})
	require.NoError(t, err)
	return row
}

func outflow(repo StockRepository, key StockKey, q string) error {
	return repo.DB().Transaction(func(tx *gorm.DB) error {
		return repo.RecordOutflowTx(tx, key, dec(q))
	})
}

func TestRecordInflow_CreatesThenAccumulates(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewStockRepository(db)
	cat := seedCategory(t, db, 1, "Paper")
	key := StockKey{UserID: 1, CategoryID: cat.ID}

	first := inflow(t, repo, key, "100", "10")
	assertDec(t, "100", first.AvailableStock)
	assertDec(t, "10", first.AverageRate)

	inflow(t, repo, key, "50", "4")

	row, err := repo.Find(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, row)
	assertDec(t, "150", row.TotalInflow)
	assertDec(t, "1200", row.InflowCost)
	assertDec(t, "150", row.AvailableStock)
	assertDec(t, "8", row.AverageRate)
	assertDec(t, "1200", row.TotalValue)
	assert.Equal(t, "1:"+itoa(cat.ID)+":-", row.LedgerKey)

	var n int64
	require.NoError(t, db.Model(&model.StockLedger{}).Count(&n).Error)
	assert.EqualValues(t, 1, n, "one row per ledger key")
}

func TestRecordOutflow_KeepsAverageRate(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewStockRepository(db)
	cat := seedCategory(t, db, 1, "Paper")
	key := StockKey{UserID: 1, CategoryID: cat.ID}

	inflow(t, repo, key, "100", "10")
	require.NoError(t, outflow(repo, key, "30"))

	row, err := repo.Find(context.Background(), key)
	require.NoError(t, err)
	assertDec(t, "30", row.TotalOutflow)
	assertDec(t, "70", row.AvailableStock)
	assertDec(t, "10", row.AverageRate)
	assertDec(t, "700", row.TotalValue)
}

func TestRecordOutflow_RefusesOversell(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewStockRepository(db)
	cat := seedCategory(t, db, 1, "Paper")
	key := StockKey{UserID: 1, CategoryID: cat.ID}

	inflow(t, repo, key, "50", "10")
	err := outflow(repo, key, "60")
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	row, err := repo.Find(context.Background(), key)
	require.NoError(t, err)
	assertDec(t, "50", row.AvailableStock, "failed outflow leaves the row untouched")
	assertDec(t, "0", row.TotalOutflow)

	require.NoError(t, outflow(repo, key, "50"), "exact balance is allowed")
	row, err = repo.Find(context.Background(), key)
	require.NoError(t, err)
	assertDec(t, "0", row.AvailableStock)
	assertDec(t, "0", row.TotalValue)
}

func TestRecordOutflow_MissingRowIsInsufficient(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewStockRepository(db)

	err := outflow(repo, StockKey{UserID: 1, CategoryID: 42}, "1")
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
}

func TestNullSubCategoryIsItsOwnKey(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewStockRepository(db)
	cat := seedCategory(t, db, 1, "Paper")
	sub := seedSub(t, db, 1, cat.ID, "A4 trim")

	catKey := StockKey{UserID: 1, CategoryID: cat.ID}
	subKey := StockKey{UserID: 1, CategoryID: cat.ID, SubCategoryID: &sub.ID}

	inflow(t, repo, catKey, "40", "2")
	assert.ErrorIs(t, outflow(repo, subKey, "1"), ledger.ErrInsufficientStock,
		"category-level stock does not serve a sub-category")

	inflow(t, repo, subKey, "10", "3")
	require.NoError(t, outflow(repo, subKey, "4"))

	catRow, err := repo.Find(context.Background(), catKey)
	require.NoError(t, err)
	assertDec(t, "40", catRow.AvailableStock)

	subRow, err := repo.Find(context.Background(), subKey)
	require.NoError(t, err)
	assertDec(t, "6", subRow.AvailableStock)
}

func TestRecordOutflow_TenantsDoNotShareStock(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewStockRepository(db)
	cat := seedCategory(t, db, 1, "Paper")

	inflow(t, repo, StockKey{UserID: 1, CategoryID: cat.ID}, "10", "1")
	err := outflow(repo, StockKey{UserID: 2, CategoryID: cat.ID}, "1")
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
}

func TestListByUser_OrderedByNames(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewStockRepository(db)
	plates := seedCategory(t, db, 1, "Plates")
	paper := seedCategory(t, db, 1, "Paper")
	trim := seedSub(t, db, 1, paper.ID, "Trim")
	board := seedSub(t, db, 1, paper.ID, "Board")
	other := seedCategory(t, db, 2, "Aluminium")

	inflow(t, repo, StockKey{UserID: 1, CategoryID: plates.ID}, "1", "1")
	inflow(t, repo, StockKey{UserID: 1, CategoryID: paper.ID, SubCategoryID: &trim.ID}, "1", "1")
	inflow(t, repo, StockKey{UserID: 1, CategoryID: paper.ID}, "1", "1")
	inflow(t, repo, StockKey{UserID: 1, CategoryID: paper.ID, SubCategoryID: &board.ID}, "1", "1")
	inflow(t, repo, StockKey{UserID: 2, CategoryID: other.ID}, "1", "1")

	rows, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.CategoryName
		if r.SubCategoryName != nil {
			names[i] += "/" + *r.SubCategoryName
		}
	}
	assert.Equal(t, []string{"Paper", "Paper/Board", "Paper/Trim", "Plates"}, names)
	assertDec(t, "5", rows[0].MarketRate)
}
