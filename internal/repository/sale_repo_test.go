package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"printscrap/internal/model"
	"printscrap/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func nextSeq(t *testing.T, repo SaleRepository, userID uint, day string) int {
	t.Helper()
	var n int
	err := repo.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = repo.NextInvoiceSeqTx(tx, userID, day)
		return err
	})
	require.NoError(t, err)
	return n
}

func TestNextInvoiceSeq_PerTenantPerDay(t *testing.T) {
	repo := NewSaleRepository(testutil.NewSQLite(t))

	assert.Equal(t, 1, nextSeq(t, repo, 1, "20261016"))
	assert.Equal(t, 2, nextSeq(t, repo, 1, "20261016"))
	assert.Equal(t, 1, nextSeq(t, repo, 2, "20261016"), "other tenant starts its own counter")
	assert.Equal(t, 1, nextSeq(t, repo, 1, "20261017"), "counter resets every day")
	assert.Equal(t, 3, nextSeq(t, repo, 1, "20261016"))
}

func TestNextInvoiceSeq_RollsBackWithTransaction(t *testing.T) {
	repo := NewSaleRepository(testutil.NewSQLite(t))
	assert.Equal(t, 1, nextSeq(t, repo, 1, "20261016"))

	_ = repo.DB().Transaction(func(tx *gorm.DB) error {
		_, err := repo.NextInvoiceSeqTx(tx, 1, "20261016")
		require.NoError(t, err)
		return assert.AnError
	})
	assert.Equal(t, 2, nextSeq(t, repo, 1, "20261016"))
}

func TestSaleRepository_CreateFindListTenantScoped(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewSaleRepository(db)
	cat := seedCategory(t, db, 1, "Paper")
	now := time.Now().UTC()

	sale := &model.Sale{
		InvoiceNumber: "INV-20261016-0001",
		BuyerName:     "Kabadi Traders",
		TotalAmount:   dec("300"),
		CreatedBy:     1,
		SaleDate:      now,
		Items: []model.SaleItem{
			{CategoryID: cat.ID, Quantity: dec("30"), Rate: dec("10"), TotalValue: dec("300")},
		},
	}
	require.NoError(t, repo.DB().Transaction(func(tx *gorm.DB) error { return repo.CreateTx(tx, sale) }))
	require.NotZero(t, sale.ID)
	require.NotZero(t, sale.Items[0].SaleID)

	got, err := repo.FindByID(context.Background(), 1, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Paper", got.Items[0].Category.Name)

	_, err = repo.FindByID(context.Background(), 2, sale.ID)
	assert.True(t, IsNotFound(err), "other tenant cannot read the sale")

	list, total, err := repo.List(context.Background(), 1, SaleQuery{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 1)

	list, total, err = repo.List(context.Background(), 2, SaleQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	sum, n, err := repo.SumBetween(context.Background(), 1, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assertDec(t, "300", sum)
}

func TestSaleRepository_DuplicateInvoiceIsUniqueViolation(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewSaleRepository(db)
	mk := func(userID uint) *model.Sale {
		return &model.Sale{InvoiceNumber: "INV-20261016-0001", BuyerName: "B", TotalAmount: dec("1"), CreatedBy: userID, SaleDate: time.Now().UTC()}
	}
	require.NoError(t, repo.CreateTx(db, mk(1)))
	require.NoError(t, repo.CreateTx(db, mk(2)), "same number under another tenant is fine")

	err := repo.CreateTx(db, mk(1))
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}
