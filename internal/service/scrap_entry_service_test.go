package service

import (
	"testing"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/model"
	"printscrap/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateScrapEntry_UpdatesWeightedAverage(t *testing.T) {
	e := newEnv(t)
	u := e.client(t, "a@press.test")
	paper := e.category(t, u.ID, "Paper", "9")
	dept := e.department(t, u.ID, "Binding")
	folder := e.machine(t, u.ID, dept.ID, "Folder 2")

	first, err := e.entrySvc.Create(e.ctx, u.ID, dto.CreateScrapEntryRequest{
		EntryType:    model.EntryJobBased,
		CategoryID:   paper.ID,
		DepartmentID: dept.ID,
		MachineID:    &folder.ID,
		Quantity:     dec("100"),
		Rate:         dec("5"),
		JobNumber:    ptr(" J-1042 "),
	})
	require.NoError(t, err)
	assertDec(t, "500", first.TotalValue)
	assert.Equal(t, "Kg", first.Unit)
	assert.Equal(t, "Folder 2", first.MachineName)
	require.NotNil(t, first.JobNumber)
	assert.Equal(t, "J-1042", *first.JobNumber)

	_, err = e.entrySvc.Create(e.ctx, u.ID, dto.CreateScrapEntryRequest{
		EntryType:    model.EntryGeneral,
		CategoryID:   paper.ID,
		DepartmentID: dept.ID,
		Quantity:     dec("25"),
		Rate:         dec("10"),
	})
	require.NoError(t, err)

	stock, err := e.ledgerSvc.GetAvailable(e.ctx, repository.StockKey{UserID: u.ID, CategoryID: paper.ID})
	require.NoError(t, err)
	assertDec(t, "125", stock.AvailableStock)
	assertDec(t, "6", stock.AverageRate)
	assertDec(t, "750", stock.TotalValue)
}

func TestCreateScrapEntry_AverageRoundsAtRead(t *testing.T) {
	e := newEnv(t)
	u := e.client(t, "a@press.test")
	paper := e.category(t, u.ID, "Paper", "9")
	dept := e.department(t, u.ID, "Press")

	for _, in := range [][2]string{{"100", "5"}, {"50", "8.6"}} {
		_, err := e.entrySvc.Create(e.ctx, u.ID, dto.CreateScrapEntryRequest{
			EntryType: model.EntryGeneral, CategoryID: paper.ID, DepartmentID: dept.ID,
			Quantity: dec(in[0]), Rate: dec(in[1]),
		})
		require.NoError(t, err)
	}
	stock, err := e.ledgerSvc.GetAvailable(e.ctx, repository.StockKey{UserID: u.ID, CategoryID: paper.ID})
	require.NoError(t, err)
	assertDec(t, "6.2", stock.AverageRate)
	assertDec(t, "930", stock.TotalValue)
}

func TestCreateScrapEntry_Validation(t *testing.T) {
	e := newEnv(t)
	u := e.client(t, "a@press.test")
	other := e.client(t, "b@press.test")
	paper := e.category(t, u.ID, "Paper", "9")
	plates := e.category(t, u.ID, "Plates", "9")
	ctp := e.sub(t, u.ID, plates.ID, "CTP")
	press := e.department(t, u.ID, "Press")
	binding := e.department(t, u.ID, "Binding")
	folder := e.machine(t, u.ID, binding.ID, "Folder")
	foreignDept := e.department(t, other.ID, "Press")

	base := func() dto.CreateScrapEntryRequest {
		return dto.CreateScrapEntryRequest{
			EntryType: model.EntryGeneral, CategoryID: paper.ID, DepartmentID: press.ID,
			Quantity: dec("1"), Rate: dec("1"),
		}
	}
	cases := []struct {
		name  string
		edit  func(r *dto.CreateScrapEntryRequest)
		field string
	}{
		{"job number required", func(r *dto.CreateScrapEntryRequest) { r.EntryType = model.EntryJobBased }, "jobNumber"},
		{"unknown type", func(r *dto.CreateScrapEntryRequest) { r.EntryType = "bulk" }, "entryType"},
		{"zero quantity", func(r *dto.CreateScrapEntryRequest) { r.Quantity = dec("0") }, "quantity"},
		{"negative rate", func(r *dto.CreateScrapEntryRequest) { r.Rate = dec("-0.01") }, "rate"},
		{"sub-cent quantity", func(r *dto.CreateScrapEntryRequest) { r.Quantity = dec("0.004") }, "quantity"},
		{"sub-cent rate", func(r *dto.CreateScrapEntryRequest) { r.Rate = dec("1.005") }, "rate"},
		{"sub of other category", func(r *dto.CreateScrapEntryRequest) { r.SubCategoryID = &ctp.ID }, "subCategoryId"},
		{"machine of other department", func(r *dto.CreateScrapEntryRequest) { r.MachineID = &folder.ID }, "machineId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.edit(&req)
			_, err := e.entrySvc.Create(e.ctx, u.ID, req)
			var v *apierror.ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tc.field, v.Field)
		})
	}

	t.Run("foreign department", func(t *testing.T) {
		req := base()
		req.DepartmentID = foreignDept.ID
		_, err := e.entrySvc.Create(e.ctx, u.ID, req)
		var nf *apierror.NotFoundError
		require.ErrorAs(t, err, &nf)
	})

	var n int64
	require.NoError(t, e.db.Model(&model.ScrapEntry{}).Count(&n).Error)
	assert.Zero(t, n, "rejected entries must not be written")
	require.NoError(t, e.db.Model(&model.StockLedger{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateScrapEntry_InflowMatchesStoredQuantities(t *testing.T) {
	e := newEnv(t)
	u := e.client(t, "a@press.test")
	paper := e.category(t, u.ID, "Paper", "9")
	dept := e.department(t, u.ID, "Press")

	for _, q := range []string{"2.50", "1.500", "0.01"} {
		_, err := e.entrySvc.Create(e.ctx, u.ID, dto.CreateScrapEntryRequest{
			EntryType: model.EntryGeneral, CategoryID: paper.ID, DepartmentID: dept.ID,
			Quantity: dec(q), Rate: dec("4.20"),
		})
		require.NoError(t, err)
	}

	var entries []model.ScrapEntry
	require.NoError(t, e.db.Where("created_by = ?", u.ID).Find(&entries).Error)
	sum := dec("0")
	for _, en := range entries {
		sum = sum.Add(en.Quantity)
	}
	stock, err := e.ledgerSvc.GetAvailable(e.ctx, repository.StockKey{UserID: u.ID, CategoryID: paper.ID})
	require.NoError(t, err)
	assertDec(t, "4.01", sum)
	assertDec(t, sum.String(), stock.TotalInflow)
}

func TestScrapEntryList_Filters(t *testing.T) {
	e := newEnv(t)
	u := e.client(t, "a@press.test")
	paper := e.category(t, u.ID, "Paper", "9")
	plates := e.category(t, u.ID, "Plates", "9")
	dept := e.department(t, u.ID, "Press")

	for _, c := range []uint{paper.ID, paper.ID, plates.ID} {
		_, err := e.entrySvc.Create(e.ctx, u.ID, dto.CreateScrapEntryRequest{
			EntryType: model.EntryGeneral, CategoryID: c, DepartmentID: dept.ID,
			Quantity: dec("1"), Rate: dec("1"),
		})
		require.NoError(t, err)
	}

	page, err := e.entrySvc.List(e.ctx, u.ID, dto.ScrapEntryFilter{CategoryID: paper.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, "Paper", page.Data[0].CategoryName)

	page, err = e.entrySvc.List(e.ctx, u.ID, dto.ScrapEntryFilter{PageQuery: dto.PageQuery{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Data, 1)

	_, err = e.entrySvc.List(e.ctx, u.ID, dto.ScrapEntryFilter{From: "15/03/2024"})
	var v *apierror.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "from", v.Field)
}

func TestGetAvailable_FallsBackToMarketRate(t *testing.T) {
	e := newEnv(t)
	u := e.client(t, "a@press.test")
	paper := e.category(t, u.ID, "Paper", "7.5")

	stock, err := e.ledgerSvc.GetAvailable(e.ctx, repository.StockKey{UserID: u.ID, CategoryID: paper.ID})
	require.NoError(t, err)
	assertDec(t, "0", stock.AvailableStock)
	assertDec(t, "7.5", stock.AverageRate)
	assertDec(t, "0", stock.TotalValue)
	assert.Equal(t, "Kg", stock.Unit)
}

func TestRecordOutflow_Standalone(t *testing.T) {
	e := newEnv(t)
	u := e.client(t, "a@press.test")
	paper := e.category(t, u.ID, "Paper", "9")
	key := repository.StockKey{UserID: u.ID, CategoryID: paper.ID}

	_, err := e.ledgerSvc.RecordInflow(e.ctx, InflowInput{Key: key, Quantity: dec("10"), Rate: dec("4")})
	require.NoError(t, err)

	_, err = e.ledgerSvc.RecordOutflow(e.ctx, key, dec("11"))
	var short *apierror.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Zero(t, short.Item)
	assertDec(t, "10", short.Available)

	got, err := e.ledgerSvc.RecordOutflow(e.ctx, key, dec("4"))
	require.NoError(t, err)
	assertDec(t, "6", got.AvailableStock)
	assertDec(t, "4", got.AverageRate)
}

func TestListForTenant(t *testing.T) {
	e := newEnv(t)
	a := e.client(t, "a@press.test")
	b := e.client(t, "b@press.test")
	paper := e.category(t, a.ID, "Paper", "9")
	a4 := e.sub(t, a.ID, paper.ID, "A4")
	e.stockIn(t, a.ID, paper.ID, &a4.ID, "10", "2")
	e.stockIn(t, a.ID, paper.ID, nil, "5", "1")

	rows, err := e.ledgerSvc.ListForTenant(e.ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].SubCategoryName)
	assert.Equal(t, "A4", rows[1].SubCategoryName)

	rows, err = e.ledgerSvc.ListForTenant(e.ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
