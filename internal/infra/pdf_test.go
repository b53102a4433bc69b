package infra

import (
	"bytes"
	"os"
	"testing"
	"time"

	"printscrap/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSale() *model.Sale {
	remarks := "Collected at gate 2"
	contact := "+919876543210"
	return &model.Sale{
		InvoiceNumber: "INV-20261016-0001",
		BuyerName:     "Kabadi Traders",
		BuyerContact:  &contact,
		TotalAmount:   decimal.RequireFromString("520.00"),
		Remarks:       &remarks,
		CreatedBy:     7,
		SaleDate:      time.Date(2026, 10, 16, 6, 30, 0, 0, time.UTC),
		Items: []model.SaleItem{
			{
				CategoryID: 1, Quantity: decimal.NewFromInt(30), Rate: decimal.NewFromInt(10), TotalValue: decimal.NewFromInt(300),
				Category: &model.Category{Name: "Paper"},
			},
			{
				CategoryID: 2, Quantity: decimal.NewFromInt(11), Rate: decimal.NewFromInt(20), TotalValue: decimal.NewFromInt(220),
				Category: &model.Category{Name: "Plates"}, SubCategory: &model.SubCategory{Name: "CTP aluminium"},
			},
		},
	}
}

func TestInvoicePDFBytes(t *testing.T) {
	data, err := InvoicePDFBytes(sampleSale(), InvoiceParty{CompanyName: "Sharma Printers"}, time.UTC)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGenerateInvoicePDF_WritesPerTenantFile(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateInvoicePDF(sampleSale(), InvoiceParty{CompanyName: "Sharma Printers"}, time.UTC, dir)
	require.NoError(t, err)
	assert.Contains(t, path, "INV-20261016-0001.pdf")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestItemLabel(t *testing.T) {
	s := sampleSale()
	assert.Equal(t, "Paper", itemLabel(s.Items[0]))
	assert.Equal(t, "Plates / CTP aluminium", itemLabel(s.Items[1]))
	assert.Equal(t, "Category 9", itemLabel(model.SaleItem{CategoryID: 9}))
}
