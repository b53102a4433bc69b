package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/infra"
	"printscrap/internal/repository"
)

// ReportService exports a tenant's data as spreadsheets.
type ReportService interface {
	ScrapEntries(ctx context.Context, userID uint, filter dto.ScrapEntryFilter, w io.Writer) (string, error)
	Sales(ctx context.Context, userID uint, filter dto.SaleFilter, w io.Writer) (string, error)
	Stock(ctx context.Context, userID uint, w io.Writer) (string, error)
}

type reportService struct {
	entries repository.ScrapEntryRepository
	sales   repository.SaleRepository
	ledger  LedgerService
	loc     *time.Location
	now     func() time.Time
}

func NewReportService(entries repository.ScrapEntryRepository, sales repository.SaleRepository, ledgerSvc LedgerService, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{entries: entries, sales: sales, ledger: ledgerSvc, loc: loc, now: time.Now}
}

func (s *reportService) fileName(kind string) string {
	return fmt.Sprintf("%s-%s.xlsx", kind, s.now().In(s.loc).Format("20060102"))
}

func (s *reportService) localTime(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02 15:04")
}

func (s *reportService) ScrapEntries(ctx context.Context, userID uint, filter dto.ScrapEntryFilter, w io.Writer) (string, error) {
	from, to, err := parseDayRange(filter.From, filter.To, s.loc)
	if err != nil {
		return "", err
	}
	entries, _, err := s.entries.List(ctx, userID, repository.ScrapEntryQuery{
		From:         from,
		To:           to,
		CategoryID:   filter.CategoryID,
		DepartmentID: filter.DepartmentID,
		EntryType:    filter.EntryType,
	})
	if err != nil {
		return "", apierror.Storage("list scrap entries", err)
	}

	sheet := infra.Sheet{
		Name: "Scrap entries",
		Headers: []string{"Date", "Type", "Category", "Sub-category", "Department", "Machine",
			"Job number", "Quantity", "Unit", "Rate", "Total value", "Remarks"},
	}
	for i := range entries {
		e := scrapEntryToResponse(&entries[i])
		sheet.Rows = append(sheet.Rows, []any{
			s.localTime(entries[i].CreatedAt), e.EntryType, e.CategoryName, e.SubCategoryName,
			e.DepartmentName, e.MachineName, derefOr(e.JobNumber, ""),
			e.Quantity.InexactFloat64(), e.Unit, e.Rate.InexactFloat64(), e.TotalValue.InexactFloat64(),
			derefOr(e.Remarks, ""),
		})
	}
	if err := infra.WriteWorkbook(w, sheet); err != nil {
		return "", apierror.Storage("write workbook", err)
	}
	return s.fileName("scrap-entries"), nil
}

// Sales writes one sheet of invoices and one of their line items.
func (s *reportService) Sales(ctx context.Context, userID uint, filter dto.SaleFilter, w io.Writer) (string, error) {
	from, to, err := parseDayRange(filter.From, filter.To, s.loc)
	if err != nil {
		return "", err
	}
	sales, _, err := s.sales.List(ctx, userID, repository.SaleQuery{From: from, To: to})
	if err != nil {
		return "", apierror.Storage("list sales", err)
	}

	invoices := infra.Sheet{
		Name:    "Sales",
		Headers: []string{"Invoice", "Date", "Buyer", "Contact", "Email", "Items", "Total", "Remarks"},
	}
	lines := infra.Sheet{
		Name:    "Sale items",
		Headers: []string{"Invoice", "Category", "Sub-category", "Quantity", "Rate", "Total"},
	}
	for i := range sales {
		sale := &sales[i]
		invoices.Rows = append(invoices.Rows, []any{
			sale.InvoiceNumber, s.localTime(sale.SaleDate), sale.BuyerName,
			derefOr(sale.BuyerContact, ""), derefOr(sale.BuyerEmail, ""),
			len(sale.Items), sale.TotalAmount.InexactFloat64(), derefOr(sale.Remarks, ""),
		})
		for _, it := range saleToResponse(sale).SaleItems {
			lines.Rows = append(lines.Rows, []any{
				sale.InvoiceNumber, it.CategoryName, it.SubCategoryName,
				it.Quantity.InexactFloat64(), it.Rate.InexactFloat64(), it.TotalValue.InexactFloat64(),
			})
		}
	}
	if err := infra.WriteWorkbook(w, invoices, lines); err != nil {
		return "", apierror.Storage("write workbook", err)
	}
	return s.fileName("sales"), nil
}

func (s *reportService) Stock(ctx context.Context, userID uint, w io.Writer) (string, error) {
	rows, err := s.ledger.ListForTenant(ctx, userID)
	if err != nil {
		return "", err
	}
	sheet := infra.Sheet{
		Name: "Stock",
		Headers: []string{"Category", "Sub-category", "Unit", "Total inflow", "Total outflow",
			"Available", "Average rate", "Total value"},
	}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			r.CategoryName, r.SubCategoryName, r.Unit,
			r.TotalInflow.InexactFloat64(), r.TotalOutflow.InexactFloat64(), r.AvailableStock.InexactFloat64(),
			r.AverageRate.InexactFloat64(), r.TotalValue.InexactFloat64(),
		})
	}
	if err := infra.WriteWorkbook(w, sheet); err != nil {
		return "", apierror.Storage("write workbook", err)
	}
	return s.fileName("stock"), nil
}
