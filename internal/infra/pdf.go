package infra

// pdf.go renders sale invoices with go-pdf/fpdf: seller header, invoice number
// and date, buyer block, one row per sale item, and the bold total.

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"printscrap/internal/model"

	"github.com/go-pdf/fpdf"
)

// InvoiceParty is the seller printed in the invoice header.
type InvoiceParty struct {
	CompanyName string
	Email       string
	Phone       string
}

// RenderInvoicePDF writes the invoice of sale to w. Items must have their
// Category and SubCategory preloaded for the description column.
func RenderInvoicePDF(w io.Writer, sale *model.Sale, seller InvoiceParty, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(sale.InvoiceNumber, false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, tr(seller.CompanyName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if seller.Email != "" {
		pdf.CellFormat(contentW, 5, seller.Email, "", 1, "L", false, 0, "")
	}
	if seller.Phone != "" {
		pdf.CellFormat(contentW, 5, seller.Phone, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "SCRAP SALE INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Invoice / buyer info ─────────────────────────────────────────────────
	half := contentW / 2
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(half, 5, "Invoice No: "+sale.InvoiceNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, "Date: "+sale.SaleDate.In(loc).Format("02 Jan 2006 15:04"), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Buyer: "+sale.BuyerName), "", 1, "L", false, 0, "")
	if sale.BuyerContact != nil && *sale.BuyerContact != "" {
		pdf.CellFormat(contentW, 5, "Contact: "+*sale.BuyerContact, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Items ────────────────────────────────────────────────────────────────
	colNo := contentW * 0.07
	colDesc := contentW * 0.45
	colQty := contentW * 0.14
	colRate := contentW * 0.14
	colTotal := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colNo, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colDesc, 7, "Material", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colRate, 7, "Rate", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, item := range sale.Items {
		pdf.CellFormat(colNo, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colDesc, 6, tr(truncate(itemLabel(item), 48)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, item.Quantity.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colRate, 6, item.Rate.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 6, item.TotalValue.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colNo+colDesc+colQty+colRate, 7, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 7, sale.TotalAmount.StringFixed(2), "1", 1, "R", false, 0, "")

	if sale.Remarks != nil && *sale.Remarks != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, tr("Remarks: "+*sale.Remarks), "", "L", false)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Computer generated invoice.", "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

// InvoicePDFBytes renders the invoice into memory (email attachments, HTTP downloads).
func InvoicePDFBytes(sale *model.Sale, seller InvoiceParty, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderInvoicePDF(&buf, sale, seller, loc); err != nil {
		return nil, fmt.Errorf("pdf: render %s: %w", sale.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

// GenerateInvoicePDF renders the invoice and stores it under storagePath.
func GenerateInvoicePDF(sale *model.Sale, seller InvoiceParty, loc *time.Location, storagePath string) (string, error) {
	data, err := InvoicePDFBytes(sale, seller, loc)
	if err != nil {
		return "", err
	}
	return SaveInvoicePDF(storagePath, sale, data)
}

// SaveInvoicePDF writes data to storagePath/<tenant>/<invoice>.pdf, creating
// the directory if needed, and returns the file path.
func SaveInvoicePDF(storagePath string, sale *model.Sale, data []byte) (string, error) {
	dir := filepath.Join(storagePath, fmt.Sprintf("%d", sale.CreatedBy))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(dir, sale.InvoiceNumber+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}

func itemLabel(item model.SaleItem) string {
	label := fmt.Sprintf("Category %d", item.CategoryID)
	if item.Category != nil {
		label = item.Category.Name
	}
	if item.SubCategory != nil {
		label += " / " + item.SubCategory.Name
	}
	return label
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
