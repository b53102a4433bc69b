package handler

import (
	"bytes"

	"printscrap/internal/dto"
	"printscrap/internal/infra"
	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler streams XLSX exports of the caller's own tenant. Workbooks are
// buffered so a failure can still answer with a JSON error.
type ReportHandler struct{ svc service.ReportService }

func NewReportHandler(svc service.ReportService) *ReportHandler { return &ReportHandler{svc: svc} }

// ScrapEntries godoc
// @Summary      Export scrap entries as XLSX
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        from query string false "YYYY-MM-DD, inclusive"
// @Param        to   query string false "YYYY-MM-DD, inclusive"
// @Success      200  {file} binary
// @Router       /v1/reports/scrap-entries.xlsx [get]
func (h *ReportHandler) ScrapEntries(c *gin.Context) {
	var f dto.ScrapEntryFilter
	if !bindQuery(c, &f) {
		return
	}
	var buf bytes.Buffer
	name, err := h.svc.ScrapEntries(c.Request.Context(), middleware.GetClaims(c).UserID, f, &buf)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, name, infra.XLSXContentType, buf.Bytes())
}

func (h *ReportHandler) Sales(c *gin.Context) {
	var f dto.SaleFilter
	if !bindQuery(c, &f) {
		return
	}
	var buf bytes.Buffer
	name, err := h.svc.Sales(c.Request.Context(), middleware.GetClaims(c).UserID, f, &buf)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, name, infra.XLSXContentType, buf.Bytes())
}

func (h *ReportHandler) Stock(c *gin.Context) {
	var buf bytes.Buffer
	name, err := h.svc.Stock(c.Request.Context(), middleware.GetClaims(c).UserID, &buf)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, name, infra.XLSXContentType, buf.Bytes())
}
