package handler

import (
	"net/http"

	"printscrap/internal/dto"
	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct{ svc service.SaleService }

func NewSaleHandler(svc service.SaleService) *SaleHandler { return &SaleHandler{svc: svc} }

// Create godoc
// @Summary      Record a sale
// @Description  Validates every line against available stock, assigns the next INV-YYYYMMDD-NNNN number
// @Description  and posts all outflows atomically. Any shortfall rejects the whole sale.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Sale with its items"
// @Success      201  {object} apierror.Envelope{data=dto.SaleResponse}
// @Failure      400  {object} apierror.Envelope
// @Failure      404  {object} apierror.Envelope
// @Failure      409  {object} apierror.Envelope "Insufficient stock"
// @Failure      500  {object} apierror.Envelope
// @Router       /v1/sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Sale recorded", resp)
}

// List godoc
// @Summary      List sales with their items
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        from   query string false "YYYY-MM-DD, inclusive"
// @Param        to     query string false "YYYY-MM-DD, inclusive"
// @Param        userId query int    false "Tenant (super admin only)"
// @Success      200  {object} apierror.Envelope
// @Router       /v1/sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var f dto.SaleFilter
	if !bindQuery(c, &f) {
		return
	}
	tenant, valid := tenantFor(c, f.UserID)
	if !valid {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), tenant, f)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Sales", resp)
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var q dto.TenantQuery
	if !bindQuery(c, &q) {
		return
	}
	tenant, valid := tenantFor(c, q.UserID)
	if !valid {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), tenant, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Sale", resp)
}

// Invoice godoc
// @Summary      Download the invoice PDF of a sale
// @Tags         sales
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "Sale ID"
// @Success      200  {file} binary
// @Failure      404  {object} apierror.Envelope
// @Router       /v1/sales/{id}/invoice.pdf [get]
func (h *SaleHandler) Invoice(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	name, data, err := h.svc.InvoicePDF(c.Request.Context(), middleware.GetClaims(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, name, "application/pdf", data)
}
