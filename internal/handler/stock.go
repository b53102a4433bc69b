package handler

import (
	"net/http"

	"printscrap/internal/dto"
	"printscrap/internal/middleware"
	"printscrap/internal/repository"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

type StockHandler struct{ svc service.LedgerService }

func NewStockHandler(svc service.LedgerService) *StockHandler { return &StockHandler{svc: svc} }

// List godoc
// @Summary      Stock ledger of a tenant
// @Description  One row per category / sub-category key with inflow, outflow, balance and average rate.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        userId query int false "Tenant (super admin only)"
// @Success      200  {object} apierror.Envelope{data=[]dto.StockResponse}
// @Router       /v1/stock [get]
func (h *StockHandler) List(c *gin.Context) {
	var q dto.StockQuery
	if !bindQuery(c, &q) {
		return
	}
	tenant, valid := tenantFor(c, q.UserID)
	if !valid {
		return
	}
	resp, err := h.svc.ListForTenant(c.Request.Context(), tenant)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Stock", resp)
}

// Available godoc
// @Summary      Available balance of one ledger key
// @Description  Returns zero quantities when nothing was ever recorded for the key.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        categoryId    query int true  "Category"
// @Param        subCategoryId query int false "Sub-category"
// @Success      200  {object} apierror.Envelope{data=dto.StockResponse}
// @Router       /v1/stock/available [get]
func (h *StockHandler) Available(c *gin.Context) {
	var q dto.AvailableQuery
	if !bindQuery(c, &q) {
		return
	}
	key := repository.StockKey{
		UserID:        middleware.GetClaims(c).UserID,
		CategoryID:    q.CategoryID,
		SubCategoryID: q.SubCategoryID,
	}
	resp, err := h.svc.GetAvailable(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Available stock", resp)
}
