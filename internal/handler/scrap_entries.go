package handler

import (
	"net/http"

	"printscrap/internal/dto"
	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

type ScrapEntryHandler struct{ svc service.ScrapEntryService }

func NewScrapEntryHandler(svc service.ScrapEntryService) *ScrapEntryHandler {
	return &ScrapEntryHandler{svc: svc}
}

// Create godoc
// @Summary      Record a scrap entry
// @Description  Stores the entry and adds its quantity to the stock ledger in one transaction,
// @Description  recomputing the weighted average rate of the category / sub-category key.
// @Tags         scrap-entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateScrapEntryRequest true "Entry"
// @Success      201  {object} apierror.Envelope{data=dto.ScrapEntryResponse}
// @Failure      400  {object} apierror.Envelope
// @Failure      404  {object} apierror.Envelope
// @Failure      500  {object} apierror.Envelope
// @Router       /v1/scrap-entries [post]
func (h *ScrapEntryHandler) Create(c *gin.Context) {
	var req dto.CreateScrapEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Scrap entry recorded", resp)
}

// List godoc
// @Summary      List scrap entries
// @Tags         scrap-entries
// @Produce      json
// @Security     BearerAuth
// @Param        from         query string false "YYYY-MM-DD, inclusive"
// @Param        to           query string false "YYYY-MM-DD, inclusive"
// @Param        categoryId   query int    false "Category"
// @Param        departmentId query int    false "Department"
// @Param        entryType    query string false "job-based | general"
// @Param        userId       query int    false "Tenant (super admin only)"
// @Success      200  {object} apierror.Envelope
// @Router       /v1/scrap-entries [get]
func (h *ScrapEntryHandler) List(c *gin.Context) {
	var f dto.ScrapEntryFilter
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
	ok(c, http.StatusOK, "Scrap entries", resp)
}

func (h *ScrapEntryHandler) Get(c *gin.Context) {
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
	ok(c, http.StatusOK, "Scrap entry", resp)
}
