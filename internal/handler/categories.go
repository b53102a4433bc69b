package handler

import (
	"net/http"

	"printscrap/internal/dto"
	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler serves both /v1/categories and /v1/sub-categories.
type CategoryHandler struct{ svc service.CategoryService }

func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// Create godoc
// @Summary      Create a scrap category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CategoryRequest true "Category"
// @Success      201  {object} apierror.Envelope{data=dto.CategoryResponse}
// @Failure      400  {object} apierror.Envelope
// @Failure      409  {object} apierror.Envelope
// @Router       /v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Category created", resp)
}

// List godoc
// @Summary      List categories with their sub-category counts
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} apierror.Envelope{data=[]dto.CategoryResponse}
// @Router       /v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetClaims(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Categories", resp)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetClaims(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Category", resp)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.CategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetClaims(c).UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Category updated", resp)
}

// Delete godoc
// @Summary      Delete a category
// @Description  Refused with 409 while sub-categories, stock, entries or sale items reference it.
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Category ID"
// @Success      200  {object} apierror.Envelope
// @Failure      409  {object} apierror.Envelope
// @Router       /v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetClaims(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Category deleted", nil)
}

// ── Sub-categories ────────────────────────────────────────────────────────────

func (h *CategoryHandler) CreateSub(c *gin.Context) {
	var req dto.SubCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSub(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Sub-category created", resp)
}

// ListSubs accepts ?categoryId= to narrow the list to one category.
func (h *CategoryHandler) ListSubs(c *gin.Context) {
	var q dto.SubCategoryQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ListSubs(c.Request.Context(), middleware.GetClaims(c).UserID, q.CategoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Sub-categories", resp)
}

func (h *CategoryHandler) GetSub(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.GetSub(c.Request.Context(), middleware.GetClaims(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Sub-category", resp)
}

func (h *CategoryHandler) UpdateSub(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.SubCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSub(c.Request.Context(), middleware.GetClaims(c).UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Sub-category updated", resp)
}

func (h *CategoryHandler) DeleteSub(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteSub(c.Request.Context(), middleware.GetClaims(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Sub-category deleted", nil)
}
