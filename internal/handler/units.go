package handler

import (
	"net/http"

	"printscrap/internal/dto"
	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

type UnitHandler struct{ svc service.UnitService }

func NewUnitHandler(svc service.UnitService) *UnitHandler { return &UnitHandler{svc: svc} }

func (h *UnitHandler) Create(c *gin.Context) {
	var req dto.UnitRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Unit created", resp)
}

func (h *UnitHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetClaims(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Units", resp)
}

func (h *UnitHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetClaims(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Unit", resp)
}

func (h *UnitHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.UnitRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetClaims(c).UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Unit updated", resp)
}

func (h *UnitHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetClaims(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Unit deleted", nil)
}
