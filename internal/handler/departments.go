package handler

import (
	"net/http"

	"printscrap/internal/dto"
	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

// DepartmentHandler serves /v1/departments and /v1/machines.
type DepartmentHandler struct{ svc service.DepartmentService }

func NewDepartmentHandler(svc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	var req dto.DepartmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Department created", resp)
}

func (h *DepartmentHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetClaims(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Departments", resp)
}

func (h *DepartmentHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetClaims(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Department", resp)
}

func (h *DepartmentHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.DepartmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetClaims(c).UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Department updated", resp)
}

func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetClaims(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Department deleted", nil)
}

// ── Machines ──────────────────────────────────────────────────────────────────

func (h *DepartmentHandler) CreateMachine(c *gin.Context) {
	var req dto.MachineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateMachine(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Machine created", resp)
}

func (h *DepartmentHandler) ListMachines(c *gin.Context) {
	var q dto.MachineQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ListMachines(c.Request.Context(), middleware.GetClaims(c).UserID, q.DepartmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Machines", resp)
}

func (h *DepartmentHandler) GetMachine(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.GetMachine(c.Request.Context(), middleware.GetClaims(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Machine", resp)
}

func (h *DepartmentHandler) UpdateMachine(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.MachineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateMachine(c.Request.Context(), middleware.GetClaims(c).UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Machine updated", resp)
}

func (h *DepartmentHandler) DeleteMachine(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteMachine(c.Request.Context(), middleware.GetClaims(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Machine deleted", nil)
}
