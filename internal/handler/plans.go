package handler

import (
	"net/http"

	"printscrap/internal/dto"
	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct{ svc service.PlanService }

func NewPlanHandler(svc service.PlanService) *PlanHandler { return &PlanHandler{svc: svc} }

// List godoc
// @Summary      List plans
// @Description  Clients see active plans only; super admins see all of them.
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} apierror.Envelope{data=[]dto.PlanResponse}
// @Router       /v1/plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	activeOnly := !middleware.GetClaims(c).IsSuperAdmin()
	resp, err := h.svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Plans", resp)
}

func (h *PlanHandler) Create(c *gin.Context) {
	var req dto.PlanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Plan created", resp)
}

func (h *PlanHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.PlanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Plan updated", resp)
}

func (h *PlanHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Plan deleted", nil)
}
