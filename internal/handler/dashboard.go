package handler

import (
	"net/http"

	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Client godoc
// @Summary      Tenant dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} apierror.Envelope{data=dto.ClientDashboardResponse}
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Client(c *gin.Context) {
	resp, err := h.svc.Client(c.Request.Context(), middleware.GetClaims(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Dashboard", resp)
}

// Admin godoc
// @Summary      Platform dashboard
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} apierror.Envelope{data=dto.AdminDashboardResponse}
// @Router       /v1/admin/dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	resp, err := h.svc.Admin(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Admin dashboard", resp)
}
