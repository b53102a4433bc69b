package handler

import (
	"net/http"

	"printscrap/internal/dto"
	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Register godoc
// @Summary      Register a client
// @Description  Creates the client account and company, starts the trial and returns a token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.RegisterRequest true "Account details"
// @Success      201  {object} apierror.Envelope{data=dto.LoginResponse}
// @Failure      400  {object} apierror.Envelope
// @Failure      409  {object} apierror.Envelope
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Account created", resp)
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginRequest true "Credentials"
// @Success      200  {object} apierror.Envelope{data=dto.LoginResponse}
// @Failure      401  {object} apierror.Envelope
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Logged in", resp)
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.RefreshRequest true "Refresh token"
// @Success      200  {object} apierror.Envelope{data=dto.LoginResponse}
// @Failure      401  {object} apierror.Envelope
// @Router       /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Token refreshed", resp)
}

// Me godoc
// @Summary      Current user with effective subscription
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} apierror.Envelope{data=dto.UserResponse}
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.svc.Me(c.Request.Context(), middleware.GetClaims(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Profile", resp)
}

// ── Admin: tenants ────────────────────────────────────────────────────────────

// ListTenants godoc
// @Summary      List client tenants with their effective subscription
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Name, company or email"
// @Param        page   query int    false "Page"
// @Param        limit  query int    false "Page size"
// @Success      200  {object} apierror.Envelope
// @Router       /v1/admin/tenants [get]
func (h *AuthHandler) ListTenants(c *gin.Context) {
	var f dto.TenantFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.ListTenants(c.Request.Context(), f.Search, f.PageQuery)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Tenants", resp)
}

// SetTenantActive godoc
// @Summary      Activate or deactivate a tenant
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                      true "User ID"
// @Param        body body dto.SetUserActiveRequest true "Active flag"
// @Success      200  {object} apierror.Envelope{data=dto.UserResponse}
// @Router       /v1/admin/tenants/{id}/active [patch]
func (h *AuthHandler) SetTenantActive(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.SetUserActiveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Tenant updated", resp)
}
