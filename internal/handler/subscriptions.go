package handler

import (
	"context"
	"net/http"

	"printscrap/internal/dto"
	"printscrap/internal/middleware"
	"printscrap/internal/service"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler covers the client's own subscription, plan activation
// requests and the super-admin subscription console.
type SubscriptionHandler struct{ svc service.SubscriptionService }

func NewSubscriptionHandler(svc service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

// Current godoc
// @Summary      Subscription of the caller
// @Description  Status is evaluated at request time; a lapsed trial or plan reads as expired.
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} apierror.Envelope{data=dto.SubscriptionResponse}
// @Router       /v1/subscription [get]
func (h *SubscriptionHandler) Current(c *gin.Context) {
	resp, err := h.svc.Current(c.Request.Context(), middleware.GetClaims(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Subscription", resp)
}

// ── Plan requests ─────────────────────────────────────────────────────────────

// SubmitRequest godoc
// @Summary      Ask for a plan to be activated
// @Description  One pending request per client; a second one answers 409.
// @Tags         plan-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SubmitPlanRequest true "Plan"
// @Success      201  {object} apierror.Envelope{data=dto.PlanRequestResponse}
// @Failure      409  {object} apierror.Envelope
// @Router       /v1/plan-requests [post]
func (h *SubscriptionHandler) SubmitRequest(c *gin.Context) {
	var req dto.SubmitPlanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SubmitRequest(c.Request.Context(), middleware.GetClaims(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Plan request submitted", resp)
}

// ListRequests serves both the client's own history and the admin queue.
func (h *SubscriptionHandler) ListRequests(c *gin.Context) {
	var f dto.PlanRequestFilter
	if !bindQuery(c, &f) {
		return
	}
	claims := middleware.GetClaims(c)
	userID := claims.UserID
	if claims.IsSuperAdmin() {
		userID = 0
	}
	resp, err := h.svc.ListRequests(c.Request.Context(), userID, f)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Plan requests", resp)
}

// Approve godoc
// @Summary      Approve a plan request
// @Description  Activates the plan on the client's subscription. startDate / endDate override
// @Description  the window derived from the plan's billing cycle.
// @Tags         plan-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                    true "Request ID"
// @Param        body body dto.ProcessPlanRequest false "Remarks and optional dates"
// @Success      200  {object} apierror.Envelope{data=dto.PlanRequestResponse}
// @Failure      409  {object} apierror.Envelope
// @Router       /v1/admin/plan-requests/{id}/approve [post]
func (h *SubscriptionHandler) Approve(c *gin.Context) {
	h.process(c, h.svc.Approve, "Plan request approved")
}

func (h *SubscriptionHandler) Reject(c *gin.Context) {
	h.process(c, h.svc.Reject, "Plan request rejected")
}

type processFunc func(ctx context.Context, adminID, requestID uint, req dto.ProcessPlanRequest) (*dto.PlanRequestResponse, error)

func (h *SubscriptionHandler) process(c *gin.Context, fn processFunc, msg string) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.ProcessPlanRequest
	// The body is optional: an empty POST approves/rejects without remarks.
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := fn(c.Request.Context(), middleware.GetClaims(c).UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, msg, resp)
}

// ── Admin: subscriptions ──────────────────────────────────────────────────────

func (h *SubscriptionHandler) List(c *gin.Context) {
	var f dto.SubscriptionFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Subscriptions", resp)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Subscription cancelled", resp)
}

// Extend godoc
// @Summary      Move a subscription's end date
// @Description  A lapsed subscription is reopened: active when it carries a plan, trial otherwise.
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                           true "Subscription ID"
// @Param        body body dto.ExtendSubscriptionRequest true "New end date"
// @Success      200  {object} apierror.Envelope{data=dto.SubscriptionResponse}
// @Router       /v1/admin/subscriptions/{id}/extend [post]
func (h *SubscriptionHandler) Extend(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.ExtendSubscriptionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Extend(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Subscription extended", resp)
}
