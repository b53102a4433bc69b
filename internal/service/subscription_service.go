package service

import (
	"context"
	"strings"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/billing"
	"printscrap/internal/dto"
	"printscrap/internal/model"
	"printscrap/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type SubscriptionService interface {
	// StartTrialTx opens the fixed-length trial of a newly registered client.
	StartTrialTx(tx *gorm.DB, userID uint) (*model.Subscription, error)
	// Current returns the caller's subscription with its effective status,
	// persisting the expired transition when the end date has passed.
	Current(ctx context.Context, userID uint) (*dto.SubscriptionResponse, error)
	// EnsureUsable fails with ForbiddenError unless the subscription is
	// trial or active at the current time.
	EnsureUsable(ctx context.Context, userID uint) error

	SubmitRequest(ctx context.Context, userID uint, req dto.SubmitPlanRequest) (*dto.PlanRequestResponse, error)
	ListRequests(ctx context.Context, userID uint, filter dto.PlanRequestFilter) (*dto.Page[dto.PlanRequestResponse], error)
	Approve(ctx context.Context, adminID, requestID uint, req dto.ProcessPlanRequest) (*dto.PlanRequestResponse, error)
	Reject(ctx context.Context, adminID, requestID uint, req dto.ProcessPlanRequest) (*dto.PlanRequestResponse, error)

	List(ctx context.Context, filter dto.SubscriptionFilter) (*dto.Page[dto.SubscriptionResponse], error)
	Cancel(ctx context.Context, id uint) (*dto.SubscriptionResponse, error)
	Extend(ctx context.Context, id uint, req dto.ExtendSubscriptionRequest) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	subs     repository.SubscriptionRepository
	requests repository.PlanRequestRepository
	plans    repository.PlanRepository
	users    repository.UserRepository
	notifier *Notifier
	trial    time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewSubscriptionService(
	subs repository.SubscriptionRepository,
	requests repository.PlanRequestRepository,
	plans repository.PlanRepository,
	users repository.UserRepository,
	notifier *Notifier,
	trial time.Duration,
	loc *time.Location,
) SubscriptionService {
	if loc == nil {
		loc = time.UTC
	}
	return &subscriptionService{
		subs:     subs,
		requests: requests,
		plans:    plans,
		users:    users,
		notifier: notifier,
		trial:    trial,
		loc:      loc,
		now:      time.Now,
	}
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

func (s *subscriptionService) StartTrialTx(tx *gorm.DB, userID uint) (*model.Subscription, error) {
	now := s.now().UTC()
	sub := &model.Subscription{
		UserID:    userID,
		Status:    model.SubscriptionTrial,
		StartDate: now,
		EndDate:   now.Add(s.trial),
	}
	if err := s.subs.CreateTx(tx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// settle applies the lazy expiry to sub and persists it when it changed.
func (s *subscriptionService) settle(ctx context.Context, sub *model.Subscription, now time.Time) {
	eff := billing.EffectiveStatus(now, sub.Status, sub.EndDate)
	if eff == sub.Status {
		return
	}
	if err := s.subs.MarkExpired(ctx, sub.ID, now.UTC()); err != nil {
		log.Warn().Err(err).Uint("subscription_id", sub.ID).Msg("subscription: failed to persist expiry")
	}
	sub.Status = eff
}

func (s *subscriptionService) Current(ctx context.Context, userID uint) (*dto.SubscriptionResponse, error) {
	sub, err := s.subs.FindByUser(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "subscription", 0)
	}
	now := s.now()
	s.settle(ctx, sub, now)
	resp := subscriptionToResponse(sub, now)
	return &resp, nil
}

func (s *subscriptionService) EnsureUsable(ctx context.Context, userID uint) error {
	sub, err := s.subs.FindByUser(ctx, userID)
	if repository.IsNotFound(err) {
		return apierror.Forbidden("no subscription found for this account")
	}
	if err != nil {
		return apierror.Storage("load subscription", err)
	}
	s.settle(ctx, sub, s.now())
	if !billing.Usable(sub.Status) {
		return apierror.Forbidden("subscription " + sub.Status + ": request a plan to continue")
	}
	return nil
}

// ── Plan requests ─────────────────────────────────────────────────────────────

func (s *subscriptionService) SubmitRequest(ctx context.Context, userID uint, req dto.SubmitPlanRequest) (*dto.PlanRequestResponse, error) {
	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, lookupErr(err, "plan", req.PlanID)
	}
	if !plan.Active {
		return nil, apierror.Validation("planId", "plan is not available")
	}
	pending, err := s.requests.HasPending(ctx, userID)
	if err != nil {
		return nil, apierror.Storage("check pending requests", err)
	}
	if pending {
		return nil, apierror.Conflict("a plan request is already pending")
	}

	pr := &model.PlanActivationRequest{
		UserID:  userID,
		PlanID:  plan.ID,
		Status:  model.RequestPending,
		Message: trimPtr(req.Message),
	}
	if err := s.requests.Create(ctx, pr); err != nil {
		return nil, writeErr(err, "create plan request", "a plan request is already pending")
	}
	pr.Plan = plan

	if u, err := s.users.FindByID(ctx, userID); err == nil {
		pr.User = u
		s.notifier.PlanRequested(ctx, u, plan)
	}
	resp := planRequestToResponse(pr)
	return &resp, nil
}

// ListRequests lists one tenant's requests, or every tenant's when userID is 0.
func (s *subscriptionService) ListRequests(ctx context.Context, userID uint, filter dto.PlanRequestFilter) (*dto.Page[dto.PlanRequestResponse], error) {
	filter.Normalize()
	reqs, total, err := s.requests.List(ctx, repository.PlanRequestQuery{
		UserID: userID, Status: filter.Status, Offset: filter.Offset(), Limit: filter.Limit,
	})
	if err != nil {
		return nil, apierror.Storage("list plan requests", err)
	}
	out := make([]dto.PlanRequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, planRequestToResponse(&reqs[i]))
	}
	return &dto.Page[dto.PlanRequestResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *subscriptionService) Approve(ctx context.Context, adminID, requestID uint, req dto.ProcessPlanRequest) (*dto.PlanRequestResponse, error) {
	start, end, err := s.overrideWindow(req)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	remarks := trimPtr(req.Remarks)

	var (
		pr  *model.PlanActivationRequest
		sub *model.Subscription
	)
	err = runTx(ctx, s.requests.DB(), func(tx *gorm.DB) error {
		var err error
		if pr, err = s.pendingRequestTx(tx, requestID); err != nil {
			return err
		}

		winStart := now
		if start != nil {
			winStart = *start
		}
		winStart, winEnd, err := billing.NextWindow(pr.Plan.BillingCycle, winStart)
		if err != nil {
			return apierror.Validation("billingCycle", err.Error())
		}
		if end != nil {
			winEnd = *end
		}
		if !winEnd.After(winStart) {
			return apierror.Validation("endDate", "must be after startDate")
		}

		sub, err = s.subs.FindByUserForUpdateTx(tx, pr.UserID)
		if repository.IsNotFound(err) {
			sub, err = &model.Subscription{UserID: pr.UserID}, nil
		}
		if err != nil {
			return err
		}
		planID := pr.PlanID
		sub.PlanID = &planID
		sub.Status = model.SubscriptionActive
		sub.StartDate = winStart.UTC()
		sub.EndDate = winEnd.UTC()
		if sub.ID == 0 {
			err = s.subs.CreateTx(tx, sub)
		} else {
			err = s.subs.SaveTx(tx, sub)
		}
		if err != nil {
			return err
		}
		if err := s.requests.ResolveTx(tx, pr.ID, model.RequestApproved, remarks, adminID, now); err != nil {
			return err
		}
		pr.Status, pr.AdminRemarks, pr.ProcessedBy, pr.ProcessedAt = model.RequestApproved, remarks, &adminID, &now
		return nil
	})
	if err != nil {
		return nil, apierror.Storage("approve plan request", err)
	}

	if u, err := s.users.FindByID(ctx, pr.UserID); err == nil {
		pr.User = u
		s.notifier.PlanDecision(ctx, u, pr.Plan, sub, remarks)
	}
	resp := planRequestToResponse(pr)
	return &resp, nil
}

func (s *subscriptionService) Reject(ctx context.Context, adminID, requestID uint, req dto.ProcessPlanRequest) (*dto.PlanRequestResponse, error) {
	now := s.now().UTC()
	remarks := trimPtr(req.Remarks)

	var pr *model.PlanActivationRequest
	err := runTx(ctx, s.requests.DB(), func(tx *gorm.DB) error {
		var err error
		if pr, err = s.pendingRequestTx(tx, requestID); err != nil {
			return err
		}
		if err := s.requests.ResolveTx(tx, pr.ID, model.RequestRejected, remarks, adminID, now); err != nil {
			return err
		}
		pr.Status, pr.AdminRemarks, pr.ProcessedBy, pr.ProcessedAt = model.RequestRejected, remarks, &adminID, &now
		return nil
	})
	if err != nil {
		return nil, apierror.Storage("reject plan request", err)
	}

	if u, err := s.users.FindByID(ctx, pr.UserID); err == nil {
		pr.User = u
		s.notifier.PlanDecision(ctx, u, pr.Plan, nil, remarks)
	}
	resp := planRequestToResponse(pr)
	return &resp, nil
}

func (s *subscriptionService) pendingRequestTx(tx *gorm.DB, id uint) (*model.PlanActivationRequest, error) {
	pr, err := s.requests.FindForUpdateTx(tx, id)
	if err != nil {
		return nil, lookupErr(err, "plan request", id)
	}
	if pr.Status != model.RequestPending {
		return nil, apierror.Conflict("plan request already " + pr.Status)
	}
	return pr, nil
}

// overrideWindow parses the admin's optional start/end dates.
func (s *subscriptionService) overrideWindow(req dto.ProcessPlanRequest) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if v := strings.TrimSpace(derefOr(req.StartDate, "")); v != "" {
		t, err := parseDateTime(v, s.loc)
		if err != nil {
			return nil, nil, apierror.Validation("startDate", "must be RFC 3339 or YYYY-MM-DD")
		}
		start = &t
	}
	if v := strings.TrimSpace(derefOr(req.EndDate, "")); v != "" {
		t, err := parseDateTime(v, s.loc)
		if err != nil {
			return nil, nil, apierror.Validation("endDate", "must be RFC 3339 or YYYY-MM-DD")
		}
		end = &t
	}
	return start, end, nil
}

// ── Admin subscription management ─────────────────────────────────────────────

func (s *subscriptionService) List(ctx context.Context, filter dto.SubscriptionFilter) (*dto.Page[dto.SubscriptionResponse], error) {
	filter.Normalize()
	now := s.now()
	rows, total, err := s.subs.List(ctx, filter.Status, now.UTC(), filter.Offset(), filter.Limit)
	if err != nil {
		return nil, apierror.Storage("list subscriptions", err)
	}
	out := make([]dto.SubscriptionResponse, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		s.settle(ctx, &r.Subscription, now)
		resp := subscriptionToResponse(&r.Subscription, now)
		resp.PlanName = derefOr(r.PlanName, "")
		company := r.CompanyName
		resp.Company = &company
		out = append(out, resp)
	}
	return &dto.Page[dto.SubscriptionResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, id uint) (*dto.SubscriptionResponse, error) {
	return s.mutate(ctx, id, func(sub *model.Subscription, _ time.Time) error {
		if sub.Status == model.SubscriptionCancelled {
			return apierror.Conflict("subscription already cancelled")
		}
		sub.Status = model.SubscriptionCancelled
		return nil
	})
}

func (s *subscriptionService) Extend(ctx context.Context, id uint, req dto.ExtendSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	end, err := parseDateTime(strings.TrimSpace(req.EndDate), s.loc)
	if err != nil {
		return nil, apierror.Validation("endDate", "must be RFC 3339 or YYYY-MM-DD")
	}
	return s.mutate(ctx, id, func(sub *model.Subscription, now time.Time) error {
		if !end.After(now) {
			return apierror.Validation("endDate", "must be in the future")
		}
		if !end.After(sub.StartDate) {
			return apierror.Validation("endDate", "must be after the subscription start")
		}
		sub.EndDate = end.UTC()
		// Reopening an expired or cancelled window resumes the plan, or the trial.
		if !billing.Usable(sub.Status) {
			if sub.PlanID != nil {
				sub.Status = model.SubscriptionActive
			} else {
				sub.Status = model.SubscriptionTrial
			}
		}
		return nil
	})
}

func (s *subscriptionService) mutate(ctx context.Context, id uint, fn func(sub *model.Subscription, now time.Time) error) (*dto.SubscriptionResponse, error) {
	current, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "subscription", id)
	}
	now := s.now()
	var sub *model.Subscription
	err = runTx(ctx, s.subs.DB(), func(tx *gorm.DB) error {
		var err error
		if sub, err = s.subs.FindByUserForUpdateTx(tx, current.UserID); err != nil {
			return err
		}
		sub.Status = billing.EffectiveStatus(now, sub.Status, sub.EndDate)
		if err := fn(sub, now); err != nil {
			return err
		}
		return s.subs.SaveTx(tx, sub)
	})
	if err != nil {
		return nil, apierror.Storage("update subscription", err)
	}
	sub.Plan = current.Plan
	resp := subscriptionToResponse(sub, now)
	return &resp, nil
}

// parseDateTime accepts RFC 3339 timestamps or plain dates (midnight in loc).
func parseDateTime(v string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", v, loc)
}

func subscriptionToResponse(sub *model.Subscription, now time.Time) dto.SubscriptionResponse {
	eff := billing.EffectiveStatus(now, sub.Status, sub.EndDate)
	resp := dto.SubscriptionResponse{
		ID:        sub.ID,
		UserID:    sub.UserID,
		PlanID:    sub.PlanID,
		Status:    eff,
		StartDate: formatTime(sub.StartDate),
		EndDate:   formatTime(sub.EndDate),
		AutoRenew: sub.AutoRenew,
		DaysLeft:  billing.DaysLeft(now, sub.EndDate),
		Usable:    billing.Usable(eff),
	}
	if sub.Plan != nil {
		resp.PlanName = sub.Plan.Name
	}
	return resp
}

func planRequestToResponse(pr *model.PlanActivationRequest) dto.PlanRequestResponse {
	resp := dto.PlanRequestResponse{
		ID:           pr.ID,
		UserID:       pr.UserID,
		PlanID:       pr.PlanID,
		Status:       pr.Status,
		Message:      pr.Message,
		AdminRemarks: pr.AdminRemarks,
		CreatedAt:    formatTime(pr.CreatedAt),
	}
	if pr.ProcessedAt != nil {
		at := formatTime(*pr.ProcessedAt)
		resp.ProcessedAt = &at
	}
	if pr.User != nil {
		resp.UserName = pr.User.Name
		resp.CompanyName = pr.User.CompanyName
	}
	if pr.Plan != nil {
		resp.PlanName = pr.Plan.Name
	}
	return resp
}
