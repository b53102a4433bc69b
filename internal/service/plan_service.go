package service

import (
	"context"
	"strings"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/model"
	"printscrap/internal/repository"
)

// PlanService manages the catalogue of purchasable plans.
type PlanService interface {
	Create(ctx context.Context, req dto.PlanRequest) (dto.PlanResponse, error)
	List(ctx context.Context, activeOnly bool) ([]dto.PlanResponse, error)
	Update(ctx context.Context, id uint, req dto.PlanRequest) (dto.PlanResponse, error)
	Delete(ctx context.Context, id uint) error
}

type planService struct {
	repo repository.PlanRepository
}

func NewPlanService(repo repository.PlanRepository) PlanService {
	return &planService{repo: repo}
}

func mapPlan(p model.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		BillingCycle: p.BillingCycle,
		Features:     p.Features,
		Active:       p.Active,
	}
}

func validatePlan(req dto.PlanRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apierror.Validation("name", "is required")
	}
	if req.Price.IsNegative() {
		return apierror.Validation("price", "must not be negative")
	}
	switch req.BillingCycle {
	case model.CycleDaily, model.CycleMonthly, model.CycleYearly:
	default:
		return apierror.Validation("billingCycle", "must be one of daily, monthly, yearly")
	}
	return nil
}

func (s *planService) Create(ctx context.Context, req dto.PlanRequest) (dto.PlanResponse, error) {
	if err := validatePlan(req); err != nil {
		return dto.PlanResponse{}, err
	}
	p := &model.Plan{
		Name:         strings.TrimSpace(req.Name),
		Description:  trimPtr(req.Description),
		Price:        req.Price.Round(2),
		BillingCycle: req.BillingCycle,
		Features:     trimPtr(req.Features),
		Active:       req.Active == nil || *req.Active,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return dto.PlanResponse{}, writeErr(err, "create plan", "a plan with that name already exists")
	}
	return mapPlan(*p), nil
}

func (s *planService) List(ctx context.Context, activeOnly bool) ([]dto.PlanResponse, error) {
	plans, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, apierror.Storage("list plans", err)
	}
	out := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, mapPlan(p))
	}
	return out, nil
}

func (s *planService) Update(ctx context.Context, id uint, req dto.PlanRequest) (dto.PlanResponse, error) {
	if err := validatePlan(req); err != nil {
		return dto.PlanResponse{}, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.PlanResponse{}, lookupErr(err, "plan", id)
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Description = trimPtr(req.Description)
	p.Price = req.Price.Round(2)
	p.BillingCycle = req.BillingCycle
	p.Features = trimPtr(req.Features)
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return dto.PlanResponse{}, writeErr(err, "update plan", "a plan with that name already exists")
	}
	return mapPlan(*p), nil
}

// Delete refuses plans that any subscription or request still points at;
// deactivate those instead.
func (s *planService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupErr(err, "plan", id)
	}
	n, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return apierror.Storage("count plan references", err)
	}
	if n > 0 {
		return apierror.Conflict("plan is in use; deactivate it instead")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Storage("delete plan", err)
	}
	return nil
}
