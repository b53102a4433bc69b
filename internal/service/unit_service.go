package service

import (
	"context"
	"strings"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/model"
	"printscrap/internal/repository"
)

// UnitService manages a tenant's units of measure.
type UnitService interface {
	Create(ctx context.Context, userID uint, req dto.UnitRequest) (dto.UnitResponse, error)
	Get(ctx context.Context, userID, id uint) (dto.UnitResponse, error)
	List(ctx context.Context, userID uint) ([]dto.UnitResponse, error)
	Update(ctx context.Context, userID, id uint, req dto.UnitRequest) (dto.UnitResponse, error)
	Delete(ctx context.Context, userID, id uint) error
}

type unitService struct {
	repo repository.UnitRepository
}

func NewUnitService(repo repository.UnitRepository) UnitService {
	return &unitService{repo: repo}
}

func mapUnit(u model.Unit) dto.UnitResponse {
	return dto.UnitResponse{ID: u.ID, Name: u.Name, Symbol: u.Symbol}
}

func (s *unitService) checkSymbol(ctx context.Context, userID uint, symbol string, exceptID uint) error {
	taken, err := s.repo.ExistsBySymbol(ctx, userID, symbol, exceptID)
	if err != nil {
		return apierror.Storage("check unit symbol", err)
	}
	if taken {
		return apierror.Conflict("a unit with symbol " + symbol + " already exists")
	}
	return nil
}

func (s *unitService) Create(ctx context.Context, userID uint, req dto.UnitRequest) (dto.UnitResponse, error) {
	name, symbol := strings.TrimSpace(req.Name), strings.TrimSpace(req.Symbol)
	if name == "" || symbol == "" {
		return dto.UnitResponse{}, apierror.Validation("symbol", "name and symbol are required")
	}
	if err := s.checkSymbol(ctx, userID, symbol, 0); err != nil {
		return dto.UnitResponse{}, err
	}
	u := &model.Unit{Name: name, Symbol: symbol, CreatedBy: userID}
	if err := s.repo.Create(ctx, u); err != nil {
		return dto.UnitResponse{}, apierror.Storage("create unit", err)
	}
	return mapUnit(*u), nil
}

func (s *unitService) Get(ctx context.Context, userID, id uint) (dto.UnitResponse, error) {
	u, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return dto.UnitResponse{}, lookupErr(err, "unit", id)
	}
	return mapUnit(*u), nil
}

func (s *unitService) List(ctx context.Context, userID uint) ([]dto.UnitResponse, error) {
	units, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apierror.Storage("list units", err)
	}
	out := make([]dto.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, mapUnit(u))
	}
	return out, nil
}

func (s *unitService) Update(ctx context.Context, userID, id uint, req dto.UnitRequest) (dto.UnitResponse, error) {
	u, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return dto.UnitResponse{}, lookupErr(err, "unit", id)
	}
	name, symbol := strings.TrimSpace(req.Name), strings.TrimSpace(req.Symbol)
	if name == "" || symbol == "" {
		return dto.UnitResponse{}, apierror.Validation("symbol", "name and symbol are required")
	}
	if !strings.EqualFold(symbol, u.Symbol) {
		if err := s.checkSymbol(ctx, userID, symbol, id); err != nil {
			return dto.UnitResponse{}, err
		}
	}
	u.Name, u.Symbol = name, symbol
	if err := s.repo.Update(ctx, u); err != nil {
		return dto.UnitResponse{}, apierror.Storage("update unit", err)
	}
	return mapUnit(*u), nil
}

// Delete removes a unit. Categories and entries copy the unit symbol, so no
// reference check applies.
func (s *unitService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return lookupErr(err, "unit", id)
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return apierror.Storage("delete unit", err)
	}
	return nil
}
