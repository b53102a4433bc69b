package service

import (
	"context"
	"strings"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/model"
	"printscrap/internal/repository"
)

// DepartmentService manages a tenant's departments and the machines inside them.
type DepartmentService interface {
	Create(ctx context.Context, userID uint, req dto.DepartmentRequest) (dto.DepartmentResponse, error)
	Get(ctx context.Context, userID, id uint) (dto.DepartmentResponse, error)
	List(ctx context.Context, userID uint) ([]dto.DepartmentResponse, error)
	Update(ctx context.Context, userID, id uint, req dto.DepartmentRequest) (dto.DepartmentResponse, error)
	Delete(ctx context.Context, userID, id uint) error

	CreateMachine(ctx context.Context, userID uint, req dto.MachineRequest) (dto.MachineResponse, error)
	GetMachine(ctx context.Context, userID, id uint) (dto.MachineResponse, error)
	ListMachines(ctx context.Context, userID, departmentID uint) ([]dto.MachineResponse, error)
	UpdateMachine(ctx context.Context, userID, id uint, req dto.MachineRequest) (dto.MachineResponse, error)
	DeleteMachine(ctx context.Context, userID, id uint) error
}

type departmentService struct {
	repo repository.DepartmentRepository
}

func NewDepartmentService(repo repository.DepartmentRepository) DepartmentService {
	return &departmentService{repo: repo}
}

func mapDepartment(d model.Department, machines int) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		MachineCount: machines,
	}
}

func mapMachine(m model.Machine) dto.MachineResponse {
	resp := dto.MachineResponse{
		ID:           m.ID,
		DepartmentID: m.DepartmentID,
		Name:         m.Name,
		Code:         m.Code,
		Description:  m.Description,
	}
	if m.Department != nil {
		resp.DepartmentName = m.Department.Name
	}
	return resp
}

// ── Departments ───────────────────────────────────────────────────────────────

func (s *departmentService) Create(ctx context.Context, userID uint, req dto.DepartmentRequest) (dto.DepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return dto.DepartmentResponse{}, apierror.Validation("name", "is required")
	}
	d := &model.Department{Name: name, Description: trimPtr(req.Description), CreatedBy: userID}
	if err := s.repo.Create(ctx, d); err != nil {
		return dto.DepartmentResponse{}, apierror.Storage("create department", err)
	}
	return mapDepartment(*d, 0), nil
}

func (s *departmentService) Get(ctx context.Context, userID, id uint) (dto.DepartmentResponse, error) {
	d, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return dto.DepartmentResponse{}, lookupErr(err, "department", id)
	}
	machines, err := s.repo.ListMachines(ctx, userID, id)
	if err != nil {
		return dto.DepartmentResponse{}, apierror.Storage("list machines", err)
	}
	return mapDepartment(*d, len(machines)), nil
}

func (s *departmentService) List(ctx context.Context, userID uint) ([]dto.DepartmentResponse, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apierror.Storage("list departments", err)
	}
	out := make([]dto.DepartmentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapDepartment(r.Department, r.MachineCount))
	}
	return out, nil
}

func (s *departmentService) Update(ctx context.Context, userID, id uint, req dto.DepartmentRequest) (dto.DepartmentResponse, error) {
	d, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return dto.DepartmentResponse{}, lookupErr(err, "department", id)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return dto.DepartmentResponse{}, apierror.Validation("name", "is required")
	}
	d.Name, d.Description = name, trimPtr(req.Description)
	if err := s.repo.Update(ctx, d); err != nil {
		return dto.DepartmentResponse{}, apierror.Storage("update department", err)
	}
	machines, err := s.repo.ListMachines(ctx, userID, id)
	if err != nil {
		return dto.DepartmentResponse{}, apierror.Storage("list machines", err)
	}
	return mapDepartment(*d, len(machines)), nil
}

// Delete refuses departments that still have machines or scrap entries.
func (s *departmentService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return lookupErr(err, "department", id)
	}
	n, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return apierror.Storage("count department references", err)
	}
	if n > 0 {
		return apierror.Conflict("department is in use and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return apierror.Storage("delete department", err)
	}
	return nil
}

// ── Machines ──────────────────────────────────────────────────────────────────

func (s *departmentService) CreateMachine(ctx context.Context, userID uint, req dto.MachineRequest) (dto.MachineResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return dto.MachineResponse{}, apierror.Validation("name", "is required")
	}
	d, err := s.repo.FindByID(ctx, userID, req.DepartmentID)
	if err != nil {
		return dto.MachineResponse{}, lookupErr(err, "department", req.DepartmentID)
	}
	m := &model.Machine{
		DepartmentID: d.ID,
		Name:         name,
		Code:         trimPtr(req.Code),
		Description:  trimPtr(req.Description),
		CreatedBy:    userID,
	}
	if err := s.repo.CreateMachine(ctx, m); err != nil {
		return dto.MachineResponse{}, apierror.Storage("create machine", err)
	}
	m.Department = d
	return mapMachine(*m), nil
}

func (s *departmentService) GetMachine(ctx context.Context, userID, id uint) (dto.MachineResponse, error) {
	m, err := s.repo.FindMachineByID(ctx, userID, id)
	if err != nil {
		return dto.MachineResponse{}, lookupErr(err, "machine", id)
	}
	return mapMachine(*m), nil
}

func (s *departmentService) ListMachines(ctx context.Context, userID, departmentID uint) ([]dto.MachineResponse, error) {
	machines, err := s.repo.ListMachines(ctx, userID, departmentID)
	if err != nil {
		return nil, apierror.Storage("list machines", err)
	}
	out := make([]dto.MachineResponse, 0, len(machines))
	for _, m := range machines {
		out = append(out, mapMachine(m))
	}
	return out, nil
}

func (s *departmentService) UpdateMachine(ctx context.Context, userID, id uint, req dto.MachineRequest) (dto.MachineResponse, error) {
	m, err := s.repo.FindMachineByID(ctx, userID, id)
	if err != nil {
		return dto.MachineResponse{}, lookupErr(err, "machine", id)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return dto.MachineResponse{}, apierror.Validation("name", "is required")
	}
	if req.DepartmentID != m.DepartmentID {
		d, err := s.repo.FindByID(ctx, userID, req.DepartmentID)
		if err != nil {
			return dto.MachineResponse{}, lookupErr(err, "department", req.DepartmentID)
		}
		m.DepartmentID, m.Department = d.ID, d
	}
	m.Name = name
	m.Code = trimPtr(req.Code)
	m.Description = trimPtr(req.Description)
	if err := s.repo.UpdateMachine(ctx, m); err != nil {
		return dto.MachineResponse{}, apierror.Storage("update machine", err)
	}
	return mapMachine(*m), nil
}

func (s *departmentService) DeleteMachine(ctx context.Context, userID, id uint) error {
	if _, err := s.repo.FindMachineByID(ctx, userID, id); err != nil {
		return lookupErr(err, "machine", id)
	}
	n, err := s.repo.CountMachineReferences(ctx, id)
	if err != nil {
		return apierror.Storage("count machine references", err)
	}
	if n > 0 {
		return apierror.Conflict("machine is referenced by scrap entries and cannot be deleted")
	}
	if err := s.repo.DeleteMachine(ctx, userID, id); err != nil {
		return apierror.Storage("delete machine", err)
	}
	return nil
}
