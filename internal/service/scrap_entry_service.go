package service

import (
	"context"
	"strings"
	"time"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/ledger"
	"printscrap/internal/model"
	"printscrap/internal/repository"

	"gorm.io/gorm"
)

type ScrapEntryService interface {
	Create(ctx context.Context, userID uint, req dto.CreateScrapEntryRequest) (*dto.ScrapEntryResponse, error)
	Get(ctx context.Context, userID, id uint) (*dto.ScrapEntryResponse, error)
	List(ctx context.Context, userID uint, filter dto.ScrapEntryFilter) (*dto.Page[dto.ScrapEntryResponse], error)
}

type scrapEntryService struct {
	entries     repository.ScrapEntryRepository
	categories  repository.CategoryRepository
	departments repository.DepartmentRepository
	ledger      LedgerService
	loc         *time.Location
	now         func() time.Time
}

func NewScrapEntryService(
	entries repository.ScrapEntryRepository,
	categories repository.CategoryRepository,
	departments repository.DepartmentRepository,
	ledgerSvc LedgerService,
	loc *time.Location,
) ScrapEntryService {
	if loc == nil {
		loc = time.UTC
	}
	return &scrapEntryService{
		entries:     entries,
		categories:  categories,
		departments: departments,
		ledger:      ledgerSvc,
		loc:         loc,
		now:         time.Now,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// Validates every reference against the caller's tenant, then writes the
// entry and its stock inflow in one transaction.

func (s *scrapEntryService) Create(ctx context.Context, userID uint, req dto.CreateScrapEntryRequest) (*dto.ScrapEntryResponse, error) {
	jobNumber := trimPtr(req.JobNumber)
	switch req.EntryType {
	case model.EntryJobBased:
		if jobNumber == nil {
			return nil, apierror.Validation("jobNumber", "is required for job-based entries")
		}
	case model.EntryGeneral:
	default:
		return nil, apierror.Validation("entryType", "must be job-based or general")
	}
	if err := validateInflow(req.Quantity, req.Rate); err != nil {
		return nil, err
	}

	cat, err := s.categories.FindByID(ctx, userID, req.CategoryID)
	if err != nil {
		return nil, lookupErr(err, "category", req.CategoryID)
	}
	var sub *model.SubCategory
	if req.SubCategoryID != nil {
		sub, err = s.categories.FindSubByID(ctx, userID, *req.SubCategoryID)
		if err != nil {
			return nil, lookupErr(err, "sub-category", *req.SubCategoryID)
		}
		if sub.CategoryID != cat.ID {
			return nil, apierror.Validation("subCategoryId", "does not belong to the selected category")
		}
	}
	dept, err := s.departments.FindByID(ctx, userID, req.DepartmentID)
	if err != nil {
		return nil, lookupErr(err, "department", req.DepartmentID)
	}
	var machine *model.Machine
	if req.MachineID != nil {
		machine, err = s.departments.FindMachineByID(ctx, userID, *req.MachineID)
		if err != nil {
			return nil, lookupErr(err, "machine", *req.MachineID)
		}
		if machine.DepartmentID != dept.ID {
			return nil, apierror.Validation("machineId", "does not belong to the selected department")
		}
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = keyUnit(cat, sub)
	}
	entry := model.ScrapEntry{
		EntryType:     req.EntryType,
		CategoryID:    cat.ID,
		SubCategoryID: req.SubCategoryID,
		DepartmentID:  dept.ID,
		MachineID:     req.MachineID,
		Quantity:      req.Quantity,
		Unit:          unit,
		Rate:          req.Rate,
		TotalValue:    ledger.LineTotal(req.Quantity, req.Rate),
		JobNumber:     jobNumber,
		Remarks:       trimPtr(req.Remarks),
		CreatedBy:     userID,
		CreatedAt:     s.now().UTC(),
	}

	err = runTx(ctx, s.entries.DB(), func(tx *gorm.DB) error {
		if err := s.entries.CreateTx(tx, &entry); err != nil {
			return err
		}
		_, err := s.ledger.RecordInflowTx(tx, InflowInput{
			Key:      repository.StockKey{UserID: userID, CategoryID: cat.ID, SubCategoryID: req.SubCategoryID},
			Unit:     unit,
			Quantity: req.Quantity,
			Rate:     req.Rate,
		})
		return err
	})
	if err != nil {
		return nil, apierror.Storage("record scrap entry", err)
	}

	entry.Category, entry.SubCategory, entry.Department, entry.Machine = cat, sub, dept, machine
	resp := scrapEntryToResponse(&entry)
	return &resp, nil
}

func (s *scrapEntryService) Get(ctx context.Context, userID, id uint) (*dto.ScrapEntryResponse, error) {
	e, err := s.entries.FindByID(ctx, userID, id)
	if err != nil {
		return nil, lookupErr(err, "scrap entry", id)
	}
	resp := scrapEntryToResponse(e)
	return &resp, nil
}

func (s *scrapEntryService) List(ctx context.Context, userID uint, filter dto.ScrapEntryFilter) (*dto.Page[dto.ScrapEntryResponse], error) {
	filter.Normalize()
	q, err := s.query(filter)
	if err != nil {
		return nil, err
	}
	q.Offset, q.Limit = filter.Offset(), filter.Limit

	entries, total, err := s.entries.List(ctx, userID, q)
	if err != nil {
		return nil, apierror.Storage("list scrap entries", err)
	}
	out := make([]dto.ScrapEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, scrapEntryToResponse(&entries[i]))
	}
	return &dto.Page[dto.ScrapEntryResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *scrapEntryService) query(filter dto.ScrapEntryFilter) (repository.ScrapEntryQuery, error) {
	from, to, err := parseDayRange(filter.From, filter.To, s.loc)
	if err != nil {
		return repository.ScrapEntryQuery{}, err
	}
	return repository.ScrapEntryQuery{
		From:         from,
		To:           to,
		CategoryID:   filter.CategoryID,
		DepartmentID: filter.DepartmentID,
		EntryType:    filter.EntryType,
	}, nil
}

func scrapEntryToResponse(e *model.ScrapEntry) dto.ScrapEntryResponse {
	resp := dto.ScrapEntryResponse{
		ID:            e.ID,
		EntryType:     e.EntryType,
		CategoryID:    e.CategoryID,
		SubCategoryID: e.SubCategoryID,
		DepartmentID:  e.DepartmentID,
		MachineID:     e.MachineID,
		Quantity:      e.Quantity,
		Unit:          e.Unit,
		Rate:          e.Rate,
		TotalValue:    e.TotalValue,
		JobNumber:     e.JobNumber,
		Remarks:       e.Remarks,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     formatTime(e.CreatedAt),
	}
	if e.Category != nil {
		resp.CategoryName = e.Category.Name
	}
	if e.SubCategory != nil {
		resp.SubCategoryName = e.SubCategory.Name
	}
	if e.Department != nil {
		resp.DepartmentName = e.Department.Name
	}
	if e.Machine != nil {
		resp.MachineName = e.Machine.Name
	}
	return resp
}
