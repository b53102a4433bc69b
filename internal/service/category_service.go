package service

import (
	"context"
	"strings"

	"printscrap/internal/apierror"
	"printscrap/internal/dto"
	"printscrap/internal/model"
	"printscrap/internal/repository"
)

// CategoryService manages a tenant's scrap categories and their sub-categories.
type CategoryService interface {
	Create(ctx context.Context, userID uint, req dto.CategoryRequest) (dto.CategoryResponse, error)
	Get(ctx context.Context, userID, id uint) (dto.CategoryResponse, error)
	List(ctx context.Context, userID uint) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, userID, id uint, req dto.CategoryRequest) (dto.CategoryResponse, error)
	Delete(ctx context.Context, userID, id uint) error

	CreateSub(ctx context.Context, userID uint, req dto.SubCategoryRequest) (dto.SubCategoryResponse, error)
	GetSub(ctx context.Context, userID, id uint) (dto.SubCategoryResponse, error)
	ListSubs(ctx context.Context, userID, categoryID uint) ([]dto.SubCategoryResponse, error)
	UpdateSub(ctx context.Context, userID, id uint, req dto.SubCategoryRequest) (dto.SubCategoryResponse, error)
	DeleteSub(ctx context.Context, userID, id uint) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func mapCategory(c model.Category, subs int) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:               c.ID,
		Name:             c.Name,
		Unit:             c.Unit,
		MarketRate:       c.MarketRate,
		SubCategoryCount: subs,
	}
}

func mapSubCategory(sc model.SubCategory) dto.SubCategoryResponse {
	resp := dto.SubCategoryResponse{
		ID:         sc.ID,
		CategoryID: sc.CategoryID,
		Name:       sc.Name,
		Size:       sc.Size,
		Remarks:    sc.Remarks,
		Unit:       sc.Unit,
	}
	if sc.Category != nil {
		resp.CategoryName = sc.Category.Name
	}
	return resp
}

// ── Categories ────────────────────────────────────────────────────────────────

func (s *categoryService) validate(ctx context.Context, userID, id uint, req dto.CategoryRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", apierror.Validation("name", "is required")
	}
	if strings.TrimSpace(req.Unit) == "" {
		return "", apierror.Validation("unit", "is required")
	}
	if req.MarketRate.IsNegative() {
		return "", apierror.Validation("marketRate", "must not be negative")
	}
	taken, err := s.repo.ExistsByName(ctx, userID, name, id)
	if err != nil {
		return "", apierror.Storage("check category name", err)
	}
	if taken {
		return "", apierror.Conflict("a category named " + name + " already exists")
	}
	return name, nil
}

func (s *categoryService) Create(ctx context.Context, userID uint, req dto.CategoryRequest) (dto.CategoryResponse, error) {
	name, err := s.validate(ctx, userID, 0, req)
	if err != nil {
		return dto.CategoryResponse{}, err
	}
	c := &model.Category{
		Name:       name,
		Unit:       strings.TrimSpace(req.Unit),
		MarketRate: req.MarketRate.Round(2),
		CreatedBy:  userID,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return dto.CategoryResponse{}, writeErr(err, "create category", "a category named "+name+" already exists")
	}
	return mapCategory(*c, 0), nil
}

func (s *categoryService) Get(ctx context.Context, userID, id uint) (dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return dto.CategoryResponse{}, lookupErr(err, "category", id)
	}
	subs, err := s.repo.ListSubs(ctx, userID, id)
	if err != nil {
		return dto.CategoryResponse{}, apierror.Storage("list sub-categories", err)
	}
	return mapCategory(*c, len(subs)), nil
}

func (s *categoryService) List(ctx context.Context, userID uint) ([]dto.CategoryResponse, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apierror.Storage("list categories", err)
	}
	out := make([]dto.CategoryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapCategory(r.Category, r.SubCategoryCount))
	}
	return out, nil
}

// Update changes the category's name, unit and market rate. Existing entries
// keep the value they were recorded with.
func (s *categoryService) Update(ctx context.Context, userID, id uint, req dto.CategoryRequest) (dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return dto.CategoryResponse{}, lookupErr(err, "category", id)
	}
	name, err := s.validate(ctx, userID, id, req)
	if err != nil {
		return dto.CategoryResponse{}, err
	}
	c.Name = name
	c.Unit = strings.TrimSpace(req.Unit)
	c.MarketRate = req.MarketRate.Round(2)
	if err := s.repo.Update(ctx, c); err != nil {
		return dto.CategoryResponse{}, writeErr(err, "update category", "a category named "+name+" already exists")
	}
	subs, err := s.repo.ListSubs(ctx, userID, id)
	if err != nil {
		return dto.CategoryResponse{}, apierror.Storage("list sub-categories", err)
	}
	return mapCategory(*c, len(subs)), nil
}

// Delete refuses categories that still have sub-categories, entries, sales or stock.
func (s *categoryService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return lookupErr(err, "category", id)
	}
	n, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return apierror.Storage("count category references", err)
	}
	if n > 0 {
		return apierror.Conflict("category is in use and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return apierror.Storage("delete category", err)
	}
	return nil
}

// ── Sub-categories ────────────────────────────────────────────────────────────

func (s *categoryService) CreateSub(ctx context.Context, userID uint, req dto.SubCategoryRequest) (dto.SubCategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return dto.SubCategoryResponse{}, apierror.Validation("name", "is required")
	}
	cat, err := s.repo.FindByID(ctx, userID, req.CategoryID)
	if err != nil {
		return dto.SubCategoryResponse{}, lookupErr(err, "category", req.CategoryID)
	}
	sc := &model.SubCategory{
		CategoryID: cat.ID,
		Name:       name,
		Size:       trimPtr(req.Size),
		Remarks:    trimPtr(req.Remarks),
		Unit:       strings.TrimSpace(req.Unit),
		CreatedBy:  userID,
	}
	if sc.Unit == "" {
		sc.Unit = cat.Unit
	}
	if err := s.repo.CreateSub(ctx, sc); err != nil {
		return dto.SubCategoryResponse{}, apierror.Storage("create sub-category", err)
	}
	sc.Category = cat
	return mapSubCategory(*sc), nil
}

func (s *categoryService) GetSub(ctx context.Context, userID, id uint) (dto.SubCategoryResponse, error) {
	sc, err := s.repo.FindSubByID(ctx, userID, id)
	if err != nil {
		return dto.SubCategoryResponse{}, lookupErr(err, "sub-category", id)
	}
	return mapSubCategory(*sc), nil
}

func (s *categoryService) ListSubs(ctx context.Context, userID, categoryID uint) ([]dto.SubCategoryResponse, error) {
	subs, err := s.repo.ListSubs(ctx, userID, categoryID)
	if err != nil {
		return nil, apierror.Storage("list sub-categories", err)
	}
	out := make([]dto.SubCategoryResponse, 0, len(subs))
	for _, sc := range subs {
		out = append(out, mapSubCategory(sc))
	}
	return out, nil
}

// UpdateSub edits a sub-category. Moving it to another category is refused
// once stock or history references it, since that would split its ledger key.
func (s *categoryService) UpdateSub(ctx context.Context, userID, id uint, req dto.SubCategoryRequest) (dto.SubCategoryResponse, error) {
	sc, err := s.repo.FindSubByID(ctx, userID, id)
	if err != nil {
		return dto.SubCategoryResponse{}, lookupErr(err, "sub-category", id)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return dto.SubCategoryResponse{}, apierror.Validation("name", "is required")
	}
	if req.CategoryID != sc.CategoryID {
		cat, err := s.repo.FindByID(ctx, userID, req.CategoryID)
		if err != nil {
			return dto.SubCategoryResponse{}, lookupErr(err, "category", req.CategoryID)
		}
		n, err := s.repo.CountSubReferences(ctx, id)
		if err != nil {
			return dto.SubCategoryResponse{}, apierror.Storage("count sub-category references", err)
		}
		if n > 0 {
			return dto.SubCategoryResponse{}, apierror.Conflict("sub-category has stock history and cannot move to another category")
		}
		sc.CategoryID, sc.Category = cat.ID, cat
	}
	sc.Name = name
	sc.Size = trimPtr(req.Size)
	sc.Remarks = trimPtr(req.Remarks)
	if unit := strings.TrimSpace(req.Unit); unit != "" {
		sc.Unit = unit
	}
	if err := s.repo.UpdateSub(ctx, sc); err != nil {
		return dto.SubCategoryResponse{}, apierror.Storage("update sub-category", err)
	}
	return mapSubCategory(*sc), nil
}

func (s *categoryService) DeleteSub(ctx context.Context, userID, id uint) error {
	if _, err := s.repo.FindSubByID(ctx, userID, id); err != nil {
		return lookupErr(err, "sub-category", id)
	}
	n, err := s.repo.CountSubReferences(ctx, id)
	if err != nil {
		return apierror.Storage("count sub-category references", err)
	}
	if n > 0 {
		return apierror.Conflict("sub-category is in use and cannot be deleted")
	}
	if err := s.repo.DeleteSub(ctx, userID, id); err != nil {
		return apierror.Storage("delete sub-category", err)
	}
	return nil
}
