package repository

import (
	"context"

	"printscrap/internal/model"

	"gorm.io/gorm"
)

// CategoryWithCount is a category plus the number of its sub-categories.
type CategoryWithCount struct {
	model.Category
	SubCategoryCount int
}

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, userID, id uint) (*model.Category, error)
	FindByIDTx(tx *gorm.DB, userID, id uint) (*model.Category, error)
	List(ctx context.Context, userID uint) ([]CategoryWithCount, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, userID, id uint) error
	ExistsByName(ctx context.Context, userID uint, name string, exceptID uint) (bool, error)
	// CountReferences counts sub-categories, entries, sale lines and ledger
	// rows pointing at the category.
	CountReferences(ctx context.Context, id uint) (int64, error)

	CreateSub(ctx context.Context, s *model.SubCategory) error
	FindSubByID(ctx context.Context, userID, id uint) (*model.SubCategory, error)
	FindSubByIDTx(tx *gorm.DB, userID, id uint) (*model.SubCategory, error)
	ListSubs(ctx context.Context, userID, categoryID uint) ([]model.SubCategory, error)
	UpdateSub(ctx context.Context, s *model.SubCategory) error
	DeleteSub(ctx context.Context, userID, id uint) error
	CountSubReferences(ctx context.Context, id uint) (int64, error)
	Count(ctx context.Context, userID uint) (int64, error)
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepo{db: db} }

// ── Categories ────────────────────────────────────────────────────────────────

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, userID, id uint) (*model.Category, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), userID, id)
}

func (r *categoryRepo) FindByIDTx(tx *gorm.DB, userID, id uint) (*model.Category, error) {
	var c model.Category
	err := tx.Scopes(tenant(userID)).First(&c, id).Error
	return &c, err
}

func (r *categoryRepo) List(ctx context.Context, userID uint) ([]CategoryWithCount, error) {
	var rows []CategoryWithCount
	err := r.db.WithContext(ctx).
		Table("categories AS c").
		Select("c.*, (SELECT COUNT(*) FROM sub_categories sc WHERE sc.category_id = c.id) AS sub_category_count").
		Where("c.created_by = ?", userID).
		Order("c.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *categoryRepo) Update(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoryRepo) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Scopes(tenant(userID)).Delete(&model.Category{}, id).Error
}

func (r *categoryRepo) ExistsByName(ctx context.Context, userID uint, name string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Scopes(tenant(userID)).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *categoryRepo) CountReferences(ctx context.Context, id uint) (int64, error) {
	return countRefs(r.db.WithContext(ctx), id,
		"sub_categories", "category_id",
		"scrap_entries", "category_id",
		"sale_items", "category_id",
		"stock", "category_id",
	)
}

func (r *categoryRepo) Count(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Scopes(tenant(userID)).Count(&n).Error
	return n, err
}

// ── Sub-categories ────────────────────────────────────────────────────────────

func (r *categoryRepo) CreateSub(ctx context.Context, s *model.SubCategory) error {
	return r.db.WithContext(ctx).Omit("Category").Create(s).Error
}

func (r *categoryRepo) FindSubByID(ctx context.Context, userID, id uint) (*model.SubCategory, error) {
	return r.FindSubByIDTx(r.db.WithContext(ctx), userID, id)
}

func (r *categoryRepo) FindSubByIDTx(tx *gorm.DB, userID, id uint) (*model.SubCategory, error) {
	var s model.SubCategory
	err := tx.Scopes(tenant(userID)).Preload("Category").First(&s, id).Error
	return &s, err
}

// ListSubs returns the tenant's sub-categories, optionally of one category.
func (r *categoryRepo) ListSubs(ctx context.Context, userID, categoryID uint) ([]model.SubCategory, error) {
	var subs []model.SubCategory
	q := r.db.WithContext(ctx).Scopes(tenant(userID)).Preload("Category")
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	err := q.Order("name ASC").Find(&subs).Error
	return subs, err
}

func (r *categoryRepo) UpdateSub(ctx context.Context, s *model.SubCategory) error {
	return r.db.WithContext(ctx).Omit("Category").Save(s).Error
}

func (r *categoryRepo) DeleteSub(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Scopes(tenant(userID)).Delete(&model.SubCategory{}, id).Error
}

func (r *categoryRepo) CountSubReferences(ctx context.Context, id uint) (int64, error) {
	return countRefs(r.db.WithContext(ctx), id,
		"scrap_entries", "sub_category_id",
		"sale_items", "sub_category_id",
		"stock", "sub_category_id",
	)
}

// countRefs sums COUNT(*) over (table, column) pairs matching id.
func countRefs(db *gorm.DB, id uint, pairs ...string) (int64, error) {
	var total int64
	for i := 0; i+1 < len(pairs); i += 2 {
		var n int64
		if err := db.Table(pairs[i]).Where(pairs[i+1]+" = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
