package repository

import (
	"context"

	"printscrap/internal/model"

	"gorm.io/gorm"
)

// DepartmentWithCount is a department plus the number of its machines.
type DepartmentWithCount struct {
	model.Department
	MachineCount int
}

type DepartmentRepository interface {
	Create(ctx context.Context, d *model.Department) error
	FindByID(ctx context.Context, userID, id uint) (*model.Department, error)
	FindByIDTx(tx *gorm.DB, userID, id uint) (*model.Department, error)
	List(ctx context.Context, userID uint) ([]DepartmentWithCount, error)
	Update(ctx context.Context, d *model.Department) error
	Delete(ctx context.Context, userID, id uint) error
	CountReferences(ctx context.Context, id uint) (int64, error)
	Count(ctx context.Context, userID uint) (int64, error)

	CreateMachine(ctx context.Context, m *model.Machine) error
	FindMachineByID(ctx context.Context, userID, id uint) (*model.Machine, error)
	FindMachineByIDTx(tx *gorm.DB, userID, id uint) (*model.Machine, error)
	ListMachines(ctx context.Context, userID, departmentID uint) ([]model.Machine, error)
	UpdateMachine(ctx context.Context, m *model.Machine) error
	DeleteMachine(ctx context.Context, userID, id uint) error
	CountMachineReferences(ctx context.Context, id uint) (int64, error)
}

type departmentRepo struct{ db *gorm.DB }

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository { return &departmentRepo{db: db} }

// ── Departments ───────────────────────────────────────────────────────────────

func (r *departmentRepo) Create(ctx context.Context, d *model.Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *departmentRepo) FindByID(ctx context.Context, userID, id uint) (*model.Department, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), userID, id)
}

func (r *departmentRepo) FindByIDTx(tx *gorm.DB, userID, id uint) (*model.Department, error) {
	var d model.Department
	err := tx.Scopes(tenant(userID)).First(&d, id).Error
	return &d, err
}

func (r *departmentRepo) List(ctx context.Context, userID uint) ([]DepartmentWithCount, error) {
	var rows []DepartmentWithCount
	err := r.db.WithContext(ctx).
		Table("departments AS d").
		Select("d.*, (SELECT COUNT(*) FROM machines m WHERE m.department_id = d.id) AS machine_count").
		Where("d.created_by = ?", userID).
		Order("d.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *departmentRepo) Update(ctx context.Context, d *model.Department) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *departmentRepo) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Scopes(tenant(userID)).Delete(&model.Department{}, id).Error
}

func (r *departmentRepo) CountReferences(ctx context.Context, id uint) (int64, error) {
	return countRefs(r.db.WithContext(ctx), id,
		"machines", "department_id",
		"scrap_entries", "department_id",
	)
}

func (r *departmentRepo) Count(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Department{}).Scopes(tenant(userID)).Count(&n).Error
	return n, err
}

// ── Machines ──────────────────────────────────────────────────────────────────

func (r *departmentRepo) CreateMachine(ctx context.Context, m *model.Machine) error {
	return r.db.WithContext(ctx).Omit("Department").Create(m).Error
}

func (r *departmentRepo) FindMachineByID(ctx context.Context, userID, id uint) (*model.Machine, error) {
	return r.FindMachineByIDTx(r.db.WithContext(ctx), userID, id)
}

func (r *departmentRepo) FindMachineByIDTx(tx *gorm.DB, userID, id uint) (*model.Machine, error) {
	var m model.Machine
	err := tx.Scopes(tenant(userID)).Preload("Department").First(&m, id).Error
	return &m, err
}

func (r *departmentRepo) ListMachines(ctx context.Context, userID, departmentID uint) ([]model.Machine, error) {
	var machines []model.Machine
	q := r.db.WithContext(ctx).Scopes(tenant(userID)).Preload("Department")
	if departmentID != 0 {
		q = q.Where("department_id = ?", departmentID)
	}
	err := q.Order("name ASC").Find(&machines).Error
	return machines, err
}

func (r *departmentRepo) UpdateMachine(ctx context.Context, m *model.Machine) error {
	return r.db.WithContext(ctx).Omit("Department").Save(m).Error
}

func (r *departmentRepo) DeleteMachine(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Scopes(tenant(userID)).Delete(&model.Machine{}, id).Error
}

func (r *departmentRepo) CountMachineReferences(ctx context.Context, id uint) (int64, error) {
	return countRefs(r.db.WithContext(ctx), id, "scrap_entries", "machine_id")
}
