package employee

import (
	"context"
	"database/sql"
	"go-leave/internal/shared/txmanager"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	Department       string
	EmploymentStatus string
	Limit            int
	Offset           int
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Employee, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]Employee, int64, error)
	FindOptions(ctx context.Context) ([]Employee, error)
	UpdateStatus(ctx context.Context, empl *Employee) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: txmanager.Bind(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Create(empl).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

// FindByIDForUpdate row-locks the employee until the surrounding
// transaction ends, serializing every balance decision for that employee.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Employee, int64, error) {
	q := r.db.WithContext(ctx).Model(&Employee{})
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.EmploymentStatus != "" {
		q = q.Where("employment_status = ?", filter.EmploymentStatus)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var empls []Employee
	err := q.Session(&gorm.Session{}).
		Order("full_name ASC").
		Order("id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&empls).Error
	return empls, total, err
}

func (r *repository) FindOptions(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Select("id", "employee_number", "full_name", "department").
		Where("employment_status = ?", StatusActive).
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) UpdateStatus(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).
		Model(empl).
		Select("employment_status", "termination_date", "updated_at").
		Updates(empl).Error
}
