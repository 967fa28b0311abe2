package ledger

import (
	"context"
	"database/sql"
	"go-leave/internal/scope"
	"go-leave/internal/shared/txmanager"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFilter struct {
	EmployeeID string
	Source     Source
	Limit      int
	Offset     int
}

//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Append(ctx context.Context, entry *Entry) error
	SumByEmployee(ctx context.Context, employeeID string) (Totals, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, int64, error)
	ListAllByEmployee(ctx context.Context, employeeID string) ([]Entry, error)
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

func (r *repository) Append(ctx context.Context, entry *Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) SumByEmployee(ctx context.Context, employeeID string) (Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Select(`
			COALESCE(SUM(CASE WHEN source IN ('INITIAL_GRANT', 'MANUAL_ADJUSTMENT') THEN delta_days ELSE 0 END), 0) AS grants,
			COALESCE(-SUM(CASE WHEN source IN ('APPROVAL', 'REVERSAL') THEN delta_days ELSE 0 END), 0) AS approved`).
		Where("employee_id = ?", employeeID).
		Scan(&totals).Error
	return totals, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Entry, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&Entry{}).
		Scopes(scope.Employee(filter.EmployeeID))
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []Entry
	err := q.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&entries).Error
	return entries, total, err
}

func (r *repository) ListAllByEmployee(ctx context.Context, employeeID string) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at ASC").
		Order("id").
		Find(&entries).Error
	return entries, err
}
