package leave

import (
	"context"
	"database/sql"
	"go-leave/internal/scope"
	"go-leave/internal/shared/txmanager"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	EmployeeID string
	Status     string
	Limit      int
	Offset     int
}

// Transition is a conditional status change. It applies only while the row
// still has FromStatus at Version.
type Transition struct {
	ID           string
	FromStatus   string
	ToStatus     string
	Version      int
	DecidedBy    string
	DecisionNote string
	DecidedAt    time.Time
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	List(ctx context.Context, filter ListFilter) ([]LeaveRequest, int64, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID string) (bool, error)
	SumPendingDays(ctx context.Context, employeeID string) (int, error)
	TransitionStatus(ctx context.Context, t Transition) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]LeaveRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&LeaveRequest{}).Scopes(scope.Employee(filter.EmployeeID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leaves []LeaveRequest
	err := q.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&leaves).Error
	return leaves, total, err
}

// HasOverlappingPeriod reports whether a PENDING or APPROVED request of the
// employee shares a day with [startDate, endDate]. excludeID may be empty.
func (r *repository) HasOverlappingPeriod(
	ctx context.Context,
	employeeID string,
	startDate, endDate time.Time,
	excludeID string,
) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", endDate, startDate)

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) SumPendingDays(ctx context.Context, employeeID string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Select("COALESCE(SUM(days_requested), 0)").
		Where("employee_id = ? AND status = ?", employeeID, StatusPending).
		Scan(&total).Error
	return total, err
}

func (r *repository) TransitionStatus(ctx context.Context, t Transition) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ? AND version = ?", t.ID, t.FromStatus, t.Version).
		Updates(map[string]any{
			"status":        t.ToStatus,
			"decided_by":    t.DecidedBy,
			"decision_note": t.DecisionNote,
			"decided_at":    t.DecidedAt,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    t.DecidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
