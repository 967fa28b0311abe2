package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// DefaultDecidedBy stamps decisions whose caller did not name an approver.
const DefaultDecidedBy = "HR"

// LeaveRequest moves PENDING -> {APPROVED, REJECTED, CANCELLED} exactly once.
// Version increments on every state change and guards conditional updates.
type LeaveRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates,priority:1"`
	StartDate     time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates,priority:2"`
	EndDate       time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates,priority:3"`
	DaysRequested int       `gorm:"not null"`
	Reason        string    `gorm:"type:varchar(500)"`
	Status        string    `gorm:"type:varchar(20);not null;index:idx_leave_requests_status"`
	DecidedBy     string    `gorm:"type:varchar(100)"`
	DecidedAt     *time.Time
	DecisionNote  string `gorm:"type:varchar(500)"`
	Version       int    `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

func (l LeaveRequest) IsPending() bool {
	return l.Status == StatusPending
}

// Policy holds the business switches the lifecycle consults.
type Policy struct {
	RejectCrossYear bool
	RejectBackdated bool
	// ApprovalExcludesOwnPending lets approval ignore the request's own
	// pending days when re-checking the balance.
	ApprovalExcludesOwnPending bool
}

func DefaultPolicy() Policy {
	return Policy{RejectCrossYear: true, RejectBackdated: true}
}
