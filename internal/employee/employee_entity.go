package employee

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type Employee struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeNumber      string     `gorm:"type:varchar(20);not null;uniqueIndex:uq_employee_number"`
	FullName            string     `gorm:"type:varchar(80);not null"`
	Email               string     `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_email"`
	Department          string     `gorm:"type:varchar(60);not null;index:idx_employees_department_status,priority:1"`
	JoiningDate         time.Time  `gorm:"type:date;not null"`
	EmploymentStatus    string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_employees_department_status,priority:2"`
	TerminationDate     *time.Time `gorm:"type:date"`
	InitialLeaveBalance int        `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == StatusActive
}
