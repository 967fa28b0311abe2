package ledger

import (
	"time"

	"github.com/google/uuid"
)

type Source string

const (
	SourceInitialGrant     Source = "INITIAL_GRANT"
	SourceManualAdjustment Source = "MANUAL_ADJUSTMENT"
	SourceApproval         Source = "APPROVAL"
	// SourceReversal is folded into the balance but nothing writes it yet.
	SourceReversal Source = "REVERSAL"
)

func (s Source) Valid() bool {
	switch s {
	case SourceInitialGrant, SourceManualAdjustment, SourceApproval, SourceReversal:
		return true
	}
	return false
}

// Entry is one immutable balance movement. Rows are only ever inserted.
type Entry struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_employee_created,priority:1"`
	Source         Source     `gorm:"type:varchar(30);not null"`
	LeaveRequestID *uuid.UUID `gorm:"type:uuid"`
	DeltaDays      int        `gorm:"not null"`
	Note           string     `gorm:"type:varchar(500)"`
	CreatedBy      string     `gorm:"type:varchar(100)"`
	CreatedAt      time.Time  `gorm:"not null;index:idx_ledger_employee_created,priority:2"`
}

func (Entry) TableName() string {
	return "leave_ledger_entries"
}

// Totals is the ledger folded per source group. Approved is reported as a
// positive day count.
type Totals struct {
	Grants   int `json:"grants"`
	Approved int `json:"approved"`
}

// Fold reduces entries the same way SumByEmployee does in SQL.
func Fold(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		switch e.Source {
		case SourceInitialGrant, SourceManualAdjustment:
			t.Grants += e.DeltaDays
		case SourceApproval, SourceReversal:
			t.Approved -= e.DeltaDays
		}
	}
	return t
}
