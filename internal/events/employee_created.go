package events

import "time"

const EmployeeCreatedTopic = "hr.employee.lifecycle.v1"

const EmployeeCreated = "employee_created"

type EmployeeCreatedEvent struct {
	EventType           string    `json:"event_type"`
	RequestID           string    `json:"request_id,omitempty"`
	EmployeeID          string    `json:"employee_id"`
	Department          string    `json:"department"`
	JoiningDate         string    `json:"joining_date"`
	InitialLeaveBalance int       `json:"initial_leave_balance"`
	OccurredAt          time.Time `json:"occurred_at"`
}
