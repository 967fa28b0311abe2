package leave

type ApplyLeaveRequest struct {
	// EmployeeID defaults to the caller's own employee id.
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Reason     string `json:"reason" binding:"max=500"`
}

type DecisionRequest struct {
	DecidedBy    string `json:"decided_by" binding:"max=100"`
	DecisionNote string `json:"decision_note" binding:"max=500"`
}

type ListLeavesRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
}

type LeaveResponse struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DaysRequested int    `json:"days_requested"`
	Reason        string `json:"reason,omitempty"`
	Status        string `json:"status"`
	DecidedBy     string `json:"decided_by,omitempty"`
	DecidedAt     string `json:"decided_at,omitempty"`
	DecisionNote  string `json:"decision_note,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type DecisionResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	DaysRequested int    `json:"days_requested,omitempty"`
}
