package ledger

type ListLedgerRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Source     string `form:"source" binding:"omitempty,oneof=INITIAL_GRANT MANUAL_ADJUSTMENT APPROVAL REVERSAL"`
}

type AdjustmentRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	DeltaDays  int    `json:"delta_days"`
	Note       string `json:"note" binding:"max=500"`
}

type EntryResponse struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	Source         string `json:"source"`
	LeaveRequestID string `json:"leave_request_id,omitempty"`
	DeltaDays      int    `json:"delta_days"`
	Note           string `json:"note,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      string `json:"created_at"`
}
