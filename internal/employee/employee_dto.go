package employee

import "go-leave/internal/balance"

type CreateEmployeeRequest struct {
	FullName            string `json:"full_name" binding:"required,min=2,max=80"`
	Email               string `json:"email" binding:"required,email"`
	Department          string `json:"department" binding:"required,max=60"`
	JoiningDate         string `json:"joining_date" binding:"required"`
	InitialLeaveBalance *int   `json:"initial_leave_balance" binding:"omitempty,min=0,max=365"`
}

type UpdateStatusRequest struct {
	EmploymentStatus string `json:"employment_status" binding:"required,oneof=ACTIVE INACTIVE"`
	TerminationDate  string `json:"termination_date"`
}

type ListEmployeesRequest struct {
	Department       string `form:"department" binding:"omitempty,max=60"`
	EmploymentStatus string `form:"employment_status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

type EmployeeResponse struct {
	ID                  string           `json:"id"`
	EmployeeNumber      string           `json:"employee_number"`
	FullName            string           `json:"full_name"`
	Email               string           `json:"email"`
	Department          string           `json:"department"`
	JoiningDate         string           `json:"joining_date"`
	EmploymentStatus    string           `json:"employment_status"`
	TerminationDate     string           `json:"termination_date,omitempty"`
	InitialLeaveBalance int              `json:"initial_leave_balance"`
	Balance             *balance.Balance `json:"balance,omitempty"`
}

type EmployeeOptionResponse struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
	Department     string `json:"department"`
}
