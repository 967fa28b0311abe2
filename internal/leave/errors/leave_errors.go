package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found or inactive",
		http.StatusNotFound,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeValidation,
		"Dates must be valid YYYY-MM-DD values",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidRange,
		"End date must be on or after start date",
		http.StatusUnprocessableEntity,
	)
	ErrUnsupportedRange = apperror.New(
		apperror.CodeUnsupportedRange,
		"Cross-year leave is not supported",
		http.StatusUnprocessableEntity,
	)
	ErrBackdated = apperror.New(
		apperror.CodeBackdated,
		"Backdated leave is not allowed",
		http.StatusUnprocessableEntity,
	)
	ErrPriorToJoining = apperror.New(
		apperror.CodePriorToJoining,
		"Leave cannot start before the joining date",
		http.StatusUnprocessableEntity,
	)
	ErrOverlap = apperror.New(
		apperror.CodeOverlap,
		"Overlapping leave request exists",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficient,
		"Insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrAlreadyDecided = apperror.New(
		apperror.CodeConflict,
		"Leave request already decided",
		http.StatusConflict,
	)
)

// InsufficientBalance carries both figures to the client.
func InsufficientBalance(available, requested int) error {
	return ErrInsufficientBalance.WithDetails(map[string]int{
		"available": available,
		"requested": requested,
	})
}
