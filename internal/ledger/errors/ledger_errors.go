package ledgererrors

import (
	"go-leave/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidSource = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid ledger source",
		http.StatusBadRequest,
	)
	ErrZeroDelta = apperror.New(
		apperror.CodeValidation,
		"Delta Days must not be zero",
		http.StatusBadRequest,
	)
	ErrNoteRequired = apperror.New(
		apperror.CodeValidation,
		"Note is required",
		http.StatusBadRequest,
	)
)
