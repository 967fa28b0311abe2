package autherrors

import (
	"go-leave/internal/shared/apperror"
	"net/http"
)

var (
	ErrTokenMissing = apperror.New(
		apperror.CodeUnauthorized,
		"Token not found",
		http.StatusUnauthorized,
	)

	ErrInvalidToken = apperror.New(
		"INVALID_TOKEN",
		"Invalid or malformed token",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = apperror.New(
		"TOKEN_EXPIRED",
		"Token has expired",
		http.StatusUnauthorized,
	)

	ErrMissingEmployee = apperror.New(
		"INVALID_TOKEN",
		"Employee ID not found in token",
		http.StatusUnauthorized,
	)
)
