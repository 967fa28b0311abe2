package apperror_test

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"go-leave/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps code message and details", func(t *testing.T) {
		sentinel := apperror.New("INSUFFICIENT_BALANCE", "insufficient leave balance", http.StatusUnprocessableEntity)
		err := sentinel.WithDetails(map[string]int{"available": 3, "requested": 5})

		got := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
		assert.Equal(t, "INSUFFICIENT_BALANCE", got.Code)
		assert.Equal(t, "insufficient leave balance", got.Message)
		assert.Equal(t, map[string]int{"available": 3, "requested": 5}, got.Details)
		assert.True(t, errors.Is(err, sentinel))
		assert.Nil(t, sentinel.Details)
	})

	t.Run("unknown error is generic", func(t *testing.T) {
		got := apperror.ToHTTP(errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, apperror.CodeInternalError, got.Code)
		assert.Equal(t, "An unexpected error occurred", got.Message)
	})

	t.Run("storage error hides cause", func(t *testing.T) {
		cause := errors.New("dial tcp 10.0.0.1:5432: i/o timeout")
		err := apperror.Storage(cause)

		got := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.NotContains(t, got.Message, "10.0.0.1")
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("storage keeps business errors untouched", func(t *testing.T) {
		err := apperror.Storage(apperror.ErrNotFound)
		assert.Same(t, apperror.ErrNotFound, err)
	})
}

func TestMapValidationError(t *testing.T) {
	type payload struct {
		StartDate string `json:"start_date" validate:"required"`
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	err := v.Struct(payload{})

	got := apperror.MapValidationError(err)

	assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)
	assert.Equal(t, "Start Date is required", got.Message)
}
