package balance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/domain"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	GetFn func(ctx context.Context, employeeID, policy string) (BalanceResponse, error)
}

func (f *fakeService) Get(ctx context.Context, employeeID, policy string) (BalanceResponse, error) {
	return f.GetFn(ctx, employeeID, policy)
}

type hrOnly struct{}

func (hrOnly) Enforce(req domain.EnforceRequest) (bool, error) {
	return req.Role == "HR", nil
}

func serve(svc Service, role, self, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/employees/:id/balance", func(c *gin.Context) {
		c.Set(middleware.ContextRole, role)
		c.Set(middleware.ContextEmployeeID, self)
		c.Next()
	}, NewHandler(svc, hrOnly{}, zap.NewNop()).Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestBalanceHandler_Get(t *testing.T) {
	t.Run("hr reads any employee", func(t *testing.T) {
		svc := &fakeService{GetFn: func(_ context.Context, id, policy string) (BalanceResponse, error) {
			assert.Equal(t, "emp-9", id)
			assert.Equal(t, "optimistic", policy)
			return BalanceResponse{EmployeeID: id, Policy: Optimistic, Balance: Balance{Grants: 20, Available: 20}}, nil
		}}

		w := serve(svc, "HR", "", "/employees/emp-9/balance?policy=optimistic")

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.EqualValues(t, 20, body.Data["available"])
		assert.EqualValues(t, 0, body.Data["pending"])
	})

	t.Run("employee reads self", func(t *testing.T) {
		svc := &fakeService{GetFn: func(context.Context, string, string) (BalanceResponse, error) {
			return BalanceResponse{}, nil
		}}
		w := serve(svc, "EMPLOYEE", "emp-1", "/employees/emp-1/balance")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("employee reads someone else", func(t *testing.T) {
		w := serve(&fakeService{}, "EMPLOYEE", "emp-1", "/employees/emp-2/balance")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeService{GetFn: func(context.Context, string, string) (BalanceResponse, error) {
			return BalanceResponse{}, balanceerrors.ErrEmployeeNotFound
		}}
		w := serve(svc, "HR", "", "/employees/emp-9/balance")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
