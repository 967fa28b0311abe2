package statement

import (
	"fmt"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rbac    middleware.RBACService
	logger  *zap.Logger
}

func NewHandler(service Service, rbac middleware.RBACService, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("statement.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("statement.handler")
	}
	return &Handler{service: service, rbac: rbac, logger: l}
}

func (h *Handler) Download(c *gin.Context) {
	employeeID, ok := middleware.EmployeeScope(c, h.rbac, "ledger", c.Query("employee_id"))
	if !ok {
		return
	}

	pdf, err := h.service.Render(c.Request.Context(), employeeID)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("statement request failed",
			zap.String("employee_id", employeeID),
			zap.Int("status", httpErr.Status),
			zap.String("code", httpErr.Code),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="leave-statement-%s.pdf"`, employeeID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
