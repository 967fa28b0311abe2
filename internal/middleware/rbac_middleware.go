package middleware

import (
	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RBACService is satisfied by rbac.Service without importing it.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			response.AbortError(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing auth context")
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.AbortError(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message)
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden,
				"You do not have permission to access this resource",
				gin.H{"required": resource + ":" + action},
			)
			c.Abort()
			return
		}
		c.Next()
	}
}

// EmployeeScope resolves the employee a caller may act on. Callers holding
// resource:read_all get requested back unchanged (empty means everyone).
// Anyone else is pinned to the employee id in their token; asking for a
// different employee writes 403 and returns false.
func EmployeeScope(c *gin.Context, service RBACService, resource, requested string) (string, bool) {
	role := c.GetString(ContextRole)

	readAll, err := service.Enforce(domain.EnforceRequest{
		Role:     role,
		Resource: resource,
		Action:   "read_all",
	})
	if err != nil {
		response.AbortError(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message)
		return "", false
	}
	if readAll {
		return requested, true
	}

	own := c.GetString(ContextEmployeeID)
	if own == "" || (requested != "" && requested != own) {
		response.AbortError(c, http.StatusForbidden, apperror.CodeForbidden, apperror.ErrForbidden.Message)
		return "", false
	}
	return own, true
}
