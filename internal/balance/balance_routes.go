package balance

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	employees.Use(middleware.ExtractUserID())
	employees.Use(middleware.ContextLogger(logger))
	{
		employees.GET("/:id/balance",
			middleware.RateLimitByUser(5, 20),
			handler.Get,
		)
	}
}
