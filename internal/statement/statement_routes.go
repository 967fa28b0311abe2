package statement

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	statements := r.Group("/ledger")
	statements.Use(middleware.AuthMiddleware())
	statements.Use(middleware.ContextLogger(logger))
	{
		statements.GET("/statement",
			middleware.RateLimitByUser(0.2, 2),
			handler.Download,
		)
	}
}
