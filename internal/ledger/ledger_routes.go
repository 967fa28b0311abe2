package ledger

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	entries := r.Group("/ledger")
	entries.Use(middleware.AuthMiddleware())
	entries.Use(middleware.ExtractUserID())
	entries.Use(middleware.ContextLogger(logger))
	{
		// Self-scoped callers are pinned inside the handler.
		entries.GET("",
			middleware.RateLimitByUser(5, 20),
			handler.List,
		)

		entries.POST("/adjustments",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "ledger", "adjust"),
			middleware.Idempotency(rdb, logger),
			handler.Adjust,
		)
	}
}
