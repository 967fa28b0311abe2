package leave

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
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	leaves.Use(middleware.ExtractUserID())
	leaves.Use(middleware.ContextLogger(logger))
	{
		// Read routes resolve the employee scope inside the handler.
		leaves.GET("",
			middleware.RateLimitByUser(5, 20),
			handler.GetAll,
		)
		leaves.GET("/:id",
			middleware.RateLimitByUser(5, 20),
			handler.GetByID,
		)

		leaves.POST("/apply",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "apply"),
			middleware.Idempotency(rdb, logger),
			handler.Apply,
		)

		leaves.PATCH("/:id/approve",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, "leave", "decide"),
			handler.Approve,
		)
		leaves.PATCH("/:id/reject",
			middleware.RateLimitByUser(2, 10),
			middleware.RBACAuthorize(rbacService, "leave", "decide"),
			handler.Reject,
		)
		leaves.PATCH("/:id/cancel",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "cancel"),
			handler.Cancel,
		)
	}
}
