package middleware

import (
	"go-leave/internal/shared/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ExtractUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get(ContextUserID)
		if !exists {
			response.AbortError(ctx, http.StatusUnauthorized, "UNAUTHORIZED", "User is not authenticated")
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			response.AbortError(ctx, http.StatusUnauthorized, "INVALID_USER_ID", "Invalid user_id format")
			return
		}

		ctx.Set("user_id_validated", userIDStr)
		ctx.Next()
	}
}
