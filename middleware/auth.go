package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dailypost/dailypost/utils"
)

const (
	// ContextUsernameKey stores the admin username inside Gin context.
	ContextUsernameKey = "username"
	// ContextTokenIDKey stores the token id for logout.
	ContextTokenIDKey = "token_id"
	// ContextTokenExpiryKey stores the token expiry for logout.
	ContextTokenExpiryKey = "token_expires_at"
)

// AdminRequired ensures the request carries a valid, unrevoked admin JWT.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, "invalid token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(ctx.Request.Context(), claims.ID) {
			utils.Error(ctx, http.StatusUnauthorized, "token revoked")
			ctx.Abort()
			return
		}

		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextTokenIDKey, claims.ID)
		ctx.Set(ContextTokenExpiryKey, expiresAt)
		ctx.Next()
	}
}
