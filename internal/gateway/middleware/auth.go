package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vistara-hms/internal/utils"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextBranchID = "branch_id"
)

func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization header required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Bearer token required"))
			return
		}

		claims, err := utils.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Invalid or expired token"))
			return
		}

		c.Set(ContextUserID, claims.UserId)
		c.Set(ContextUsername, claims.Username)
		if claims.BranchId != nil {
			c.Set(ContextBranchID, *claims.BranchId)
		}
		c.Next()
	}
}
