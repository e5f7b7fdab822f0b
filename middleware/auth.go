package middleware

import (
	"net/http"
	"strings"

	"tipjar-backend/authz"
	"tipjar-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware resolves the bearer token into an actor. Every failure
// mode (missing header, malformed header, expired or invalid token)
// collapses into the same generic 401 so callers cannot probe which one
// occurred.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required", "code": "AUTH_REQUIRED"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required", "code": "AUTH_REQUIRED"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required", "code": "AUTH_REQUIRED"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// AdminMiddleware requires the actor to have the admin role.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != authz.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required", "code": "FORBIDDEN"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Actor rebuilds the authz actor from the context values set by
// AuthMiddleware. The boolean is false when the request never passed
// through the auth middleware.
func Actor(c *gin.Context) (authz.Actor, bool) {
	id, ok := c.Get("user_id")
	if !ok {
		return authz.Actor{}, false
	}
	role, ok := c.Get("user_role")
	if !ok {
		return authz.Actor{}, false
	}
	return authz.Actor{ID: id.(uuid.UUID), Role: role.(string)}, true
}
