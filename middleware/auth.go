package middleware

import (
	"strings"

	"lablinc/response"
	"lablinc/services"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

func hasRole(role int, roles []int) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthMiddleware requires a valid bearer token and, when roles are given,
// one of those roles.
func AuthMiddleware(tokens *services.TokenService, roles ...int) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		userID, userRole, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}

		if !hasRole(userRole, roles) {
			response.Forbidden(c)
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, userRole)
		c.Next()
	}
}

// RoleMiddleware narrows an authenticated group to some roles.
func RoleMiddleware(roles ...int) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role, ok := CurrentUser(c)
		if !ok {
			response.Unauthorized(c)
			c.Abort()
			return
		}
		if !hasRole(role, roles) {
			response.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the caller set by AuthMiddleware.
func CurrentUser(c *gin.Context) (uint, int, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return 0, 0, false
	}
	role, ok := c.Get(ContextUserRole)
	if !ok {
		return 0, 0, false
	}
	userID, ok1 := id.(uint)
	userRole, ok2 := role.(int)
	return userID, userRole, ok1 && ok2
}
