package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dealradar/dealradar-backend/internal/errors"
	"github.com/dealradar/dealradar-backend/pkg/util"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// Authenticate requires a valid bearer token and stores the identity in
// the gin context.
func Authenticate(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c, jwtSecret)
		if !ok {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// OptionalAuthenticate stores the identity when a valid token is present
// but lets anonymous requests through.
func OptionalAuthenticate(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromHeader(c, jwtSecret); ok {
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserEmail, claims.Email)
			c.Set(ContextUserRole, claims.Role)
		}
		c.Next()
	}
}

// RequireRole allows only authenticated users holding one of the given
// roles. Must run after Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRole)
		if !exists {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		roleStr, _ := role.(string)
		for _, allowed := range roles {
			if roleStr == allowed {
				c.Next()
				return
			}
		}

		errors.Forbidden(c, "")
		c.Abort()
	}
}

func claimsFromHeader(c *gin.Context, jwtSecret string) (*util.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}

	claims, err := util.ValidateToken(parts[1], jwtSecret)
	if err != nil {
		return nil, false
	}
	if claims.Subject != "access" {
		return nil, false
	}
	return claims, true
}

// GetUserID returns the authenticated user's ID from the context.
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// GetUserRole returns the authenticated user's role from the context.
func GetUserRole(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := value.(string)
	return role, ok
}
