package middleware

import (
	"net/http"
	"strings"

	"github.com/Johnny2306/plawimadd-group-api/internal/auth"
	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAuth and read by the handlers.
const (
	CtxUserID    = "userID"
	CtxUserRole  = "userRole"
	CtxUserName  = "userName"
	CtxUserEmail = "userEmail"
)

// RequireAuth validates the Bearer token and stores the session claims on
// the request context. Missing or invalid token -> 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserRole, claims.Role)
		c.Set(CtxUserName, claims.Name)
		c.Set(CtxUserEmail, claims.Email)
		c.Next()
	}
}

// RequireRole enforces the role carried by the token. It must run after
// RequireAuth. The claim is trusted as signed; no database round-trip.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimed, exists := c.Get(CtxUserRole)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if claimed.(string) != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: " + role + " role required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
