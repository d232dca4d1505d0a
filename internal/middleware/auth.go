// ================== internal/middleware/auth.go ==================
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meridharani/dharani-api/internal/pkg/response"
	"github.com/meridharani/dharani-api/internal/pkg/token"
)

func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		// Support both "Bearer <token>" (case-insensitive) and raw token in header
		fields := strings.Fields(authHeader)
		var tokenString string
		if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
			tokenString = fields[1]
		} else {
			tokenString = authHeader
		}

		claims, err := token.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to one role. Runs after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != role {
			response.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
