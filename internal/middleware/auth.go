package middleware

import (
	"net/http"
	"strings"
	"vip-order-api/internal/response"
	"vip-order-api/internal/services"

	"github.com/gin-gonic/gin"
)

var SessionService *services.SessionService

// InitSessionService initializes the session service used by the
// authentication middleware.
func InitSessionService(s *services.SessionService) {
	SessionService = s
}

// SessionAuthMiddleware resolves the session token and stores the
// current user in the request context.
func SessionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.ErrorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session token")
			c.Abort()
			return
		}

		user, err := SessionService.Authenticate(token)
		if err != nil {
			response.ErrorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session")
			c.Abort()
			return
		}

		// Store user and token in context
		c.Set("user", user)
		c.Set("session_token", token)
		c.Next()
	}
}

// extractToken reads the session token from the Authorization header
// (Bearer scheme) or the X-Session-Token header.
func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.GetHeader("X-Session-Token")
}
