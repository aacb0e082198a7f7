package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"viewtube/internal/app"
	"viewtube/internal/transport/http/response"
)

const ContextUserKey = "current_user"

// SessionGuard authenticates a request from the accessToken cookie or
// a bearer header and attaches the resolved user to the gin context.
func SessionGuard(authService *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, 401, "not authorized, token missing")
			c.Abort()
			return
		}

		userID, err := authService.VerifyAccess(token)
		if err != nil {
			response.Error(c, 401, "invalid or expired access token")
			c.Abort()
			return
		}

		user, err := authService.GetUserByID(userID)
		if err != nil || user == nil {
			response.Error(c, 401, "not authorized, user not found")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie != "" {
		return cookie
	}

	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	const prefix = "Bearer "
	if strings.HasPrefix(authHeader, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	}
	return ""
}

// OptionalSession attaches the user when a valid token is present but
// never rejects the request. Used on public routes whose response
// varies for authenticated viewers.
func OptionalSession(authService *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := authService.VerifyAccess(token)
		if err != nil {
			c.Next()
			return
		}
		if user, err := authService.GetUserByID(userID); err == nil && user != nil {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	}
}
