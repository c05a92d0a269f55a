package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/garuda/core"
	"github.com/layer-3/garuda/service"
)

// SessionMiddleware creates middleware that gates routes on a valid session.
// A missing header is unauthenticated (401); a presented but unknown or
// expired token is a dead session (403). The two outcomes stay distinct.
func SessionMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		// Browser clients send the bare token; API clients use Bearer
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		session, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrSessionExpired) || errors.Is(err, core.ErrSessionUnknown) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Session ended"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			}
			return
		}

		c.Set("identity", session.Identity)
		c.Set("sessionToken", token)

		c.Next()
	}
}
