package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"digi3/internal/authz"
	"digi3/internal/metrics"
)

// RequireGrant rejects actors whose role is not granted the action outright.
// Only use it for actions without a relationship rule.
func RequireGrant(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no actor in context"})
			return
		}
		if !authz.Granted(actor.Role, action) {
			metrics.PermissionDenied(string(action))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
