package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"digi3/internal/models"
	"digi3/internal/services"
)

const (
	ActorKey          = "actor"
	SessionCookieName = "digi3_session"
)

// Actor returns the authenticated user set by AuthMiddleware.
func Actor(c *gin.Context) *models.User {
	v, ok := c.Get(ActorKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// tokenFrom reads the bearer header first, then the session cookie.
func tokenFrom(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if v, err := c.Cookie(SessionCookieName); err == nil {
		return v
	}
	return ""
}

func AuthMiddleware(auth services.AuthService, users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := users.ByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			log.WithField("user_id", claims.UserID).Errorf("[auth][middleware][err] load user: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(ActorKey, user)
		c.Set("user_id", user.ID)
		c.Set("role", string(user.Role))
		c.Next()
	}
}
