package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"digi3/internal/middleware"
	"digi3/internal/models"
	"digi3/internal/services"
)

// actorFrom returns the authenticated user. Routes behind AuthMiddleware
// always have one.
func actorFrom(c *gin.Context) *models.User {
	return middleware.Actor(c)
}

func actorID(c *gin.Context) int64 {
	if u := actorFrom(c); u != nil {
		return u.ID
	}
	return 0
}

// parseID reads a positive int64 path param, answering 400 otherwise.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

func statusOf(err error) int {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrAlreadyExists):
		return http.StatusConflict
	case errors.As(err, &ve):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageOf hides internal errors from clients.
func messageOf(err error) string {
	switch statusOf(err) {
	case http.StatusNotFound:
		return "not found"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusConflict:
		return "already exists"
	case http.StatusBadRequest:
		return err.Error()
	}
	if errors.Is(err, services.ErrIO) {
		return "file storage failed"
	}
	return "internal error"
}

// respondError maps a service error to its HTTP status with {"error": ...}.
func respondError(c *gin.Context, op string, err error) {
	code := statusOf(err)
	logFailure(c, op, code, err)
	c.JSON(code, gin.H{"error": messageOf(err)})
}

// respondFailure is respondError for endpoints answering {success:false}.
func respondFailure(c *gin.Context, op, key string, err error) {
	code := statusOf(err)
	logFailure(c, op, code, err)
	c.JSON(code, gin.H{"success": false, key: messageOf(err)})
}

func logFailure(c *gin.Context, op string, code int, err error) {
	entry := log.WithFields(log.Fields{"actor_id": actorID(c), "status": code})
	if code >= http.StatusInternalServerError {
		entry.Errorf("%s[err] %v", op, err)
		return
	}
	entry.Infof("%s[deny] %v", op, err)
}
