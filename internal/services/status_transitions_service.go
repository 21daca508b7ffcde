package services

import (
	"time"

	"digi3/internal/authz"
	"digi3/internal/models"
)

// ApplyStatus validates an explicit status change and applies it to task in
// memory. Only Status, UpdatedByID and UpdatedAt change; persisting is the
// caller's job.
func ApplyStatus(ev *authz.Evaluator, task *models.Task, to models.TaskStatus, actor *models.User, now time.Time) error {
	if !ev.CanEditTask(actor, task) {
		return ErrPermissionDenied
	}
	if !to.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status " + string(to)}
	}
	task.Status = to
	id := actor.ID
	task.UpdatedByID = &id
	task.UpdatedAt = now
	return nil
}
