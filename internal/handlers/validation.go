package handlers

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"digi3/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the enum binding tags used by request models.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		tags := map[string]validator.Func{
			"task_status": func(fl validator.FieldLevel) bool {
				return models.TaskStatus(fl.Field().String()).Valid()
			},
			"task_priority": func(fl validator.FieldLevel) bool {
				return models.TaskPriority(fl.Field().String()).Valid()
			},
			"task_complexity": func(fl validator.FieldLevel) bool {
				return models.TaskComplexity(fl.Field().String()).Valid()
			},
			"project_status": func(fl validator.FieldLevel) bool {
				return models.ProjectStatus(fl.Field().String()).Valid()
			},
			// role accepts "ROLE_X" and the short "x" form
			"role": func(fl validator.FieldLevel) bool {
				_, ok := models.LookupRole(fl.Field().String())
				return ok
			},
		}
		for tag, fn := range tags {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}
