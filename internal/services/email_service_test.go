package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"digi3/internal/models"
)

func TestWelcomeBody(t *testing.T) {
	t.Run("greets by name and states the role", func(t *testing.T) {
		body := welcomeBody(&models.User{FirstName: "Léa", LastName: "Martin", Email: "lea@digi3.test", Role: models.RoleProjectManager})
		assert.Contains(t, body, "Bienvenue Léa Martin !")
		assert.Contains(t, body, "<strong>chef de projet</strong>")
		assert.Contains(t, body, "lea@digi3.test")
	})

	t.Run("falls back to the address without a name", func(t *testing.T) {
		body := welcomeBody(&models.User{Email: "x@digi3.test", Role: models.RoleDeveloper})
		assert.Contains(t, body, "Bienvenue x@digi3.test !")
		assert.Contains(t, body, "développeur")
	})

	t.Run("escapes user input", func(t *testing.T) {
		body := welcomeBody(&models.User{FirstName: "<b>Eve</b>", Email: "eve@digi3.test", Role: "ROLE_CUSTOM"})
		assert.Contains(t, body, "&lt;b&gt;Eve&lt;/b&gt;")
		assert.NotContains(t, body, "<b>Eve")
		assert.Contains(t, body, "ROLE_CUSTOM")
	})
}
