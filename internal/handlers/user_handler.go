package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"digi3/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// @Summary      Créer un utilisateur
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      services.UserInput  true  "Utilisateur"
// @Success      201   {object}  models.User
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.service.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, "[user][create]", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Détail d'un utilisateur
// @Tags         Users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  models.User
// @Router       /users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.service.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, "[user][get]", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Modifier un utilisateur
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "User ID"
// @Param        user  body      services.UserInput  true  "Utilisateur"
// @Success      200   {object}  models.User
// @Router       /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.service.Update(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, "[user][update]", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Supprimer un utilisateur
// @Tags         Users
// @Param        id   path  int  true  "User ID"
// @Success      200  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, "[user][delete]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// @Summary      Liste des utilisateurs
// @Tags         Users
// @Produce      json
// @Param        page  query  int  false  "Page (1..)"
// @Param        size  query  int  false  "Taille de page"
// @Success      200   {object}  map[string]interface{}
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 50)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 50
	}
	users, total, err := h.service.List(c.Request.Context(), actorFrom(c), size, (page-1)*size)
	if err != nil {
		respondError(c, "[user][list]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total, "page": page, "size": size})
}
