package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"digi3/internal/authz"
	"digi3/internal/models"
	"digi3/internal/services"
)

type ProjectHandler struct {
	projects services.ProjectService
	tasks    services.TaskService
	ev       *authz.Evaluator
}

func NewProjectHandler(projects services.ProjectService, tasks services.TaskService, ev *authz.Evaluator) *ProjectHandler {
	return &ProjectHandler{projects: projects, tasks: tasks, ev: ev}
}

type projectListItem struct {
	*models.Project
	Permissions authz.ProjectFlags `json:"permissions"`
}

// @Summary      Liste des projets
// @Description  Projets visibles par l'utilisateur, avec ses droits sur chacun
// @Tags         Projects
// @Produce      json
// @Success      200  {array}   map[string]interface{}
// @Router       /project/manage [get]
func (h *ProjectHandler) List(c *gin.Context) {
	actor := actorFrom(c)
	projects, err := h.projects.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "[project][list]", err)
		return
	}
	out := make([]projectListItem, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectListItem{Project: p, Permissions: h.ev.ProjectFlags(actor, p)})
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Tableau d'un projet
// @Description  Projet, tâches par colonne triées par rang, droits de l'utilisateur
// @Tags         Projects
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  services.ProjectView
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /project/manage/{id} [get]
func (h *ProjectHandler) Manage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.projects.Manage(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, "[project][manage]", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Créer un projet
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        project  body      models.ProjectInput  true  "Projet"
// @Success      201      {object}  models.Project
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.projects.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, "[project][create]", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary      Détail d'un projet
// @Tags         Projects
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  models.Project
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, "[project][get]", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Modifier un projet
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Project ID"
// @Param        project  body      models.ProjectInput  true  "Projet"
// @Success      200      {object}  models.Project
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.projects.Update(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, "[project][update]", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Supprimer un projet
// @Description  Supprime le projet, ses tâches et leurs pièces jointes
// @Tags         Projects
// @Param        id   path  int  true  "Project ID"
// @Success      200  {object}  map[string]string
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, "[project][delete]", err)
		return
	}
	log.WithFields(log.Fields{"project_id": id, "actor_id": actorID(c)}).Info("[project][delete][ok]")
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

// @Summary      Créer une tâche
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Project ID"
// @Param        task  body      models.TaskInput  true  "Tâche"
// @Success      201   {object}  models.Task
// @Router       /projects/{id}/tasks [post]
func (h *ProjectHandler) CreateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in models.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.tasks.Create(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, "[task][create]", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}
