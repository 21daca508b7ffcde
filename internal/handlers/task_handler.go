package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"digi3/internal/models"
	"digi3/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type taskOrderItem struct {
	ID   int64 `json:"id" binding:"required"`
	Rank int   `json:"rank"`
}

type updatePositionRequest struct {
	TaskID    int64           `json:"taskId" binding:"required"`
	NewColumn string          `json:"newColumn" binding:"required"`
	TaskOrder []taskOrderItem `json:"taskOrder" binding:"required,dive"`
}

// @Summary      Déplacer une tâche sur le tableau
// @Description  Place la tâche dans la colonne cible et renumérote la colonne selon taskOrder
// @Tags         Board
// @Accept       json
// @Produce      json
// @Param        body  body      updatePositionRequest  true  "Nouvelle position"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      403   {object}  map[string]interface{}
// @Router       /management-project/update-task-position [post]
func (h *TaskHandler) UpdatePosition(c *gin.Context) {
	var req updatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Infof("[task][position][bind] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	items := make([]services.RankedID, len(req.TaskOrder))
	for i, it := range req.TaskOrder {
		items[i] = services.RankedID{ID: it.ID, Rank: it.Rank}
	}
	ordered := services.OrderByClientRank(items)

	if _, err := h.service.Move(c.Request.Context(), actorFrom(c), req.TaskID, models.TaskStatus(req.NewColumn), ordered); err != nil {
		respondFailure(c, "[task][position]", "error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary      Détail d'une tâche
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  services.TaskView
// @Router       /task/{id} [get]
func (h *TaskHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, "[task][show]", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Commenter ou joindre un fichier
// @Description  Champ "comment" pour un commentaire, ou fichier multipart "attachment" (+ "description")
// @Tags         Tasks
// @Accept       multipart/form-data
// @Produce      json
// @Param        id           path      int     true   "Task ID"
// @Param        comment      formData  string  false  "Commentaire"
// @Param        attachment   formData  file    false  "Pièce jointe"
// @Param        description  formData  string  false  "Description de la pièce jointe"
// @Success      201          {object}  map[string]interface{}
// @Router       /task/{id} [post]
func (h *TaskHandler) Post(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor := actorFrom(c)

	fh, err := c.FormFile("attachment")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			respondError(c, "[task][attach]", errors.Join(services.ErrIO, err))
			return
		}
		defer f.Close()
		a, err := h.service.AddAttachment(c.Request.Context(), actor, id, services.Upload{
			Filename:    fh.Filename,
			Description: c.PostForm("description"),
			Content:     f,
		})
		if err != nil {
			respondError(c, "[task][attach]", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"attachment": a})
	case errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart):
		cm, err := h.service.AddComment(c.Request.Context(), actor, id, c.PostForm("comment"))
		if err != nil {
			respondError(c, "[task][comment]", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"comment": cm})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// @Summary      Modifier une tâche
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Task ID"
// @Param        task  body      models.TaskInput  true  "Tâche"
// @Success      200   {object}  models.Task
// @Router       /task/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in models.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.service.Update(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, "[task][update]", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Supprimer une tâche
// @Tags         Tasks
// @Param        id   path  int  true  "Task ID"
// @Success      200  {object}  map[string]string
// @Router       /task/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, "[task][delete]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// @Summary      Changer le statut
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Task ID"
// @Param        body  body      updateStatusRequest  true  "Nouveau statut"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Router       /task/{id}/update-status [post]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	if _, err := h.service.UpdateStatus(c.Request.Context(), actorFrom(c), id, models.TaskStatus(req.Status)); err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Statut invalide"})
			return
		}
		respondFailure(c, "[task][status]", "message", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Statut mis à jour"})
}
