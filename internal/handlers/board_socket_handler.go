package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"digi3/internal/realtime"
	"digi3/internal/services"
)

type BoardSocketHandler struct {
	projects services.ProjectService
	hub      *realtime.BoardHub
	upgrader *websocket.Upgrader
}

func NewBoardSocketHandler(projects services.ProjectService, hub *realtime.BoardHub, allowedOrigins []string) *BoardSocketHandler {
	return &BoardSocketHandler{projects: projects, hub: hub, upgrader: realtime.NewUpgrader(allowedOrigins)}
}

// @Summary      Suivi en direct du tableau
// @Description  WebSocket recevant un évènement JSON à chaque modification d'une tâche du projet
// @Tags         Board
// @Param        id   path  int  true  "Project ID"
// @Success      101
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /project/manage/{id}/ws [get]
func (h *BoardSocketHandler) Subscribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.projects.Get(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, "[board][ws]", err)
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already answered the client
		log.WithField("project_id", id).Infof("[board][ws][upgrade] %v", err)
		return
	}
	log.WithFields(log.Fields{"project_id": id, "actor_id": actorID(c)}).Info("[board][ws][open]")
	realtime.NewClient(conn).Serve(h.hub, id)
}
