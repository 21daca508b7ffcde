package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"digi3/internal/services"
)

type ReportHandler struct {
	Service services.ReportService
}

func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// @Summary      Statistiques
// @Description  Projets et tâches par statut, nombre d'utilisateurs
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  services.Summary
// @Router       /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	data, err := h.Service.Summary(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, "[report][summary]", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Rapport PDF d'un projet
// @Tags         Reports
// @Produce      application/pdf
// @Param        id   path  int  true  "Project ID"
// @Success      200  {file}  file
// @Router       /reports/projects/{id}/pdf [get]
func (h *ReportHandler) ProjectPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.Service.ProjectPDF(c.Request.Context(), actorFrom(c), id, &buf); err != nil {
		respondError(c, "[report][pdf]", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="projet-%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
