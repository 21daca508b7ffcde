package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digi3/internal/models"
)

func TestProjectReportWithCoreFont(t *testing.T) {
	g := NewReportGenerator("does/not/exist.ttf")
	assert.False(t, g.utf8)

	p := &models.Project{ID: 1, Name: "Projet de test", Status: models.ProjectStatusInProgress, Description: "Échéance proche"}
	data := ProjectReportData{
		Project:     p,
		ManagerName: "Hélène Martin",
		Columns: []Column{
			{Status: models.StatusNew, Tasks: []*models.Task{{ID: 1, Name: "Tâche 1", Rank: 1, Priority: models.PriorityHigh, Complexity: models.ComplexitySimple}}},
			{Status: models.StatusInProgress},
		},
		GeneratedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, g.ProjectReport(&buf, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestProjectReportRequiresProject(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewReportGenerator("").ProjectReport(&buf, ProjectReportData{}))
	assert.Zero(t, buf.Len())
}
