package services

import (
	"context"
	"io"
	"time"

	"digi3/internal/authz"
	"digi3/internal/models"
	"digi3/internal/pdf"
	"digi3/internal/repositories"
)

type Summary struct {
	Projects map[models.ProjectStatus]int `json:"projects"`
	Tasks    map[models.TaskStatus]int    `json:"tasks"`
	Users    int                          `json:"users"`
}

type ReportService interface {
	Summary(ctx context.Context, actor *models.User) (*Summary, error)
	// ProjectPDF writes the project report to w.
	ProjectPDF(ctx context.Context, actor *models.User, projectID int64, w io.Writer) error
}

type reportService struct {
	projects ProjectService
	projRepo repositories.ProjectRepository
	tasks    repositories.TaskRepository
	users    repositories.UserRepository
	gen      pdf.Generator
	ev       *authz.Evaluator
	now      func() time.Time
}

func NewReportService(
	projects ProjectService,
	projRepo repositories.ProjectRepository,
	tasks repositories.TaskRepository,
	users repositories.UserRepository,
	gen pdf.Generator,
	ev *authz.Evaluator,
) ReportService {
	return &reportService{
		projects: projects,
		projRepo: projRepo,
		tasks:    tasks,
		users:    users,
		gen:      gen,
		ev:       ev,
		now:      time.Now,
	}
}

func (s *reportService) Summary(ctx context.Context, actor *models.User) (*Summary, error) {
	if !s.ev.CanViewStatistics(actor) {
		return nil, denied(authz.ViewStatistics)
	}
	projects, err := s.projRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range models.ProjectStatuses {
		if _, ok := projects[st]; !ok {
			projects[st] = 0
		}
	}
	for _, st := range models.TaskStatuses {
		if _, ok := tasks[st]; !ok {
			tasks[st] = 0
		}
	}
	return &Summary{Projects: projects, Tasks: tasks, Users: users}, nil
}

func (s *reportService) ProjectPDF(ctx context.Context, actor *models.User, projectID int64, w io.Writer) error {
	if !s.ev.CanViewStatistics(actor) {
		return denied(authz.ViewStatistics)
	}
	view, err := s.projects.Manage(ctx, actor, projectID)
	if err != nil {
		return err
	}
	data := pdf.ProjectReportData{
		Project:     view.Project,
		GeneratedAt: s.now(),
	}
	if view.Project.Manager != nil {
		data.ManagerName = view.Project.Manager.FullName()
	}
	for _, c := range view.Columns {
		data.Columns = append(data.Columns, pdf.Column{Status: c.Status, Tasks: c.Tasks})
	}
	return s.gen.ProjectReport(w, data)
}
