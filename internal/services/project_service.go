package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"digi3/internal/authz"
	"digi3/internal/metrics"
	"digi3/internal/models"
	"digi3/internal/repositories"
)

// ProjectService orchestrates project operations. Every method takes the
// acting user explicitly.
type ProjectService interface {
	Create(ctx context.Context, actor *models.User, in models.ProjectInput) (*models.Project, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.Project, error)
	Manage(ctx context.Context, actor *models.User, id int64) (*ProjectView, error)
	List(ctx context.Context, actor *models.User) ([]*models.Project, error)
	Update(ctx context.Context, actor *models.User, id int64, in models.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

// BoardColumn is one status column of the project board, tasks in rank order.
type BoardColumn struct {
	Status models.TaskStatus `json:"status"`
	Tasks  []*models.Task    `json:"tasks"`
}

type ProjectView struct {
	Project     *models.Project    `json:"project"`
	Columns     []BoardColumn      `json:"columns"`
	Permissions authz.ProjectFlags `json:"permissions"`
}

type projectService struct {
	projects  repositories.ProjectRepository
	tasks     repositories.TaskRepository
	users     repositories.UserRepository
	customers repositories.CustomerRepository
	files     FileStore
	ev        *authz.Evaluator
	now       func() time.Time
}

func NewProjectService(
	projects repositories.ProjectRepository,
	tasks repositories.TaskRepository,
	users repositories.UserRepository,
	customers repositories.CustomerRepository,
	files FileStore,
	ev *authz.Evaluator,
) ProjectService {
	return &projectService{
		projects:  projects,
		tasks:     tasks,
		users:     users,
		customers: customers,
		files:     files,
		ev:        ev,
		now:       time.Now,
	}
}

func denied(action authz.Action) error {
	metrics.PermissionDenied(string(action))
	return ErrPermissionDenied
}

// load fetches a project with its tasks and manager.
func (s *projectService) load(ctx context.Context, id int64) (*models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	tasks, err := s.tasks.FindAll(ctx, models.TaskFilter{ProjectID: &p.ID})
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		p.AddTask(t)
	}
	if p.ManagerID != nil {
		if p.Manager, err = s.users.GetByID(ctx, *p.ManagerID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *projectService) Create(ctx context.Context, actor *models.User, in models.ProjectInput) (*models.Project, error) {
	if !s.ev.CanCreateProject(actor) {
		return nil, denied(authz.CreateProject)
	}
	if in.ManagerID == nil && actor.Role == models.RoleProjectManager {
		id := actor.ID
		in.ManagerID = &id
	}
	p := &models.Project{}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"project_id": p.ID, "actor_id": actor.ID}).Info("[project][create][ok]")
	return p, nil
}

func (s *projectService) Get(ctx context.Context, actor *models.User, id int64) (*models.Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ev.CanViewProject(actor, p) {
		return nil, denied(authz.ViewProject)
	}
	return p, nil
}

func (s *projectService) Manage(ctx context.Context, actor *models.User, id int64) (*ProjectView, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &ProjectView{
		Project:     p,
		Columns:     BuildBoard(p.Tasks),
		Permissions: s.ev.ProjectFlags(actor, p),
	}, nil
}

// BuildBoard groups tasks by status column in board order, each column by rank.
func BuildBoard(tasks []*models.Task) []BoardColumn {
	cols := make([]BoardColumn, len(models.TaskStatuses))
	for i, st := range models.TaskStatuses {
		cols[i] = BoardColumn{Status: st, Tasks: []*models.Task{}}
	}
	for _, t := range tasks {
		if i := t.Status.Column(); i >= 0 {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	for _, c := range cols {
		sortByRank(c.Tasks)
	}
	return cols
}

func sortByRank(tasks []*models.Task) {
	// insertion sort: columns are short and usually already ordered
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && less(tasks[j], tasks[j-1]); j-- {
			tasks[j], tasks[j-1] = tasks[j-1], tasks[j]
		}
	}
}

func less(a, b *models.Task) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.ID < b.ID
}

func (s *projectService) List(ctx context.Context, actor *models.User) ([]*models.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindAll(ctx, models.TaskFilter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	for _, t := range tasks {
		if p, ok := byID[t.ProjectID]; ok {
			p.AddTask(t)
		}
	}

	visible := make([]*models.Project, 0, len(projects))
	for _, p := range projects {
		if s.ev.CanViewProject(actor, p) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *projectService) Update(ctx context.Context, actor *models.User, id int64, in models.ProjectInput) (*models.Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ev.CanEditProject(actor, p) {
		return nil, denied(authz.EditProject)
	}
	// only elevated roles may clear or hand over the manager
	if !authz.IsElevated(actor.Role) && !sameID(in.ManagerID, p.ManagerID) {
		if in.ManagerID != nil {
			return nil, invalid("manager_id", "only an administrator can change the manager")
		}
		in.ManagerID = p.ManagerID
	}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"project_id": p.ID, "actor_id": actor.ID}).Info("[project][update][ok]")
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, actor *models.User, id int64) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.ev.CanDeleteProject(actor, p) {
		return denied(authz.DeleteProject)
	}
	files, err := s.projects.AttachmentFiles(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, p.ID); err != nil {
		return err
	}
	for _, f := range files {
		if err := s.files.Remove(f); err != nil {
			log.WithField("file", f).Warnf("[project][delete][warn] remove attachment: %v", err)
		}
	}
	log.WithFields(log.Fields{"project_id": p.ID, "actor_id": actor.ID, "files": len(files)}).Info("[project][delete][ok]")
	return nil
}

// apply validates in and copies it onto p.
func (s *projectService) apply(ctx context.Context, p *models.Project, in models.ProjectInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalid("name", "name is required")
	}
	status := in.Status
	if status == "" {
		status = p.Status
	}
	if status == "" {
		status = models.ProjectStatusNew
	}
	if !status.Valid() {
		return invalid("status", "unknown status %q", in.Status)
	}
	if in.StartDate != nil && in.TargetDate != nil && in.TargetDate.Before(*in.StartDate) {
		return invalid("target_date", "target date is before start date")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return invalid("end_date", "end date is before start date")
	}
	if in.ManagerID != nil {
		m, err := s.users.GetByID(ctx, *in.ManagerID)
		if err != nil {
			return fmt.Errorf("load manager: %w", err)
		}
		if m == nil {
			return invalid("manager_id", "user %d does not exist", *in.ManagerID)
		}
		p.Manager = m
	} else {
		p.Manager = nil
	}
	if in.CustomerID != nil {
		c, err := s.customers.GetByID(ctx, *in.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		if c == nil {
			return invalid("customer_id", "customer %d does not exist", *in.CustomerID)
		}
	}

	p.Name = name
	p.Description = strings.TrimSpace(in.Description)
	p.Status = status
	p.ManagerID = in.ManagerID
	p.CustomerID = in.CustomerID
	p.StartDate = in.StartDate
	p.TargetDate = in.TargetDate
	p.EndDate = in.EndDate
	return nil
}
