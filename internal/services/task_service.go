// internal/services/task_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"digi3/internal/authz"
	"digi3/internal/metrics"
	"digi3/internal/models"
	"digi3/internal/repositories"
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, actor *models.User, projectID int64, in models.TaskInput) (*models.Task, error)
	Get(ctx context.Context, actor *models.User, id int64) (*TaskView, error)
	Update(ctx context.Context, actor *models.User, id int64, in models.TaskInput) (*models.Task, error)
	Delete(ctx context.Context, actor *models.User, id int64) error

	UpdateStatus(ctx context.Context, actor *models.User, id int64, to models.TaskStatus) (*models.Task, error)
	// Move drops taskID into destination with the given full column order.
	Move(ctx context.Context, actor *models.User, taskID int64, destination models.TaskStatus, ordered []int64) (models.ReorderPlan, error)

	AddComment(ctx context.Context, actor *models.User, id int64, content string) (*models.TaskComment, error)
	AddAttachment(ctx context.Context, actor *models.User, id int64, up Upload) (*models.TaskAttachment, error)
}

// TaskView is a task page: the task with its comments, attachments and the
// actor's permissions on it.
type TaskView struct {
	Task        *models.Task    `json:"task"`
	Project     *models.Project `json:"project"`
	Permissions authz.TaskFlags `json:"permissions"`
}

// BoardPublisher fans board changes out to live viewers of a project.
type BoardPublisher interface {
	Publish(ev models.BoardEvent)
}

type nopBoard struct{}

func (nopBoard) Publish(models.BoardEvent) {}

// Upload is an attachment received from a client.
type Upload struct {
	Filename    string
	Description string
	Content     io.Reader
}

type taskService struct {
	tasks       repositories.TaskRepository
	projects    repositories.ProjectRepository
	users       repositories.UserRepository
	comments    repositories.CommentRepository
	attachments repositories.AttachmentRepository
	files       FileStore
	notifier    Notifier
	board       BoardPublisher
	ev          *authz.Evaluator
	now         func() time.Time
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(
	tasks repositories.TaskRepository,
	projects repositories.ProjectRepository,
	users repositories.UserRepository,
	comments repositories.CommentRepository,
	attachments repositories.AttachmentRepository,
	files FileStore,
	notifier Notifier,
	board BoardPublisher,
	ev *authz.Evaluator,
) TaskService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	if board == nil {
		board = nopBoard{}
	}
	return &taskService{
		tasks:       tasks,
		projects:    projects,
		users:       users,
		comments:    comments,
		attachments: attachments,
		files:       files,
		notifier:    notifier,
		board:       board,
		ev:          ev,
		now:         time.Now,
	}
}

// load fetches a task and links it to its project.
func (s *taskService) load(ctx context.Context, id int64) (*models.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	p, err := s.projects.GetByID(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	p.AddTask(t)
	return t, nil
}

func (s *taskService) Create(ctx context.Context, actor *models.User, projectID int64, in models.TaskInput) (*models.Task, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if !s.ev.CanCreateTask(actor, p) {
		return nil, denied(authz.CreateTask)
	}

	task := &models.Task{
		Status:     models.StatusNew,
		Priority:   models.PriorityMedium,
		Complexity: models.ComplexityModerate,
	}
	assignee, err := s.apply(ctx, task, in)
	if err != nil {
		return nil, err
	}
	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now
	uid := actor.ID
	task.UpdatedByID = &uid
	p.AddTask(task)

	if err := s.tasks.Store(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrProjectMissing) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	log.WithFields(log.Fields{"task_id": task.ID, "project_id": p.ID, "actor_id": actor.ID}).Info("[task][create][ok]")
	s.publish(models.BoardTaskCreated, task, actor)
	if assignee != nil {
		s.notifier.TaskAssigned(assignee, task)
	}
	return task, nil
}

func (s *taskService) Get(ctx context.Context, actor *models.User, id int64) (*TaskView, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ev.CanViewTask(actor, t) {
		return nil, denied(authz.ViewTask)
	}
	if t.Comments, err = s.comments.ListByTask(ctx, t.ID); err != nil {
		return nil, err
	}
	if t.Attachments, err = s.attachments.ListByTask(ctx, t.ID); err != nil {
		return nil, err
	}
	return &TaskView{Task: t, Project: t.Project, Permissions: s.ev.TaskFlags(actor, t)}, nil
}

func (s *taskService) Update(ctx context.Context, actor *models.User, id int64, in models.TaskInput) (*models.Task, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ev.CanEditTask(actor, t) {
		return nil, denied(authz.EditTask)
	}
	prevAssignee := t.AssigneeID
	prevStatus := t.Status

	// permission was decided on the stored task; fields and status are
	// validated before anything is written and saved in one transaction
	assignee, err := s.apply(ctx, t, in)
	if err != nil {
		return nil, err
	}
	uid := actor.ID
	t.UpdatedByID = &uid
	t.UpdatedAt = s.now()

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"task_id": t.ID, "from": prevStatus, "to": t.Status, "actor_id": actor.ID}).Info("[task][update][ok]")
	s.publish(models.BoardTaskUpdated, t, actor)

	reassigned := assignee != nil && !sameID(prevAssignee, t.AssigneeID)
	if reassigned {
		s.notifier.TaskAssigned(assignee, t)
	} else if t.Status != prevStatus {
		s.notifyStatus(ctx, t)
	}
	return t, nil
}

func (s *taskService) Delete(ctx context.Context, actor *models.User, id int64) error {
	t, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.ev.CanEditProject(actor, t.Project) {
		return denied(authz.EditProject)
	}
	files, err := s.attachments.ListByTask(ctx, t.ID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, t.ID); err != nil {
		return err
	}
	for _, a := range files {
		if err := s.files.Remove(a.Filename); err != nil {
			log.WithField("file", a.Filename).Warnf("[task][delete][warn] remove attachment: %v", err)
		}
	}
	log.WithFields(log.Fields{"task_id": t.ID, "actor_id": actor.ID}).Info("[task][delete][ok]")
	s.publish(models.BoardTaskDeleted, t, actor)
	return nil
}

func (s *taskService) UpdateStatus(ctx context.Context, actor *models.User, id int64, to models.TaskStatus) (*models.Task, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := t.Status
	if err := ApplyStatus(s.ev, t, to, actor, s.now()); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			metrics.PermissionDenied(string(authz.EditTask))
		}
		return nil, err
	}
	if err := s.tasks.UpdateStatus(ctx, t); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"task_id": t.ID, "from": prev, "to": to, "actor_id": actor.ID}).Info("[task][status][ok]")
	if prev != to {
		s.publish(models.BoardTaskStatus, t, actor)
		s.notifyStatus(ctx, t)
	}
	return t, nil
}

func (s *taskService) Move(ctx context.Context, actor *models.User, taskID int64, destination models.TaskStatus, ordered []int64) (models.ReorderPlan, error) {
	t, err := s.load(ctx, taskID)
	if err != nil {
		metrics.ReorderRejected()
		return models.ReorderPlan{}, err
	}
	if !s.ev.CanEditTask(actor, t) {
		metrics.ReorderRejected()
		return models.ReorderPlan{}, denied(authz.EditTask)
	}
	plan, err := Reorder(taskID, destination, ordered)
	if err != nil {
		metrics.ReorderRejected()
		return models.ReorderPlan{}, err
	}

	prev := t.Status
	now := s.now()
	err = s.tasks.ApplyReorder(ctx, t.ProjectID, plan, actor.ID, now)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrProjectMissing):
		metrics.ReorderRejected()
		return models.ReorderPlan{}, ErrNotFound
	case errors.Is(err, repositories.ErrForeignTask):
		metrics.ReorderRejected()
		return models.ReorderPlan{}, invalid("taskOrder", "tasks must belong to the project and the target column")
	case errors.Is(err, repositories.ErrIncompleteColumn):
		metrics.ReorderRejected()
		return models.ReorderPlan{}, invalid("taskOrder", "order must list every task of the column")
	default:
		metrics.ReorderRejected()
		return models.ReorderPlan{}, err
	}
	metrics.ReorderApplied()
	log.WithFields(log.Fields{
		"task_id": t.ID, "project_id": t.ProjectID, "column": destination, "size": len(plan.Changes), "actor_id": actor.ID,
	}).Info("[task][move][ok]")

	if prev != destination {
		t.Status = destination
		uid := actor.ID
		t.UpdatedByID = &uid
		t.UpdatedAt = now
		s.notifyStatus(ctx, t)
	}
	s.publish(models.BoardTaskMoved, t, actor)
	return plan, nil
}

func (s *taskService) AddComment(ctx context.Context, actor *models.User, id int64, content string) (*models.TaskComment, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ev.CanAddComment(actor, t) {
		return nil, denied(authz.AddComment)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("comment", "comment is empty")
	}
	c := &models.TaskComment{
		Content:   content,
		UserID:    actor.ID,
		TaskID:    t.ID,
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *taskService) AddAttachment(ctx context.Context, actor *models.User, id int64, up Upload) (*models.TaskAttachment, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ev.CanAddAttachment(actor, t) {
		return nil, denied(authz.AddAttachment)
	}
	if strings.TrimSpace(up.Filename) == "" || up.Content == nil {
		return nil, invalid("attachment", "file is required")
	}

	stored, err := s.files.Save(up.Filename, up.Content)
	if err != nil {
		log.WithField("task_id", t.ID).Errorf("[task][attach][error] save: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	a := &models.TaskAttachment{
		Filename:         stored,
		OriginalFilename: up.Filename,
		Description:      strings.TrimSpace(up.Description),
		UserID:           actor.ID,
		TaskID:           t.ID,
		CreatedAt:        s.now(),
	}
	if err := s.attachments.Create(ctx, a); err != nil {
		if rmErr := s.files.Remove(stored); rmErr != nil {
			log.WithField("file", stored).Warnf("[task][attach][warn] cleanup: %v", rmErr)
		}
		return nil, err
	}
	return a, nil
}

// apply validates in and copies the editable fields onto t. It returns the
// assignee when one is set.
func (s *taskService) apply(ctx context.Context, t *models.Task, in models.TaskInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		t.Status = in.Status
	}
	if in.Priority != "" {
		if !in.Priority.Valid() {
			return nil, invalid("priority", "unknown priority %q", in.Priority)
		}
		t.Priority = in.Priority
	}
	if in.Complexity != "" {
		if !in.Complexity.Valid() {
			return nil, invalid("complexity", "unknown complexity %q", in.Complexity)
		}
		t.Complexity = in.Complexity
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, invalid("end_date", "end date is before start date")
	}
	if in.StartDate != nil && in.TargetDate != nil && in.TargetDate.Before(*in.StartDate) {
		return nil, invalid("target_date", "target date is before start date")
	}

	var assignee *models.User
	if in.AssigneeID != nil {
		u, err := s.users.GetByID(ctx, *in.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("load assignee: %w", err)
		}
		if u == nil {
			return nil, invalid("assignee_id", "user %d does not exist", *in.AssigneeID)
		}
		assignee = u
	}

	t.Name = name
	t.Description = strings.TrimSpace(in.Description)
	t.AssigneeID = in.AssigneeID
	t.StartDate = in.StartDate
	t.EndDate = in.EndDate
	t.TargetDate = in.TargetDate
	return assignee, nil
}

func (s *taskService) notifyStatus(ctx context.Context, t *models.Task) {
	if t.AssigneeID == nil {
		return
	}
	u, err := s.users.GetByID(ctx, *t.AssigneeID)
	if err != nil || u == nil {
		return
	}
	s.notifier.TaskStatusChanged(u, t)
}

func (s *taskService) publish(kind models.BoardEventType, t *models.Task, actor *models.User) {
	s.board.Publish(models.BoardEvent{
		Type:      kind,
		ProjectID: t.ProjectID,
		TaskID:    t.ID,
		Status:    t.Status,
		ActorID:   actor.ID,
		At:        s.now(),
	})
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
