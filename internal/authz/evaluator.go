package authz

import "digi3/internal/models"

// Evaluator is the single authorization decision point. It performs no I/O:
// relationship checks read only the target and the entities hung off it, so
// callers must load Project.Tasks / Task.Project before asking.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate never panics. Missing actor, missing target or a target of the
// wrong type all deny.
func (e *Evaluator) Evaluate(actor *models.User, action Action, target any) bool {
	if actor == nil {
		return false
	}
	switch action {
	case ViewStatistics, ManageUsers, EditCustomer, CreateProject:
		return Granted(actor.Role, action)

	case EditProject, DeleteProject, CreateTask:
		p, ok := asProject(target)
		if !ok {
			return false
		}
		if Granted(actor.Role, action) {
			return true
		}
		return actor.Role == models.RoleProjectManager && p.IsManagedBy(actor.ID)

	case ViewProject:
		p, ok := asProject(target)
		if !ok {
			return false
		}
		if Granted(actor.Role, action) {
			return true
		}
		return p.IsManagedBy(actor.ID) || p.HasAssignee(actor.ID)

	case EditTask, ViewTask, AddComment, AddAttachment:
		t, ok := asTask(target)
		if !ok {
			return false
		}
		if Granted(actor.Role, action) {
			return true
		}
		return t.IsAssignedTo(actor.ID) || t.Project.IsManagedBy(actor.ID)
	}
	return false
}

func asProject(target any) (*models.Project, bool) {
	p, ok := target.(*models.Project)
	return p, ok && p != nil
}

func asTask(target any) (*models.Task, bool) {
	t, ok := target.(*models.Task)
	return t, ok && t != nil
}

func (e *Evaluator) CanViewStatistics(actor *models.User) bool {
	return e.Evaluate(actor, ViewStatistics, nil)
}

func (e *Evaluator) CanManageUsers(actor *models.User) bool {
	return e.Evaluate(actor, ManageUsers, nil)
}

func (e *Evaluator) CanEditCustomer(actor *models.User) bool {
	return e.Evaluate(actor, EditCustomer, nil)
}

func (e *Evaluator) CanCreateProject(actor *models.User) bool {
	return e.Evaluate(actor, CreateProject, nil)
}

func (e *Evaluator) CanEditProject(actor *models.User, p *models.Project) bool {
	return e.Evaluate(actor, EditProject, p)
}

func (e *Evaluator) CanDeleteProject(actor *models.User, p *models.Project) bool {
	return e.Evaluate(actor, DeleteProject, p)
}

func (e *Evaluator) CanViewProject(actor *models.User, p *models.Project) bool {
	return e.Evaluate(actor, ViewProject, p)
}

func (e *Evaluator) CanCreateTask(actor *models.User, p *models.Project) bool {
	return e.Evaluate(actor, CreateTask, p)
}

func (e *Evaluator) CanEditTask(actor *models.User, t *models.Task) bool {
	return e.Evaluate(actor, EditTask, t)
}

func (e *Evaluator) CanViewTask(actor *models.User, t *models.Task) bool {
	return e.Evaluate(actor, ViewTask, t)
}

func (e *Evaluator) CanAddComment(actor *models.User, t *models.Task) bool {
	return e.Evaluate(actor, AddComment, t)
}

func (e *Evaluator) CanAddAttachment(actor *models.User, t *models.Task) bool {
	return e.Evaluate(actor, AddAttachment, t)
}

// ProjectFlags are the permission flags rendered next to a project.
type ProjectFlags struct {
	CanEdit       bool `json:"can_edit"`
	CanDelete     bool `json:"can_delete"`
	CanCreateTask bool `json:"can_create_task"`
}

func (e *Evaluator) ProjectFlags(actor *models.User, p *models.Project) ProjectFlags {
	return ProjectFlags{
		CanEdit:       e.CanEditProject(actor, p),
		CanDelete:     e.CanDeleteProject(actor, p),
		CanCreateTask: e.CanCreateTask(actor, p),
	}
}

// TaskFlags are the permission flags rendered next to a task.
type TaskFlags struct {
	CanEdit          bool `json:"can_edit"`
	CanAddComment    bool `json:"can_add_comment"`
	CanAddAttachment bool `json:"can_add_attachment"`
}

func (e *Evaluator) TaskFlags(actor *models.User, t *models.Task) TaskFlags {
	return TaskFlags{
		CanEdit:          e.CanEditTask(actor, t),
		CanAddComment:    e.CanAddComment(actor, t),
		CanAddAttachment: e.CanAddAttachment(actor, t),
	}
}
