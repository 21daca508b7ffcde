package authz

import "digi3/internal/models"

// Action names a gated operation.
type Action string

const (
	ViewStatistics Action = "view_statistics"
	ManageUsers    Action = "manage_users"
	EditCustomer   Action = "edit_customer"
	CreateProject  Action = "create_project"
	EditProject    Action = "edit_project"
	DeleteProject  Action = "delete_project"
	ViewProject    Action = "view_project"
	CreateTask     Action = "create_task"
	EditTask       Action = "edit_task"
	ViewTask       Action = "view_task"
	AddComment     Action = "add_comment"
	AddAttachment  Action = "add_attachment"
)

var AllActions = []Action{
	ViewStatistics, ManageUsers, EditCustomer, CreateProject,
	EditProject, DeleteProject, ViewProject, CreateTask,
	EditTask, ViewTask, AddComment, AddAttachment,
}

type roleSet map[models.Role]struct{}

func roles(rs ...models.Role) roleSet {
	s := make(roleSet, len(rs))
	for _, r := range rs {
		s[r] = struct{}{}
	}
	return s
}

func (s roleSet) has(r models.Role) bool {
	_, ok := s[r]
	return ok
}

// elevated roles pass every gate.
var elevated = roles(models.RoleAdmin, models.RoleResponsable)

// roleGrants lists, per action, the roles allowed regardless of the target.
// Actions with relationship rules also grant through the target (see Evaluate).
var roleGrants = map[Action]roleSet{
	ViewStatistics: elevated,
	ManageUsers:    elevated,
	EditCustomer:   elevated,
	CreateProject:  roles(models.RoleAdmin, models.RoleResponsable, models.RoleProjectManager),
	EditProject:    elevated,
	DeleteProject:  elevated,
	CreateTask:     elevated,
	EditTask:       elevated,
	ViewTask:       elevated,
	AddComment:     elevated,
	AddAttachment:  elevated,
	ViewProject: roles(models.RoleAdmin, models.RoleResponsable, models.RoleProjectManager,
		models.RoleLeadDeveloper, models.RoleDeveloper),
}

// IsElevated reports whether the role passes every gate.
func IsElevated(r models.Role) bool {
	return elevated.has(r)
}

// Granted reports whether the role alone is enough for action.
func Granted(r models.Role, action Action) bool {
	set, ok := roleGrants[action]
	return ok && set.has(r)
}
