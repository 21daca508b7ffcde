package models

import "time"

type ProjectStatus string

const (
	ProjectStatusNew        ProjectStatus = "new"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
)

var ProjectStatuses = []ProjectStatus{
	ProjectStatusNew, ProjectStatusInProgress, ProjectStatusCompleted,
	ProjectStatusCancelled, ProjectStatusOnHold,
}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	ManagerID   *int64        `json:"manager_id,omitempty"`
	Manager     *User         `json:"manager,omitempty"`
	CustomerID  *int64        `json:"customer_id,omitempty"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	TargetDate  *time.Time    `json:"target_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Tasks       []*Task       `json:"tasks,omitempty"`
}

// AddTask attaches t to p and points t back at p. The task's ProjectID is the
// authoritative side; the slice is a view of it.
func (p *Project) AddTask(t *Task) {
	if t == nil {
		return
	}
	for _, existing := range p.Tasks {
		if existing == t {
			t.ProjectID = p.ID
			t.Project = p
			return
		}
	}
	t.ProjectID = p.ID
	t.Project = p
	p.Tasks = append(p.Tasks, t)
}

// IsManagedBy reports whether userID is the project's manager.
func (p *Project) IsManagedBy(userID int64) bool {
	return p != nil && p.ManagerID != nil && *p.ManagerID == userID
}

// HasAssignee reports whether userID is assigned to any task of the project.
func (p *Project) HasAssignee(userID int64) bool {
	if p == nil {
		return false
	}
	for _, t := range p.Tasks {
		if t != nil && t.IsAssignedTo(userID) {
			return true
		}
	}
	return false
}

// ProjectInput carries the editable fields of a project.
type ProjectInput struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" binding:"omitempty,project_status"`
	ManagerID   *int64        `json:"manager_id"`
	CustomerID  *int64        `json:"customer_id"`
	StartDate   *time.Time    `json:"start_date"`
	TargetDate  *time.Time    `json:"target_date"`
	EndDate     *time.Time    `json:"end_date"`
}
