// internal/models/task.go
package models

import "time"

// TaskStatus is both the task's state and the board column it sits in.
type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
)

// TaskStatuses is the board's column order.
var TaskStatuses = []TaskStatus{
	StatusNew, StatusInProgress, StatusReview, StatusCompleted, StatusBlocked,
}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Column returns the index of the status in the board, -1 if unknown.
func (s TaskStatus) Column() int {
	for i, v := range TaskStatuses {
		if s == v {
			return i
		}
	}
	return -1
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type TaskComplexity string

const (
	ComplexitySimple      TaskComplexity = "simple"
	ComplexityModerate    TaskComplexity = "moderate"
	ComplexityComplex     TaskComplexity = "complex"
	ComplexityVeryComplex TaskComplexity = "very_complex"
)

func (c TaskComplexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex, ComplexityVeryComplex:
		return true
	}
	return false
}

// Task represents the structure of a task in the system.
type Task struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      TaskStatus     `json:"status"`
	Priority    TaskPriority   `json:"priority"`
	Complexity  TaskComplexity `json:"complexity"`
	ProjectID   int64          `json:"project_id"`
	Project     *Project       `json:"-"`
	AssigneeID  *int64         `json:"assignee_id,omitempty"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	TargetDate  *time.Time     `json:"target_date,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	UpdatedByID *int64         `json:"updated_by_id,omitempty"`
	Rank        int            `json:"rank"`

	Comments    []*TaskComment    `json:"comments,omitempty"`
	Attachments []*TaskAttachment `json:"attachments,omitempty"`
}

func (t *Task) IsAssignedTo(userID int64) bool {
	return t != nil && t.AssigneeID != nil && *t.AssigneeID == userID
}

// TaskInput carries the editable fields of a task.
type TaskInput struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Status      TaskStatus     `json:"status" binding:"omitempty,task_status"`
	Priority    TaskPriority   `json:"priority" binding:"omitempty,task_priority"`
	Complexity  TaskComplexity `json:"complexity" binding:"omitempty,task_complexity"`
	AssigneeID  *int64         `json:"assignee_id"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	TargetDate  *time.Time     `json:"target_date"`
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	ProjectID  *int64
	AssigneeID *int64
	Status     *TaskStatus
}

type TaskComment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserID    int64     `json:"user_id"`
	TaskID    int64     `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

type TaskAttachment struct {
	ID               int64     `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	Description      string    `json:"description"`
	UserID           int64     `json:"user_id"`
	TaskID           int64     `json:"task_id"`
	CreatedAt        time.Time `json:"created_at"`
}
