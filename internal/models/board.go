package models

import "time"

// RankChange is one instruction of a ReorderPlan. Status is set only for the
// task that was dragged.
type RankChange struct {
	TaskID int64       `json:"task_id"`
	Rank   int         `json:"rank"`
	Status *TaskStatus `json:"status,omitempty"`
}

// ReorderPlan is the full new ordering of one board column.
type ReorderPlan struct {
	MovedTaskID int64        `json:"moved_task_id"`
	Destination TaskStatus   `json:"destination"`
	Changes     []RankChange `json:"changes"`
}

// TaskIDs lists the ids in rank order.
func (p ReorderPlan) TaskIDs() []int64 {
	ids := make([]int64, len(p.Changes))
	for i, c := range p.Changes {
		ids[i] = c.TaskID
	}
	return ids
}

type BoardEventType string

const (
	BoardTaskCreated BoardEventType = "task_created"
	BoardTaskUpdated BoardEventType = "task_updated"
	BoardTaskMoved   BoardEventType = "task_moved"
	BoardTaskStatus  BoardEventType = "task_status"
	BoardTaskDeleted BoardEventType = "task_deleted"
)

// BoardEvent tells open boards of a project that a task changed. Clients
// refetch the board rather than patching it.
type BoardEvent struct {
	Type      BoardEventType `json:"type"`
	ProjectID int64          `json:"project_id"`
	TaskID    int64          `json:"task_id"`
	Status    TaskStatus     `json:"status,omitempty"`
	ActorID   int64          `json:"actor_id"`
	At        time.Time      `json:"at"`
}
