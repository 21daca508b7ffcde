package services

import (
	"sort"

	"digi3/internal/models"
)

// Reorder computes the ranks of a destination column after a drag and drop.
// ordered is the full destination column, moved task included, top to bottom.
// Ranks are 1..N in list order. The result depends only on the arguments.
func Reorder(taskID int64, destination models.TaskStatus, ordered []int64) (models.ReorderPlan, error) {
	if !destination.Valid() {
		return models.ReorderPlan{}, invalid("newColumn", "unknown column %q", destination)
	}
	if len(ordered) == 0 {
		return models.ReorderPlan{}, invalid("taskOrder", "empty task order")
	}

	seen := make(map[int64]struct{}, len(ordered))
	found := false
	for _, id := range ordered {
		if id <= 0 {
			return models.ReorderPlan{}, invalid("taskOrder", "invalid task id %d", id)
		}
		if _, dup := seen[id]; dup {
			return models.ReorderPlan{}, invalid("taskOrder", "duplicate task id %d", id)
		}
		seen[id] = struct{}{}
		if id == taskID {
			found = true
		}
	}
	if !found {
		return models.ReorderPlan{}, invalid("taskId", "task %d is not in the task order", taskID)
	}

	plan := models.ReorderPlan{
		MovedTaskID: taskID,
		Destination: destination,
		Changes:     make([]models.RankChange, len(ordered)),
	}
	for i, id := range ordered {
		c := models.RankChange{TaskID: id, Rank: i + 1}
		if id == taskID {
			dst := destination
			c.Status = &dst
		}
		plan.Changes[i] = c
	}
	return plan, nil
}

// RankedID is a task id with the position the client displayed it at.
type RankedID struct {
	ID   int64 `json:"id"`
	Rank int   `json:"rank"`
}

// OrderByClientRank sorts by the client-provided rank; equal ranks keep the
// order they were sent in.
func OrderByClientRank(items []RankedID) []int64 {
	sorted := make([]RankedID, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })
	ids := make([]int64, len(sorted))
	for i, it := range sorted {
		ids[i] = it.ID
	}
	return ids
}
