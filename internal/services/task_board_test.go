package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digi3/internal/models"
)

func ranks(plan models.ReorderPlan) map[int64]int {
	out := make(map[int64]int, len(plan.Changes))
	for _, c := range plan.Changes {
		out[c.TaskID] = c.Rank
	}
	return out
}

func TestReorder_DragIntoMiddleOfColumn(t *testing.T) {
	// T1 moves from NEW into IN_PROGRESS between T2 (rank 1) and T3 (rank 2).
	plan, err := Reorder(1, models.StatusInProgress, []int64{2, 1, 3})
	require.NoError(t, err)

	assert.Equal(t, map[int64]int{2: 1, 1: 2, 3: 3}, ranks(plan))
	for _, c := range plan.Changes {
		if c.TaskID == 1 {
			require.NotNil(t, c.Status)
			assert.Equal(t, models.StatusInProgress, *c.Status)
		} else {
			assert.Nil(t, c.Status, "task %d keeps its status", c.TaskID)
		}
	}
	assert.Equal(t, []int64{2, 1, 3}, plan.TaskIDs())
}

func TestReorder_Idempotent(t *testing.T) {
	order := []int64{4, 8, 15, 16}
	first, err := Reorder(15, models.StatusReview, order)
	require.NoError(t, err)
	second, err := Reorder(15, models.StatusReview, order)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReorder_RanksAreGapFree(t *testing.T) {
	order := []int64{10, 3, 7, 1, 9, 2}
	plan, err := Reorder(7, models.StatusBlocked, order)
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, c := range plan.Changes {
		assert.False(t, seen[c.Rank], "duplicate rank %d", c.Rank)
		seen[c.Rank] = true
	}
	for r := 1; r <= len(order); r++ {
		assert.True(t, seen[r], "missing rank %d", r)
	}
}

func TestReorder_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		id    int64
		col   models.TaskStatus
		order []int64
		field string
	}{
		{"unknown column", 1, "done", []int64{1}, "newColumn"},
		{"empty order", 1, models.StatusNew, nil, "taskOrder"},
		{"moved task absent", 1, models.StatusNew, []int64{2, 3}, "taskId"},
		{"duplicates", 1, models.StatusNew, []int64{1, 2, 2}, "taskOrder"},
		{"non positive id", 1, models.StatusNew, []int64{1, 0}, "taskOrder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reorder(tt.id, tt.col, tt.order)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestOrderByClientRank(t *testing.T) {
	got := OrderByClientRank([]RankedID{{ID: 3, Rank: 2}, {ID: 1, Rank: 1}, {ID: 9, Rank: 2}, {ID: 4, Rank: 0}})
	assert.Equal(t, []int64{4, 1, 3, 9}, got)
}
