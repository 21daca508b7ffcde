package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digi3/internal/models"
)

func newMock(t *testing.T) (*taskRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &taskRepository{db: db}, mock
}

func inProgress() *models.TaskStatus {
	s := models.StatusInProgress
	return &s
}

// T1 dragged from "new" into "in_progress" between T2 and T3.
func dragPlan() models.ReorderPlan {
	return models.ReorderPlan{
		MovedTaskID: 1,
		Destination: models.StatusInProgress,
		Changes: []models.RankChange{
			{TaskID: 2, Rank: 1},
			{TaskID: 1, Rank: 2, Status: inProgress()},
			{TaskID: 3, Rank: 3},
		},
	}
}

func expectLoad(mock sqlmock.Sqlmock, projectID int64) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM projects WHERE id = $1 FOR UPDATE`)).
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(projectID))
}

func TestApplyReorder_CommitsWholePlan(t *testing.T) {
	repo, mock := newMock(t)
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	expectLoad(mock, 7)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, project_id, status FROM tasks WHERE id = ANY($1)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "status"}).
			AddRow(2, 7, "in_progress").
			AddRow(1, 7, "new").
			AddRow(3, 7, "in_progress"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM tasks WHERE project_id = $1 AND status = $2`)).
		WithArgs(7, "in_progress", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET rank=$1 WHERE id=$2`)).
		WithArgs(1, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET rank=$1, status=$2, updated_at=$3, updated_by=$4 WHERE id=$5`)).
		WithArgs(2, "in_progress", at, 5, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET rank=$1 WHERE id=$2`)).
		WithArgs(3, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks t SET rank = s.rn`)).
		WithArgs(7, "new").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyReorder(context.Background(), 7, dragPlan(), 5, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyReorder_RejectsIncompleteColumn(t *testing.T) {
	repo, mock := newMock(t)

	expectLoad(mock, 7)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, project_id, status FROM tasks`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "status"}).
			AddRow(2, 7, "in_progress").
			AddRow(1, 7, "new").
			AddRow(3, 7, "in_progress"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM tasks`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.ApplyReorder(context.Background(), 7, dragPlan(), 5, time.Now())
	assert.ErrorIs(t, err, ErrIncompleteColumn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyReorder_RejectsForeignTasks(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
	}{
		{"other project", sqlmock.NewRows([]string{"id", "project_id", "status"}).
			AddRow(2, 8, "in_progress").AddRow(1, 7, "new").AddRow(3, 7, "in_progress")},
		{"other column", sqlmock.NewRows([]string{"id", "project_id", "status"}).
			AddRow(2, 7, "review").AddRow(1, 7, "new").AddRow(3, 7, "in_progress")},
		{"unknown task", sqlmock.NewRows([]string{"id", "project_id", "status"}).
			AddRow(1, 7, "new").AddRow(3, 7, "in_progress")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t)
			expectLoad(mock, 7)
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, project_id, status FROM tasks`)).WillReturnRows(tt.rows)
			mock.ExpectRollback()

			err := repo.ApplyReorder(context.Background(), 7, dragPlan(), 5, time.Now())
			assert.ErrorIs(t, err, ErrForeignTask)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestApplyReorder_MissingProject(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.ApplyReorder(context.Background(), 99, dragPlan(), 5, time.Now())
	assert.ErrorIs(t, err, ErrProjectMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_MovesToEndOfColumn(t *testing.T) {
	repo, mock := newMock(t)
	at := time.Now()
	actor := int64(5)
	task := &models.Task{ID: 1, ProjectID: 7, Status: models.StatusReview, UpdatedAt: at, UpdatedByID: &actor}

	expectLoad(mock, 7)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM tasks WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("new"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET updated_at=$1, updated_by=$2 WHERE id=$3`)).
		WithArgs(at, actor, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE tasks SET status=$1`)).
		WithArgs("review", int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"rank"}).AddRow(4))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks t SET rank = s.rn`)).
		WithArgs(int64(7), "new").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateStatus(context.Background(), task))
	assert.Equal(t, 4, task.Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_FieldsAndColumnInOneTransaction(t *testing.T) {
	repo, mock := newMock(t)
	at := time.Now()
	actor, assignee := int64(3), int64(4)
	task := &models.Task{
		ID: 4, ProjectID: 7, Name: "D renamed", Status: models.StatusReview, Priority: models.PriorityHigh,
		Complexity: models.ComplexitySimple, AssigneeID: &assignee, UpdatedAt: at, UpdatedByID: &actor,
	}

	expectLoad(mock, 7)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM tasks WHERE id = $1`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("in_progress"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET`)).
		WithArgs("D renamed", "", "high", "simple", assignee, nil, nil, nil, at, actor, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE tasks SET status=$1`)).
		WithArgs("review", int64(7), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"rank"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks t SET rank = s.rn`)).
		WithArgs(int64(7), "in_progress").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), task))
	assert.Equal(t, 2, task.Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_ColumnFailureRollsBackFields(t *testing.T) {
	repo, mock := newMock(t)
	task := &models.Task{ID: 4, ProjectID: 7, Name: "D renamed", Status: models.StatusReview}

	expectLoad(mock, 7)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM tasks WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("in_progress"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE tasks SET status=$1`)).WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	assert.Error(t, repo.Update(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LocksProjectBeforeRanking(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	task := &models.Task{
		Name: "E", Status: models.StatusNew, Priority: models.PriorityMedium, Complexity: models.ComplexityModerate,
		ProjectID: 7, CreatedAt: now, UpdatedAt: now,
	}

	expectLoad(mock, 7)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tasks`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "rank"}).AddRow(12, 4))
	mock.ExpectCommit()

	require.NoError(t, repo.Store(context.Background(), task))
	assert.Equal(t, int64(12), task.ID)
	assert.Equal(t, 4, task.Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_MissingProject(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Store(context.Background(), &models.Task{Name: "E", Status: models.StatusNew, ProjectID: 99})
	assert.ErrorIs(t, err, ErrProjectMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_LocksProjectThenCompacts(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT project_id FROM tasks WHERE id = $1`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM projects WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM tasks WHERE id = $1 RETURNING status`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("new"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks t SET rank = s.rn`)).
		WithArgs(int64(7), "new").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_UnknownTask(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT project_id FROM tasks WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 404))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM tasks WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	task, err := repo.FindByID(context.Background(), 3)
	assert.NoError(t, err)
	assert.Nil(t, task)
}

func TestFindAll_BuildsFilter(t *testing.T) {
	repo, mock := newMock(t)
	pid := int64(7)
	st := models.StatusBlocked

	cols := []string{"id", "name", "description", "status", "priority", "complexity", "project_id", "assignee_id",
		"start_date", "end_date", "target_date", "created_at", "updated_at", "updated_by", "rank"}
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE project_id = $1 AND status = $2 ORDER BY project_id, status, rank, id`)).
		WithArgs(pid, "blocked").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(4, "Fix login", "", "blocked", "high", "simple", 7, nil, nil, nil, nil, now, now, nil, 1))

	tasks, err := repo.FindAll(context.Background(), models.TaskFilter{ProjectID: &pid, Status: &st})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Fix login", tasks[0].Name)
	assert.Nil(t, tasks[0].AssigneeID)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
}
