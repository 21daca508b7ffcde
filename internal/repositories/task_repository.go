package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"digi3/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	// Update writes the editable fields and the status in one transaction.
	// A task that changes column is handled as in UpdateStatus.
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error

	// UpdateStatus persists Status/UpdatedBy/UpdatedAt. A task that changes
	// column is appended to the end of its new column and its old column is
	// renumbered.
	UpdateStatus(ctx context.Context, task *models.Task) error
	// ApplyReorder writes a reorder plan atomically, serialized per project.
	ApplyReorder(ctx context.Context, projectID int64, plan models.ReorderPlan, actorID int64, at time.Time) error
	CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, name, description, status, priority, complexity, project_id, assignee_id,
	start_date, end_date, target_date, created_at, updated_at, updated_by, rank`

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var (
		assignee, updatedBy sql.NullInt64
		start, end, target  sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Status, &t.Priority, &t.Complexity, &t.ProjectID, &assignee,
		&start, &end, &target, &t.CreatedAt, &t.UpdatedAt, &updatedBy, &t.Rank,
	); err != nil {
		return nil, err
	}
	t.AssigneeID = nullInt64(assignee)
	t.UpdatedByID = nullInt64(updatedBy)
	t.StartDate = nullTime(start)
	t.EndDate = nullTime(end)
	t.TargetDate = nullTime(target)
	return t, nil
}

// Store inserts the task at the bottom of its column.
func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockProject(ctx, tx, task.ProjectID); err != nil {
			return err
		}
		return storeTask(ctx, tx, task)
	})
}

func storeTask(ctx context.Context, tx *sql.Tx, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			name, description, status, priority, complexity, project_id, assignee_id,
			start_date, end_date, target_date, created_at, updated_at, updated_by, rank
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,
			(SELECT COALESCE(MAX(rank), 0) + 1 FROM tasks WHERE project_id = $6 AND status = $3))
		RETURNING id, rank`
	err := tx.QueryRowContext(ctx, query,
		task.Name, task.Description, task.Status, task.Priority, task.Complexity, task.ProjectID, task.AssigneeID,
		task.StartDate, task.EndDate, task.TargetDate, task.CreatedAt, task.UpdatedAt, task.UpdatedByID,
	).Scan(&task.ID, &task.Rank)
	if err != nil {
		return fmt.Errorf("store task: %w", err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.ProjectID != nil {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argID))
		args = append(args, *filter.ProjectID)
		argID++
	}
	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY project_id, status, rank, id"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockProject(ctx, tx, task.ProjectID); err != nil {
			return err
		}
		prev, err := currentStatus(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		query := `
			UPDATE tasks SET
				name=$1, description=$2, priority=$3, complexity=$4, assignee_id=$5,
				start_date=$6, end_date=$7, target_date=$8, updated_at=$9, updated_by=$10
			WHERE id=$11`
		_, err = tx.ExecContext(ctx, query,
			task.Name, task.Description, task.Priority, task.Complexity, task.AssigneeID,
			task.StartDate, task.EndDate, task.TargetDate, task.UpdatedAt, task.UpdatedByID, task.ID,
		)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return changeColumn(ctx, tx, task, prev)
	})
}

// Delete removes the task and renumbers its column under the project lock.
func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var projectID int64
		err := tx.QueryRowContext(ctx, `SELECT project_id FROM tasks WHERE id = $1`, id).Scan(&projectID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read task project: %w", err)
		}
		if err := lockProject(ctx, tx, projectID); err != nil {
			return err
		}

		var status models.TaskStatus
		err = tx.QueryRowContext(ctx,
			`DELETE FROM tasks WHERE id = $1 RETURNING status`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return compactColumn(ctx, tx, projectID, status)
	})
}

func (r *taskRepository) UpdateStatus(ctx context.Context, task *models.Task) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockProject(ctx, tx, task.ProjectID); err != nil {
			return err
		}
		prev, err := currentStatus(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET updated_at=$1, updated_by=$2 WHERE id=$3`,
			task.UpdatedAt, task.UpdatedByID, task.ID); err != nil {
			return fmt.Errorf("update task status: %w", err)
		}
		return changeColumn(ctx, tx, task, prev)
	})
}

func currentStatus(ctx context.Context, tx *sql.Tx, id int64) (models.TaskStatus, error) {
	var st models.TaskStatus
	if err := tx.QueryRowContext(ctx, `SELECT status FROM tasks WHERE id = $1`, id).Scan(&st); err != nil {
		return "", fmt.Errorf("read task status: %w", err)
	}
	return st, nil
}

// changeColumn moves the task from prev to task.Status: last rank in the new
// column, old column renumbered. Caller holds the project lock.
func changeColumn(ctx context.Context, tx *sql.Tx, task *models.Task, prev models.TaskStatus) error {
	if task.Status == "" || task.Status == prev {
		task.Status = prev
		return nil
	}
	err := tx.QueryRowContext(ctx, `
		UPDATE tasks SET status=$1,
			rank=(SELECT COALESCE(MAX(rank), 0) + 1 FROM tasks WHERE project_id=$2 AND status=$1)
		WHERE id=$3
		RETURNING rank`,
		task.Status, task.ProjectID, task.ID,
	).Scan(&task.Rank)
	if err != nil {
		return fmt.Errorf("change task column: %w", err)
	}
	return compactColumn(ctx, tx, task.ProjectID, prev)
}

func (r *taskRepository) ApplyReorder(ctx context.Context, projectID int64, plan models.ReorderPlan, actorID int64, at time.Time) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockProject(ctx, tx, projectID); err != nil {
			return err
		}

		ids := plan.TaskIDs()
		rows, err := tx.QueryContext(ctx,
			`SELECT id, project_id, status FROM tasks WHERE id = ANY($1)`, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("load reorder tasks: %w", err)
		}
		var (
			found      int
			sourceCol  models.TaskStatus
			foreignErr error
		)
		for rows.Next() {
			var (
				id, pid int64
				status  models.TaskStatus
			)
			if err := rows.Scan(&id, &pid, &status); err != nil {
				rows.Close()
				return err
			}
			found++
			if pid != projectID {
				foreignErr = fmt.Errorf("task %d: %w", id, ErrForeignTask)
			}
			if id == plan.MovedTaskID {
				sourceCol = status
			} else if status != plan.Destination {
				foreignErr = fmt.Errorf("task %d: %w", id, ErrForeignTask)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if foreignErr != nil {
			return foreignErr
		}
		if found != len(ids) {
			return fmt.Errorf("%d of %d tasks found: %w", found, len(ids), ErrForeignTask)
		}

		var missing int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tasks WHERE project_id = $1 AND status = $2 AND NOT (id = ANY($3))`,
			projectID, plan.Destination, pq.Array(ids),
		).Scan(&missing); err != nil {
			return fmt.Errorf("check destination column: %w", err)
		}
		if missing > 0 {
			return fmt.Errorf("%d tasks left out: %w", missing, ErrIncompleteColumn)
		}

		for _, c := range plan.Changes {
			if c.Status != nil {
				_, err = tx.ExecContext(ctx,
					`UPDATE tasks SET rank=$1, status=$2, updated_at=$3, updated_by=$4 WHERE id=$5`,
					c.Rank, *c.Status, at, actorID, c.TaskID)
			} else {
				_, err = tx.ExecContext(ctx, `UPDATE tasks SET rank=$1 WHERE id=$2`, c.Rank, c.TaskID)
			}
			if err != nil {
				return fmt.Errorf("update rank of task %d: %w", c.TaskID, err)
			}
		}

		if sourceCol != plan.Destination {
			return compactColumn(ctx, tx, projectID, sourceCol)
		}
		return nil
	})
}

func (r *taskRepository) CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	defer rows.Close()

	out := make(map[models.TaskStatus]int)
	for rows.Next() {
		var (
			s models.TaskStatus
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

func (r *taskRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// lockProject takes the project row lock that serializes every column
// mutation of the project.
func lockProject(ctx context.Context, tx *sql.Tx, projectID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProjectMissing
	}
	if err != nil {
		return fmt.Errorf("lock project %d: %w", projectID, err)
	}
	return nil
}

// compactColumn renumbers a column to 1..N keeping the current order.
func compactColumn(ctx context.Context, tx *sql.Tx, projectID int64, status models.TaskStatus) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tasks t SET rank = s.rn
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY rank, id) AS rn
			FROM tasks WHERE project_id = $1 AND status = $2
		) s
		WHERE t.id = s.id AND t.rank <> s.rn`, projectID, status)
	if err != nil {
		return fmt.Errorf("compact column %s: %w", status, err)
	}
	return nil
}
