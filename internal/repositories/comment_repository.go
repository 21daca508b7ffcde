package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"digi3/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, c *models.TaskComment) error
	ListByTask(ctx context.Context, taskID int64) ([]*models.TaskComment, error)
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *models.TaskComment) error {
	const q = `
		INSERT INTO task_comments (content, user_id, task_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, q, c.Content, c.UserID, c.TaskID, c.CreatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID int64) ([]*models.TaskComment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content, user_id, task_id, created_at
		FROM task_comments WHERE task_id = $1 ORDER BY created_at, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*models.TaskComment
	for rows.Next() {
		var c models.TaskComment
		if err := rows.Scan(&c.ID, &c.Content, &c.UserID, &c.TaskID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
