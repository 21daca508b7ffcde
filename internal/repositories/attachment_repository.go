package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"digi3/internal/models"
)

type AttachmentRepository interface {
	Create(ctx context.Context, a *models.TaskAttachment) error
	ListByTask(ctx context.Context, taskID int64) ([]*models.TaskAttachment, error)
}

type attachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, a *models.TaskAttachment) error {
	const q = `
		INSERT INTO task_attachments (filename, original_filename, description, user_id, task_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, q,
		a.Filename, a.OriginalFilename, a.Description, a.UserID, a.TaskID, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

func (r *attachmentRepository) ListByTask(ctx context.Context, taskID int64) ([]*models.TaskAttachment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filename, original_filename, description, user_id, task_id, created_at
		FROM task_attachments WHERE task_id = $1 ORDER BY created_at, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var out []*models.TaskAttachment
	for rows.Next() {
		var a models.TaskAttachment
		if err := rows.Scan(&a.ID, &a.Filename, &a.OriginalFilename, &a.Description, &a.UserID, &a.TaskID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
