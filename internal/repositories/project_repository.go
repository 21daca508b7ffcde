package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"digi3/internal/models"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Project, error)

	// AttachmentFiles lists stored filenames of every attachment under the project.
	AttachmentFiles(ctx context.Context, projectID int64) ([]string, error)
	CountByStatus(ctx context.Context) (map[models.ProjectStatus]int, error)
}

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, name, description, status, manager_id, customer_id,
	start_date, target_date, end_date, created_at, updated_at`

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var (
		managerID, customerID sql.NullInt64
		start, target, end    sql.NullTime
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &managerID, &customerID,
		&start, &target, &end, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.ManagerID = nullInt64(managerID)
	p.CustomerID = nullInt64(customerID)
	p.StartDate = nullTime(start)
	p.TargetDate = nullTime(target)
	p.EndDate = nullTime(end)
	return p, nil
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	const q = `
		INSERT INTO projects (name, description, status, manager_id, customer_id,
			start_date, target_date, end_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, q,
		p.Name, p.Description, p.Status, p.ManagerID, p.CustomerID,
		p.StartDate, p.TargetDate, p.EndDate, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *projectRepository) Update(ctx context.Context, p *models.Project) error {
	const q = `
		UPDATE projects SET
			name=$1, description=$2, status=$3, manager_id=$4, customer_id=$5,
			start_date=$6, target_date=$7, end_date=$8, updated_at=$9
		WHERE id=$10`
	_, err := r.db.ExecContext(ctx, q,
		p.Name, p.Description, p.Status, p.ManagerID, p.CustomerID,
		p.StartDate, p.TargetDate, p.EndDate, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// Delete removes the project; tasks, comments and attachments go with it
// through ON DELETE CASCADE.
func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (r *projectRepository) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var res []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *projectRepository) AttachmentFiles(ctx context.Context, projectID int64) ([]string, error) {
	const q = `
		SELECT a.filename
		FROM task_attachments a
		JOIN tasks t ON t.id = a.task_id
		WHERE t.project_id = $1`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project attachments: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *projectRepository) CountByStatus(ctx context.Context) (map[models.ProjectStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	defer rows.Close()

	out := make(map[models.ProjectStatus]int)
	for rows.Next() {
		var (
			s models.ProjectStatus
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}
