package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'ROLE_USER' CHECK (role IN ('ROLE_ADMIN','ROLE_RESPONSABLE',
			'ROLE_PROJECT_MANAGER','ROLE_LEAD_DEVELOPER','ROLE_DEVELOPER','ROLE_USER')),
		avatar TEXT,
		telegram_chat_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new','in_progress','completed','cancelled','on_hold')),
		manager_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		customer_id BIGINT REFERENCES customers(id) ON DELETE SET NULL,
		start_date TIMESTAMPTZ,
		target_date TIMESTAMPTZ,
		end_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new','in_progress','review','completed','blocked')),
		priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low','medium','high','urgent')),
		complexity TEXT NOT NULL DEFAULT 'moderate' CHECK (complexity IN ('simple','moderate','complex','very_complex')),
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		assignee_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		start_date TIMESTAMPTZ,
		end_date TIMESTAMPTZ,
		target_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		rank INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_column_idx ON tasks (project_id, status, rank)`,
	`CREATE TABLE IF NOT EXISTS task_comments (
		id BIGSERIAL PRIMARY KEY,
		content TEXT NOT NULL,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS task_attachments (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the schema. Statements are idempotent and run in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
