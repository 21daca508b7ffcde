package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"digi3/internal/models"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*models.Customer, error)
	FindByName(ctx context.Context, name string) ([]*models.Customer, error)
}

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, name, email, phone, address, created_at, updated_at`

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Create(ctx context.Context, c *models.Customer) error {
	const q = `
		INSERT INTO customers (name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, q, c.Name, c.Email, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *customerRepository) Update(ctx context.Context, c *models.Customer) error {
	const q = `
		UPDATE customers
		SET name=$1, email=$2, phone=$3, address=$4, updated_at=$5
		WHERE id=$6`
	if _, err := r.db.ExecContext(ctx, q, c.Name, c.Email, c.Phone, c.Address, c.UpdatedAt, c.ID); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *customerRepository) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return collectCustomers(rows)
}

func (r *customerRepository) FindByName(ctx context.Context, name string) ([]*models.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE LOWER(name) LIKE $1 ORDER BY created_at DESC`,
		"%"+strings.ToLower(name)+"%")
	if err != nil {
		return nil, fmt.Errorf("find customers by name: %w", err)
	}
	return collectCustomers(rows)
}

func collectCustomers(rows *sql.Rows) ([]*models.Customer, error) {
	defer rows.Close()
	var res []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
