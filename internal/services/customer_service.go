package services

import (
	"context"
	"strings"
	"time"

	"digi3/internal/authz"
	"digi3/internal/models"
	"digi3/internal/repositories"
)

type CustomerService struct {
	Repo repositories.CustomerRepository
	ev   *authz.Evaluator
}

func NewCustomerService(repo repositories.CustomerRepository, ev *authz.Evaluator) *CustomerService {
	return &CustomerService{Repo: repo, ev: ev}
}

func (s *CustomerService) Create(ctx context.Context, actor *models.User, c *models.Customer) error {
	if !s.ev.CanEditCustomer(actor) {
		return denied(authz.EditCustomer)
	}
	if err := normalizeCustomer(c); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = c.CreatedAt
	return s.Repo.Create(ctx, c)
}

func (s *CustomerService) Update(ctx context.Context, actor *models.User, c *models.Customer) error {
	if !s.ev.CanEditCustomer(actor) {
		return denied(authz.EditCustomer)
	}
	existing, err := s.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := normalizeCustomer(c); err != nil {
		return err
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	return s.Repo.Update(ctx, c)
}

func (s *CustomerService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if !s.ev.CanEditCustomer(actor) {
		return denied(authz.EditCustomer)
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func (s *CustomerService) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns a page of customers, or those matching q by name when q is set.
func (s *CustomerService) List(ctx context.Context, q string, limit, offset int) ([]*models.Customer, error) {
	if q = strings.TrimSpace(q); q != "" {
		return s.Repo.FindByName(ctx, q)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, limit, offset)
}

func normalizeCustomer(c *models.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" {
		return invalid("name", "name is required")
	}
	return nil
}
