package services

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"digi3/internal/authz"
	"digi3/internal/models"
	"digi3/internal/repositories"
)

// UserInput carries the editable fields of a user. Password is optional on update.
type UserInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" binding:"omitempty,role"`
	Avatar    string `json:"avatar"`
}

type UserService interface {
	Create(ctx context.Context, actor *models.User, in UserInput) (*models.User, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.User, error)
	Update(ctx context.Context, actor *models.User, id int64, in UserInput) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
	List(ctx context.Context, actor *models.User, limit, offset int) ([]*models.User, int, error)

	// CreateAdmin bootstraps an administrator without an acting user.
	CreateAdmin(ctx context.Context, email, password string) (*models.User, error)
	// ByID loads a user without permission checks; the auth middleware uses it.
	ByID(ctx context.Context, id int64) (*models.User, error)
}

type userService struct {
	repo   repositories.UserRepository
	emails EmailService
	auth   AuthService
	ev     *authz.Evaluator
	now    func() time.Time
}

func NewUserService(repo repositories.UserRepository, emails EmailService, auth AuthService, ev *authz.Evaluator) UserService {
	return &userService{repo: repo, emails: emails, auth: auth, ev: ev, now: time.Now}
}

func (s *userService) Create(ctx context.Context, actor *models.User, in UserInput) (*models.User, error) {
	if !s.ev.CanManageUsers(actor) {
		return nil, denied(authz.ManageUsers)
	}
	return s.create(ctx, in)
}

func (s *userService) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	return s.create(ctx, UserInput{Email: email, Password: password, Role: string(models.RoleAdmin)})
}

func (s *userService) create(ctx context.Context, in UserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, invalid("email", "email is required")
	}
	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         models.ParseRole(in.Role),
		Avatar:       in.Avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": u.ID, "role": u.Role}).Info("[user][create][ok]")

	if s.emails != nil {
		if err := s.emails.SendWelcomeEmail(u); err != nil {
			// warn but do not fail creation
			log.WithField("email", u.Email).Warnf("[user][create][warn] welcome email: %v", err)
		}
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	if actor == nil || (actor.ID != id && !s.ev.CanManageUsers(actor)) {
		return nil, denied(authz.ManageUsers)
	}
	return s.ByID(ctx, id)
}

func (s *userService) ByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, actor *models.User, id int64, in UserInput) (*models.User, error) {
	if !s.ev.CanManageUsers(actor) {
		return nil, denied(authz.ManageUsers)
	}
	u, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, invalid("email", "email is required")
	}
	if in.Password != "" {
		if u.PasswordHash, err = s.auth.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	u.Email = email
	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	if in.Role != "" {
		u.Role = models.ParseRole(in.Role)
	}
	u.Avatar = in.Avatar
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if !s.ev.CanManageUsers(actor) {
		return denied(authz.ManageUsers)
	}
	if actor.ID == id {
		return invalid("id", "cannot delete yourself")
	}
	if _, err := s.ByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *userService) List(ctx context.Context, actor *models.User, limit, offset int) ([]*models.User, int, error) {
	if !s.ev.CanManageUsers(actor) {
		return nil, 0, denied(authz.ManageUsers)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
