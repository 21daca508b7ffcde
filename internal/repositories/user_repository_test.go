package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digi3/internal/models"
)

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err = repo.Create(context.Background(), &models.User{Email: "a@b.c", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserGetByEmail_UnknownRoleFallsBackToUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE LOWER(email) = LOWER($1)`)).
		WithArgs("dev@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "first_name", "last_name",
			"role", "avatar", "telegram_chat_id", "created_at", "updated_at"}).
			AddRow(3, "dev@example.com", "$2a$10$x", "Dev", "One", "ROLE_INTERN", nil, 42, now, now))

	u, err := repo.GetByEmail(context.Background(), "dev@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, models.RoleUser, u.Role)
	require.NotNil(t, u.TelegramChatID)
	assert.Equal(t, int64(42), *u.TelegramChatID)
	assert.Equal(t, "", u.Avatar)
}
