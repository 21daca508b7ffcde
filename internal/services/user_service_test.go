package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"digi3/internal/authz"
	"digi3/internal/models"
)

func newUserFixture() (*memUsers, *recordingMailer, *authService, UserService) {
	users := newMemUsers(
		&models.User{ID: 1, Email: "admin@digi3.test", Role: models.RoleAdmin},
		&models.User{ID: 2, Email: "dev@digi3.test", Role: models.RoleDeveloper},
	)
	mailer := &recordingMailer{}
	auth := NewAuthService(users, "test-secret", time.Hour).(*authService)
	return users, mailer, auth, NewUserService(users, mailer, auth, authz.NewEvaluator())
}

func TestUserCreate(t *testing.T) {
	ctx := context.Background()
	users, mailer, _, svc := newUserFixture()
	admin := users.items[1]

	u, err := svc.Create(ctx, admin, UserInput{Email: " Lea@Digi3.test ", Password: "s3cret", FirstName: "Léa", Role: "project_manager"})
	require.NoError(t, err)
	assert.Equal(t, "lea@digi3.test", u.Email)
	assert.Equal(t, models.RoleProjectManager, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
	assert.Equal(t, []string{"lea@digi3.test"}, mailer.sent)

	_, err = svc.Create(ctx, admin, UserInput{Email: "LEA@digi3.test", Password: "x"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Create(ctx, users.items[2], UserInput{Email: "x@digi3.test", Password: "x"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Create(ctx, admin, UserInput{Email: "y@digi3.test"})
	assert.True(t, IsValidation(err))
}

func TestUserCreateIgnoresMailFailure(t *testing.T) {
	users, mailer, _, svc := newUserFixture()
	mailer.err = errors.New("smtp down")

	u, err := svc.Create(context.Background(), users.items[1], UserInput{Email: "z@digi3.test", Password: "pw"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
}

func TestUserAdminOperations(t *testing.T) {
	ctx := context.Background()
	users, _, _, svc := newUserFixture()
	admin, dev := users.items[1], users.items[2]

	me, err := svc.Get(ctx, dev, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, dev.Email, me.Email)
	_, err = svc.Get(ctx, dev, admin.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	u, err := svc.Update(ctx, admin, dev.ID, UserInput{Email: "dev@digi3.test", Role: "ROLE_LEAD_DEVELOPER"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleLeadDeveloper, u.Role)

	_, err = svc.Update(ctx, admin, dev.ID, UserInput{Email: "admin@digi3.test"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	list, total, err := svc.List(ctx, admin, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, total)

	assert.True(t, IsValidation(svc.Delete(ctx, admin, admin.ID)))
	require.NoError(t, svc.Delete(ctx, admin, dev.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin, dev.ID), ErrNotFound)
}

func TestCreateAdmin(t *testing.T) {
	_, _, auth, svc := newUserFixture()
	u, err := svc.CreateAdmin(context.Background(), "root@digi3.test", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	got, err := auth.Authenticate(context.Background(), "ROOT@digi3.test", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	users, _, auth, _ := newUserFixture()
	hash, err := auth.HashPassword("right")
	require.NoError(t, err)
	users.items[2].PasswordHash = hash

	u, err := auth.Authenticate(ctx, "dev@digi3.test", "right")
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)

	_, err = auth.Authenticate(ctx, "dev@digi3.test", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = auth.Authenticate(ctx, "nobody@digi3.test", "right")
	assert.ErrorIs(t, err, ErrBadCredentials)
	// no hash stored
	_, err = auth.Authenticate(ctx, "admin@digi3.test", "")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestTokens(t *testing.T) {
	_, _, auth, _ := newUserFixture()
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return issued }

	user := &models.User{ID: 7, Role: models.RoleDeveloper}
	token, exp, err := auth.IssueToken(user)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), exp)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, string(models.RoleDeveloper), claims.Role)

	// within leeway
	auth.now = func() time.Time { return exp.Add(time.Minute) }
	_, err = auth.ParseToken(token)
	assert.NoError(t, err)

	auth.now = func() time.Time { return exp.Add(Leeway + time.Minute) }
	_, err = auth.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	auth.now = func() time.Time { return issued }
	other := NewAuthService(nil, "other-secret", time.Hour).(*authService)
	other.now = auth.now
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCSRF(t *testing.T) {
	_, _, auth, _ := newUserFixture()
	tok, err := auth.NewCSRFToken()
	require.NoError(t, err)
	assert.Len(t, tok, 64)

	assert.NoError(t, auth.VerifyCSRF(tok, tok))
	assert.ErrorIs(t, auth.VerifyCSRF(tok, tok+"0"), ErrInvalidCSRF)
	assert.ErrorIs(t, auth.VerifyCSRF("", ""), ErrInvalidCSRF)
}
