package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"digi3/internal/models"
	"digi3/internal/repositories"
	"digi3/internal/utils"
)

// Leeway tolerated on token expiry.
const Leeway = 2 * time.Minute

type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	HashPassword(plain string) (string, error)
	// Authenticate returns ErrBadCredentials for unknown emails and wrong passwords alike.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	IssueToken(u *models.User) (string, time.Time, error)
	ParseToken(token string) (*Claims, error)
	NewCSRFToken() (string, error)
	VerifyCSRF(expected, got string) error
}

type authService struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users repositories.UserRepository, secret string, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &authService{users: users, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *authService) HashPassword(plain string) (string, error) {
	if strings.TrimSpace(plain) == "" {
		return "", invalid("password", "password is required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		log.WithField("email", email).Info("[auth][login][fail] unknown email")
		return nil, ErrBadCredentials
	}
	ph := strings.TrimSpace(user.PasswordHash)
	if ph == "" {
		log.WithField("user_id", user.ID).Warn("[auth][login][fail] empty password hash")
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ph), []byte(password)); err != nil {
		log.WithField("user_id", user.ID).Info("[auth][login][fail] password mismatch")
		return nil, ErrBadCredentials
	}
	log.WithFields(log.Fields{"user_id": user.ID, "role": user.Role}).Info("[auth][login][ok]")
	return user, nil
}

func (s *authService) IssueToken(u *models.User) (string, time.Time, error) {
	exp := s.now().Add(s.ttl)
	claims := &Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

var ErrInvalidToken = errors.New("invalid or expired token")

func (s *authService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// HMAC only
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithLeeway(Leeway), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) NewCSRFToken() (string, error) {
	return utils.NewRandomToken(32)
}

func (s *authService) VerifyCSRF(expected, got string) error {
	if !utils.TokensEqual(expected, got) {
		return ErrInvalidCSRF
	}
	return nil
}
