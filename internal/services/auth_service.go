package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/auth"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/redis"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	store     repository.Store
	tokens    redis.RedisClient
	jwtSecret []byte
	tokenTTL  time.Duration
	newID     func() uuid.UUID
	now       func() time.Time
}

func NewAuthService(store repository.Store, tokens redis.RedisClient, jwtSecret string, tokenTTL time.Duration) *authService {
	return &authService{
		store:     store,
		tokens:    tokens,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		newID:     uuid.New,
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, email, name, password string) (user *models.User, err error) {
	ctx, done := startSpan(ctx, "Register")
	defer done(&err)

	return s.create(ctx, email, name, password, models.RoleUser)
}

func (s *authService) create(ctx context.Context, email, name, password string, role models.Role) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || password == "" {
		return nil, fmt.Errorf("valid email and password are required: %w", pkgerrors.ErrInvalidInput)
	}
	if strings.TrimSpace(name) == "" {
		name = email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "method", "Register", "email", email, "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           s.newID(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		Balance:      decimal.Zero,
		Status:       models.UserStatusActive,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		slog.Error("failed to create user", "method", "Register", "email", email, "error", err)
		return nil, err
	}

	slog.Info("user registered", "method", "Register", "user_id", user.ID, "role", role)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (token string, err error) {
	ctx, done := startSpan(ctx, "Login")
	defer done(&err)

	user, err := s.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUserNotFound) {
			slog.Warn("login for unknown email", "method", "Login")
			return "", pkgerrors.ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("invalid password", "method", "Login", "user_id", user.ID)
		return "", pkgerrors.ErrInvalidCredentials
	}
	if user.Status == models.UserStatusBlocked {
		slog.Warn("blocked user tried to log in", "method", "Login", "user_id", user.ID)
		return "", pkgerrors.ErrUserBlocked
	}

	token, err = auth.GenerateJWT(s.jwtSecret, user.ID, user.Role, s.tokenTTL)
	if err != nil {
		slog.Error("failed to generate JWT", "method", "Login", "error", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.tokens.Set(ctx, auth.TokenKey(user.ID), token, s.tokenTTL); err != nil {
		slog.Error("failed to store JWT", "method", "Login", "user_id", user.ID, "error", err)
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	slog.Info("user logged in", "method", "Login", "user_id", user.ID)
	return token, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) (err error) {
	ctx, done := startSpan(ctx, "Logout")
	defer done(&err)

	if err := s.tokens.Del(ctx, auth.TokenKey(userID)); err != nil {
		slog.Error("failed to revoke token", "method", "Logout", "user_id", userID, "error", err)
		return err
	}
	return nil
}

// EnsureAdmin creates the administrator account on first start. An existing account with the
// same email is left untouched.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) (err error) {
	ctx, done := startSpan(ctx, "EnsureAdmin")
	defer done(&err)

	if email == "" || password == "" {
		return nil
	}
	_, err = s.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return nil
	}
	if !errors.Is(err, pkgerrors.ErrUserNotFound) {
		return err
	}
	_, err = s.create(ctx, email, "Administrator", password, models.RoleAdmin)
	if errors.Is(err, pkgerrors.ErrUserAlreadyExists) {
		return nil
	}
	return err
}
