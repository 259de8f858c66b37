package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/authflow/app/models"
	"github.com/shashiranjanraj/authflow/app/repositories"
	"github.com/shashiranjanraj/authflow/pkg/auth"
	"github.com/shashiranjanraj/authflow/pkg/event"
	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/metrics"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	// ErrPasswordTooLong is returned when the password exceeds bcrypt's
	// 72-byte input limit. The rune-based max tag cannot catch multi-byte
	// passwords.
	ErrPasswordTooLong = errors.New("password too long")
)

// RegisterInput is the body of POST /api/auth/signup.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"required,oneof=CUSTOMER ADMIN"`
}

// AccountService registers accounts and checks credentials.
type AccountService struct {
	users repositories.UserStore
	// hash is swapped in tests to keep bcrypt cost out of the loop.
	hash  func(string) (string, error)
	check func(hash, plain string) bool
}

func NewAccountService(users repositories.UserStore) *AccountService {
	return &AccountService{users: users, hash: auth.HashPassword, check: auth.CheckPassword}
}

// Register creates an account. The email is stored lower-cased.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	role, err := flow.ParseRole(in.Role)
	if err != nil || role == flow.RoleUnset {
		return models.User{}, ErrInvalidRole
	}
	email := normalizeEmail(in.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrAccountExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("services: lookup %s: %w", email, err)
	}

	hashed, err := s.hash(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return models.User{}, ErrPasswordTooLong
	}
	if err != nil {
		return models.User{}, fmt.Errorf("services: hash password: %w", err)
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hashed,
		Role:     string(role),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return models.User{}, ErrAccountExists
		}
		return models.User{}, fmt.Errorf("services: create user: %w", err)
	}

	metrics.AccountsCreated.WithLabelValues(user.Role).Inc()
	event.FireAsync(event.AccountCreated, user)
	return user, nil
}

// Authenticate returns the user whose credentials match. Unknown emails and
// wrong passwords are both ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("services: lookup: %w", err)
	}
	if !s.check(user.Password, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
