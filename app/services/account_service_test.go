package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/authflow/app/models"
	"github.com/shashiranjanraj/authflow/app/repositories"
	"github.com/shashiranjanraj/authflow/pkg/event"
)

func newTestService() (*AccountService, *repositories.MemoryUserRepository) {
	repo := repositories.NewMemoryUserRepository()
	svc := NewAccountService(repo)
	svc.hash = func(p string) (string, error) { return "hashed:" + p, nil }
	svc.check = func(h, p string) bool { return h == "hashed:"+p }
	return svc, repo
}

func TestRegister(t *testing.T) {
	t.Cleanup(event.Flush)
	var fired []models.User
	event.Listen(event.AccountCreated, func(p interface{}) { fired = append(fired, p.(models.User)) })

	svc, repo := newTestService()
	u, err := svc.Register(context.Background(), RegisterInput{
		Name: " Ada ", Email: " Ada@Example.com", Password: "pw", Role: "ADMIN",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "ADMIN", u.Role)
	assert.Equal(t, "hashed:pw", u.Password)
	assert.Equal(t, 1, repo.Len())
	event.Wait()
	require.Len(t, fired, 1)
	assert.Equal(t, u.ID, fired[0].ID)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	in := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw", Role: "CUSTOMER"}

	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	in.Email = "ADA@example.com"
	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, _ := newTestService()
	for _, role := range []string{"", "ROOT", "admin"} {
		_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: "p", Role: role})
		assert.ErrorIs(t, err, ErrInvalidRole, role)
	}
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	svc := NewAccountService(repo)

	// 40 runes, 80 bytes: passes a rune-counted max=72 but not bcrypt.
	pw := strings.Repeat("é", 40)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: pw, Role: "ADMIN"})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Equal(t, 0, repo.Len())
}

func TestRegister_StoreFailure(t *testing.T) {
	svc := NewAccountService(failingStore{})
	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: "p", Role: "ADMIN"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccountExists)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw", Role: "ADMIN"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "ADA@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)

	_, err = svc.Authenticate(ctx, "ada@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "ghost@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type failingStore struct{}

func (failingStore) FindByEmail(context.Context, string) (models.User, error) {
	return models.User{}, errors.New("db down")
}

func (failingStore) Create(context.Context, *models.User) error { return errors.New("db down") }
