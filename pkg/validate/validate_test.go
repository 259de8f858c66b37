package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/authflow/pkg/validate"
)

type signupInput struct {
	Name     string `json:"name"     validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"required,oneof=CUSTOMER ADMIN"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(signupInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret123",
		Role:     "ADMIN",
	})
	assert.False(t, validate.HasErrors(errs), "got: %v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(signupInput{})
	assert.True(t, validate.HasErrors(errs))
	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Equal(t, "The email field is required.", errs["email"])
	assert.Equal(t, "The role field is required.", errs["role"])
}

func TestRuleMessages(t *testing.T) {
	errs := validate.Struct(signupInput{
		Name:     "Ada",
		Email:    "not-an-email",
		Password: "short",
		Role:     "ROOT",
	})
	assert.Equal(t, "The email must be a valid email address.", errs["email"])
	assert.Equal(t, "The password must be at least 8 characters.", errs["password"])
	assert.Equal(t, "The selected role is invalid.", errs["role"])
	assert.NotContains(t, errs, "name")
}

func TestPointerInput(t *testing.T) {
	errs := validate.Struct(&signupInput{Name: "Ada", Email: "a@b.co", Password: "12345678", Role: "CUSTOMER"})
	assert.Empty(t, errs)
}

func TestFirstIsStable(t *testing.T) {
	errs := map[string]string{"role": "r", "email": "e", "name": "n"}
	assert.Equal(t, "e", validate.First(errs))
	assert.Equal(t, "", validate.First(nil))
}
