package flow

import "fmt"

// Role is the account role chosen on the sign-up form.
type Role string

const (
	RoleUnset    Role = ""
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// Roles lists the selectable roles in display order.
var Roles = []Role{RoleCustomer, RoleAdmin}

// Valid reports whether r is one of the selectable roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// ParseRole maps a submitted value onto a Role. The empty string is RoleUnset.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r == RoleUnset || r.Valid() {
		return r, nil
	}
	return RoleUnset, fmt.Errorf("flow: unknown role %q", s)
}

// SignInForm holds the sign-in fields.
type SignInForm struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpForm holds the sign-up fields. Its JSON form is the account-creation
// request payload.
type SignUpForm struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role"     validate:"required,oneof=CUSTOMER ADMIN"`
}

// credentials is the snapshot used by the chained sign-in after sign-up.
func (f SignUpForm) credentials() (email, password string) {
	return f.Email, f.Password
}
