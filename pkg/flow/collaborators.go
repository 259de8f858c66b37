package flow

import (
	"context"
	"encoding/json"
	"net/http"
)

// ProviderCredentials is the provider id of the email/password sign-in.
const ProviderCredentials = "credentials"

// SignInOptions are the arguments of a session-authentication call.
// Flows always pass Redirect false so they keep control of navigation.
type SignInOptions struct {
	Redirect bool
	Email    string
	Password string
}

// AuthResult is the outcome of a session-authentication call. A non-empty
// Error signals failure; its absence signals success.
type AuthResult struct {
	Error string
	// URL is where the identity framework would have redirected.
	URL string
	// Cookies carry the established session, when the transport has one.
	Cookies []*http.Cookie
}

// OK reports whether the authentication succeeded.
func (r AuthResult) OK() bool { return r.Error == "" }

// Authenticator is the session-authentication collaborator. A returned error
// is a transport failure, not a credentials rejection.
type Authenticator interface {
	Authenticate(ctx context.Context, provider string, opts SignInOptions) (AuthResult, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, provider string, opts SignInOptions) (AuthResult, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, provider string, opts SignInOptions) (AuthResult, error) {
	return f(ctx, provider, opts)
}

// AccountResponse is the parsed reply of the account creation endpoint.
type AccountResponse struct {
	StatusCode int
	// Error is the body's "error" field, set on non-2xx replies.
	Error string
	Body  json.RawMessage
}

// OK reports whether the status code is 2xx.
func (r *AccountResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// AccountCreator is the account-creation collaborator. A returned error is a
// transport failure (including an unparseable body); HTTP error statuses are
// reported through AccountResponse.
type AccountCreator interface {
	CreateAccount(ctx context.Context, form SignUpForm) (*AccountResponse, error)
}

// Navigator performs client-side route changes.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }
