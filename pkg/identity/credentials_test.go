package identity_test

import (
	"context"
	"encoding/json"
	gohttp "net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/identity"
)

// fakeAuthServer is a minimal next-auth credentials endpoint set.
type fakeAuthServer struct {
	mu        sync.Mutex
	password  string
	lastForm  url.Values
	returnRaw string
}

func (s *fakeAuthServer) handler() gohttp.Handler {
	mux := gohttp.NewServeMux()
	mux.HandleFunc("/api/auth/csrf", func(w gohttp.ResponseWriter, r *gohttp.Request) {
		gohttp.SetCookie(w, &gohttp.Cookie{Name: "csrf", Value: "tok", Path: "/"})
		_ = json.NewEncoder(w).Encode(map[string]string{"csrfToken": "tok"})
	})
	mux.HandleFunc("/api/auth/callback/credentials", func(w gohttp.ResponseWriter, r *gohttp.Request) {
		_ = r.ParseForm()
		s.mu.Lock()
		s.lastForm = r.PostForm
		raw := s.returnRaw
		s.mu.Unlock()

		if raw != "" {
			_, _ = w.Write([]byte(raw))
			return
		}
		if c, err := r.Cookie("csrf"); err != nil || c.Value != r.PostForm.Get("csrfToken") {
			w.WriteHeader(gohttp.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"url": "http://x/api/auth/error?error=MissingCSRF"})
			return
		}
		if r.PostForm.Get("password") != s.password {
			w.WriteHeader(gohttp.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"url": "http://x/api/auth/error?error=CredentialsSignin&provider=credentials"})
			return
		}
		gohttp.SetCookie(w, &gohttp.Cookie{Name: "next-auth.session-token", Value: "jwt", Path: "/"})
		_ = json.NewEncoder(w).Encode(map[string]string{"url": r.PostForm.Get("callbackUrl")})
	})
	mux.HandleFunc("/api/auth/session", func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if _, err := r.Cookie("next-auth.session-token"); err != nil {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"name":"Ada","email":"ada@example.com","role":"ADMIN"},"expires":"2030-01-01T00:00:00Z"}`))
	})
	mux.HandleFunc("/api/auth/signout", func(w gohttp.ResponseWriter, r *gohttp.Request) {
		gohttp.SetCookie(w, &gohttp.Cookie{Name: "next-auth.session-token", Value: "", Path: "/", MaxAge: -1})
		_, _ = w.Write([]byte(`{"url":"/"}`))
	})
	return mux
}

func newAuth(t *testing.T) (*identity.CredentialsAuthenticator, *fakeAuthServer) {
	t.Helper()
	fake := &fakeAuthServer{password: "secret"}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	a, err := identity.NewCredentialsAuthenticator(srv.URL, "")
	require.NoError(t, err)
	return a, fake
}

func TestAuthenticate_Success(t *testing.T) {
	a, fake := newAuth(t)

	res, err := a.Authenticate(context.Background(), flow.ProviderCredentials, flow.SignInOptions{
		Email: "ada@example.com", Password: "secret",
	})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.NotEmpty(t, res.URL)

	names := map[string]bool{}
	for _, c := range res.Cookies {
		names[c.Name] = true
	}
	assert.True(t, names["next-auth.session-token"])

	assert.Equal(t, "false", fake.lastForm.Get("redirect"))
	assert.Equal(t, "true", fake.lastForm.Get("json"))
	assert.Equal(t, "ada@example.com", fake.lastForm.Get("email"))

	info, err := a.Session(context.Background())
	require.NoError(t, err)
	require.NotNil(t, info.User)
	assert.Equal(t, "ADMIN", info.User.Role)
}

func TestAuthenticate_Rejected(t *testing.T) {
	a, _ := newAuth(t)

	res, err := a.Authenticate(context.Background(), flow.ProviderCredentials, flow.SignInOptions{
		Email: "ada@example.com", Password: "wrong",
	})
	require.NoError(t, err)
	assert.Equal(t, "CredentialsSignin", res.Error)
	assert.Empty(t, res.Cookies)

	info, err := a.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info.User)
}

func TestAuthenticate_MalformedReply(t *testing.T) {
	a, fake := newAuth(t)
	fake.returnRaw = "not json"

	_, err := a.Authenticate(context.Background(), flow.ProviderCredentials, flow.SignInOptions{Email: "e", Password: "p"})
	assert.ErrorIs(t, err, identity.ErrBadResponse)
}

func TestAuthenticate_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(gohttp.NotFoundHandler())
	srv.Close()

	a, err := identity.NewCredentialsAuthenticator(srv.URL, "")
	require.NoError(t, err)
	_, err = a.Authenticate(context.Background(), flow.ProviderCredentials, flow.SignInOptions{Email: "e", Password: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity: csrf")
}

func TestSignOutAndRestore(t *testing.T) {
	a, _ := newAuth(t)
	_, err := a.Authenticate(context.Background(), flow.ProviderCredentials, flow.SignInOptions{Email: "e", Password: "secret"})
	require.NoError(t, err)
	kept := a.Cookies()

	require.NoError(t, a.SignOut(context.Background()))
	assert.Empty(t, a.Cookies())

	a.RestoreCookies(kept)
	info, err := a.Session(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, info.User)
}

func TestNewCredentialsAuthenticator_InvalidBase(t *testing.T) {
	_, err := identity.NewCredentialsAuthenticator("not a url", "")
	assert.Error(t, err)
}
