package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupsAndNamedRoutes(t *testing.T) {
	r := New()

	var order []string
	mw := func(tag string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, tag)
				next.ServeHTTP(w, req)
			})
		}
	}

	api := r.Group("/api", mw("api"))
	authGroup := api.Group("/auth/", mw("auth"))
	authGroup.Post("/signup", "auth.signup", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/", "home", func(w http.ResponseWriter, _ *http.Request) {})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"api", "auth"}, order)

	path, ok := r.Path("auth.signup")
	require.True(t, ok)
	assert.Equal(t, "/api/auth/signup", path)
}

func TestURL(t *testing.T) {
	r := New()
	r.Get("/users/{id}", "users.show", func(http.ResponseWriter, *http.Request) {})

	u, err := r.URL("users.show", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/users/7", u)

	_, err = r.URL("users.show", nil)
	assert.Error(t, err)
	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestRoutesAndPattern(t *testing.T) {
	r := New()
	var pattern string
	r.Post("/pages/signin", "pages.signin.submit", func(w http.ResponseWriter, req *http.Request) {
		pattern = RoutePattern(req)
	})
	r.Get("/pages/signin", "pages.signin", func(http.ResponseWriter, *http.Request) {})
	r.Handle(http.MethodGet, "/metrics", "", http.NotFoundHandler())

	assert.Equal(t, []RouteInfo{
		{Method: "GET", Path: "/metrics"},
		{Method: "GET", Path: "/pages/signin", Name: "pages.signin"},
		{Method: "POST", Path: "/pages/signin", Name: "pages.signin.submit"},
	}, r.Routes())

	r.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/pages/signin", nil))
	assert.Equal(t, "/pages/signin", pattern)
}
