package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/authflow/pkg/cache"
)

func testOptions() Options {
	return Options{CookieName: "sid", TTL: time.Minute, HTTPOnly: true, Path: "/"}
}

func useMemoryCache(t *testing.T) {
	t.Helper()
	prev := cache.Default()
	cache.Use(cache.NewMemoryStore())
	t.Cleanup(func() { cache.Use(prev) })
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	useMemoryCache(t)
	mw := Middleware(testOptions())

	write := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromCtx(r)
		sess.Set("email", "ada@example.com")
		require.NoError(t, sess.Save(w))
	}))
	rec := httptest.NewRecorder()
	write.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	var got string
	read := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromCtx(r).GetString("email")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	read.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "ada@example.com", got)
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	useMemoryCache(t)

	var id string
	h := Middleware(testOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = FromCtx(r).ID()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, "forged", id)
	assert.Len(t, id, 64)
}

func TestUnchangedSessionIsNotWritten(t *testing.T) {
	useMemoryCache(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess := FromCtx(req)
	require.NoError(t, sess.Save(rec))
	assert.Empty(t, rec.Result().Cookies())
}

func TestFlashAndInvalidate(t *testing.T) {
	useMemoryCache(t)
	sess := FromCtx(httptest.NewRequest(http.MethodGet, "/", nil))

	sess.Flash("message", "hi")
	v, ok := sess.GetFlash("message")
	assert.True(t, ok)
	assert.Equal(t, "hi", v)
	_, ok = sess.GetFlash("message")
	assert.False(t, ok)

	sess.Set("k", "v")
	old := sess.ID()
	sess.Invalidate()
	assert.NotEqual(t, old, sess.ID())
	_, ok = sess.Get("k")
	assert.False(t, ok)
}
