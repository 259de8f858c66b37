package http_test

import (
	"context"
	"encoding/json"
	"errors"
	gohttp "net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/authflow/pkg/http"
	"github.com/shashiranjanraj/authflow/pkg/reqid"
)

func TestPost_JSONBody(t *testing.T) {
	var gotCT, gotID string
	var got map[string]string
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotID = r.Header.Get(reqid.Header)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(gohttp.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	ctx := reqid.WithValue(context.Background(), "rid-1")
	resp, err := http.Post(srv.URL).WithContext(ctx).Body(map[string]string{"name": "Ada"}).Send()
	require.NoError(t, err, "non-2xx is not a transport error")

	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "rid-1", gotID)
	assert.Equal(t, "Ada", got["name"])
	assert.False(t, resp.OK())
	assert.Error(t, resp.Throw())

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, resp.JSON(&body))
	assert.Equal(t, "nope", body.Error)
}

func TestSend_ForwardsClientAddress(t *testing.T) {
	var got []string
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		got = append(got, r.Header.Get(reqid.ForwardedHeader))
	}))
	defer srv.Close()

	ctx := reqid.WithClientIP(context.Background(), "203.0.113.5")
	_, err := http.Get(srv.URL).WithContext(ctx).Send()
	require.NoError(t, err)
	_, err = http.Get(srv.URL).WithContext(ctx).Header(reqid.ForwardedHeader, "198.51.100.1").Send()
	require.NoError(t, err)
	_, err = http.Get(srv.URL).Send()
	require.NoError(t, err)

	assert.Equal(t, []string{"203.0.113.5", "198.51.100.1", ""}, got)
}

func TestPost_FormBody(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		_, _ = w.Write([]byte(r.PostForm.Get("email")))
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL).Form(url.Values{"email": {"a@b.test"}}).Send()
	require.NoError(t, err)
	assert.Equal(t, "a@b.test", string(resp.Raw))
}

func TestNewClient_KeepsCookiesAndStopsRedirects(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		switch r.URL.Path {
		case "/set":
			gohttp.SetCookie(w, &gohttp.Cookie{Name: "sid", Value: "abc", Path: "/"})
			gohttp.Redirect(w, r, "/elsewhere", gohttp.StatusFound)
		case "/echo":
			c, err := r.Cookie("sid")
			if err != nil {
				w.WriteHeader(gohttp.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(c.Value))
		}
	}))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := http.NewClient(jar)

	resp, err := http.Get(srv.URL + "/set").Client(c).Send()
	require.NoError(t, err)
	assert.Equal(t, gohttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/elsewhere", resp.Headers.Get("Location"))
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	assert.Len(t, jar.Cookies(u), 1)

	resp, err = http.Get(srv.URL + "/echo").Client(c).Send()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(resp.Raw))
}

type failingTransport struct{ calls atomic.Int32 }

func (f *failingTransport) RoundTrip(*gohttp.Request) (*gohttp.Response, error) {
	f.calls.Add(1)
	return nil, errors.New("boom")
}

func TestSend_SingleAttempt(t *testing.T) {
	ft := &failingTransport{}
	http.DefaultClient.Transport = ft
	defer http.ResetTransport()

	_, err := http.Get("http://collaborator.invalid/").Send()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http: send")
	assert.EqualValues(t, 1, ft.calls.Load())
}
