package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario is one request/response expectation against an http.Handler,
// usually loaded from a JSON file under testdata/:
//
//	{
//	  "name": "signup duplicate email",
//	  "requestMethod": "POST",
//	  "requestUrl": "/api/auth/signup",
//	  "requestBody": {"name": "Ada", "email": "ada@example.com", "password": "pw", "role": "ADMIN"},
//	  "expectedCode": 400,
//	  "expectedBody": {"error": "Email already exists"}
//	}
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod string            `json:"requestMethod"`
	RequestURL    string            `json:"requestUrl"`
	RequestBody   json.RawMessage   `json:"requestBody"`
	Form          map[string]string `json:"form"`
	Headers       map[string]string `json:"headers"`

	ExpectedCode int             `json:"expectedCode"`
	ExpectedBody json.RawMessage `json:"expectedBody"`
	// ExpectedHeaders are matched by prefix.
	ExpectedHeaders map[string]string `json:"expectedHeaders"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &s, nil
}

// RunDir runs every *.json scenario in dir, in file-name order, against the
// same handler. Later scenarios see the state left by earlier ones.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "testkit: no scenario files found in %q", dir)
	sort.Strings(paths)

	for _, p := range paths {
		s, err := LoadScenario(p)
		if !assert.NoError(t, err) {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			Run(t, handler, s)
		})
	}
}

// Run fires s at handler and asserts status, headers and JSON body.
func Run(t *testing.T, handler http.Handler, s *Scenario) *httptest.ResponseRecorder {
	t.Helper()

	method := strings.ToUpper(s.RequestMethod)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	contentType := ""
	switch {
	case len(s.Form) > 0:
		vals := url.Values{}
		for k, v := range s.Form {
			vals.Set(k, v)
		}
		body = strings.NewReader(vals.Encode())
		contentType = "application/x-www-form-urlencoded"
	case len(s.RequestBody) > 0:
		body = bytes.NewReader(s.RequestBody)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, s.RequestURL, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if s.ExpectedCode != 0 {
		assert.Equal(t, s.ExpectedCode, rec.Code, "[%s] HTTP status code mismatch\nbody: %s", s.Name, rec.Body.String())
	}
	for k, prefix := range s.ExpectedHeaders {
		assert.True(t, strings.HasPrefix(rec.Header().Get(k), prefix),
			"[%s] header %s = %q, want prefix %q", s.Name, k, rec.Header().Get(k), prefix)
	}
	if len(s.ExpectedBody) > 0 {
		AssertJSONEqual(t, s.Name, s.ExpectedBody, rec.Body.Bytes())
	}
	return rec
}

// AssertJSONEqual compares two JSON documents ignoring key order and
// whitespace.
func AssertJSONEqual(t *testing.T, name string, expected, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal), "[%s] expected body is not valid JSON", name)
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "[%s] actual body is not valid JSON\nbody: %s", name, string(actual)) {
		return
	}
	assert.Equal(t, expVal, actVal, "[%s] response body mismatch", name)
}
