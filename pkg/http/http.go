// Package http provides the fluent HTTP client used for every outgoing
// collaborator call (account creation, credentials callback, session reads).
//
// Usage:
//
//	resp, err := http.Post(base + "/api/auth/signup").
//	    WithContext(ctx).
//	    Body(form).
//	    Send()
//
//	var body struct{ Error string `json:"error"` }
//	err = resp.JSON(&body)
//
//	// Form-encoded POST on a client with its own cookie jar
//	resp, err := http.Post(base + "/api/auth/callback/credentials").
//	    Client(c).
//	    Form(url.Values{"email": {email}}).
//	    Send()
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shashiranjanraj/authflow/pkg/reqid"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        200,
	MaxIdleConnsPerHost: 100,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is the shared client used when a request does not name its
// own. Tests swap DefaultClient.Transport to intercept calls:
//
//	http.DefaultClient.Transport = mt
//	defer http.ResetTransport()
var DefaultClient = &gohttp.Client{
	Transport: defaultTransport,
}

// ResetTransport restores the production transport on DefaultClient.
func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// NewClient returns a client sharing DefaultClient's transport (so test
// transports installed on DefaultClient still apply) with the given cookie
// jar. Redirects are never followed; callers decide where to go next.
func NewClient(jar gohttp.CookieJar) *gohttp.Client {
	return &gohttp.Client{
		Transport: sharedTransport{},
		Jar:       jar,
		CheckRedirect: func(*gohttp.Request, []*gohttp.Request) error {
			return gohttp.ErrUseLastResponse
		},
	}
}

// sharedTransport defers to whatever DefaultClient.Transport is at call time.
type sharedTransport struct{}

func (sharedTransport) RoundTrip(req *gohttp.Request) (*gohttp.Response, error) {
	rt := DefaultClient.Transport
	if rt == nil {
		rt = gohttp.DefaultTransport
	}
	return rt.RoundTrip(req)
}

// ------------------- Request -------------------

// Request is a fluent HTTP request builder.
type Request struct {
	method  string
	url     string
	headers map[string]string
	body    interface{}
	form    url.Values
	client  *gohttp.Client
	timeout time.Duration
	ctx     context.Context
}

// Get starts a GET request.
func Get(url string) *Request { return newRequest(gohttp.MethodGet, url) }

// Post starts a POST request.
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:  method,
		url:     url,
		headers: map[string]string{"Accept": "application/json"},
		timeout: 30 * time.Second,
		ctx:     context.Background(),
	}
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Body sets a JSON request body. Pass a string or []byte to send raw bodies.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	r.form = nil
	return r
}

// Form sets an application/x-www-form-urlencoded body.
func (r *Request) Form(values url.Values) *Request {
	r.form = values
	r.body = nil
	return r
}

// Client sends the request through c instead of DefaultClient.
func (r *Request) Client(c *gohttp.Client) *Request {
	r.client = c
	return r
}

// Timeout bounds the whole exchange, body read included.
func (r *Request) Timeout(d time.Duration) *Request {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// WithContext sets the request context. Its request ID, if any, is forwarded.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx != nil {
		r.ctx = ctx
	}
	return r
}

// ------------------- Send -------------------

// Send executes the request once and returns a Response. Non-2xx statuses
// are not errors; only transport and body-read failures are.
func (r *Request) Send() (*Response, error) {
	return r.do()
}

func (r *Request) do() (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if id := reqid.FromCtx(r.ctx); id != "" && req.Header.Get(reqid.Header) == "" {
		req.Header.Set(reqid.Header, id)
	}
	if ip := reqid.ClientIP(r.ctx); ip != "" && req.Header.Get(reqid.ForwardedHeader) == "" {
		req.Header.Set(reqid.ForwardedHeader, ip)
	}

	client := r.client
	if client == nil {
		client = DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	if r.form != nil {
		return strings.NewReader(r.form.Encode()), "application/x-www-form-urlencoded", nil
	}
	if r.body == nil {
		return nil, "", nil
	}
	switch v := r.body.(type) {
	case string:
		return bytes.NewBufferString(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// ------------------- Response -------------------

// Response wraps the HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Throw returns an error if the response status is not 2xx.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: request failed with status %d: %s", r.StatusCode, string(r.Raw))
	}
	return nil
}
