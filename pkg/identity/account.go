package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/http"
)

// SignupPath is the account creation endpoint, relative to the base URL.
const SignupPath = "/api/auth/signup"

// Option configures the identity clients.
type Option func(*clientOptions)

type clientOptions struct {
	timeout time.Duration
}

// WithTimeout bounds each outgoing call. Zero keeps the client default.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

func buildOptions(opts []Option) clientOptions {
	var o clientOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// AccountClient creates accounts through the identity service.
type AccountClient struct {
	baseURL string
	opts    clientOptions
}

// NewAccountClient returns a client for the service at baseURL.
func NewAccountClient(baseURL string, opts ...Option) *AccountClient {
	return &AccountClient{baseURL: strings.TrimRight(baseURL, "/"), opts: buildOptions(opts)}
}

// CreateAccount posts form as JSON. The reply body is parsed whatever the
// status; on a non-2xx status its "error" field is surfaced. A reply that is
// not JSON is an ErrBadResponse. No retries.
func (c *AccountClient) CreateAccount(ctx context.Context, form flow.SignUpForm) (*flow.AccountResponse, error) {
	resp, err := http.Post(c.baseURL + SignupPath).
		WithContext(ctx).
		Timeout(c.opts.timeout).
		Body(form).
		Send()
	if err != nil {
		return nil, fmt.Errorf("identity: create account: %w", err)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := resp.JSON(&body); err != nil {
		return nil, fmt.Errorf("%w: signup status %d: %v", ErrBadResponse, resp.StatusCode, err)
	}

	out := &flow.AccountResponse{
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(resp.Raw),
	}
	if !resp.OK() {
		out.Error = body.Error
	}
	return out, nil
}
