package identity

import (
	"context"
	"fmt"
	gohttp "net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/http"
)

// Endpoints of the credentials exchange, relative to the base URL.
const (
	CSRFPath     = "/api/auth/csrf"
	CallbackPath = "/api/auth/callback/"
	SessionPath  = "/api/auth/session"
	SignOutPath  = "/api/auth/signout"
	ErrorPath    = "/api/auth/error"
)

// CredentialsAuthenticator signs in against a next-auth style service. One
// instance holds one browser-like session: its cookie jar keeps the csrf
// cookie between the two legs of the exchange and the session cookie after
// it. Safe for concurrent use, though concurrent sign-ins share the jar.
type CredentialsAuthenticator struct {
	baseURL     string
	base        *url.URL
	callbackURL string
	opts        clientOptions

	mu     sync.Mutex
	jar    *cookiejar.Jar
	client *gohttp.Client
}

// NewCredentialsAuthenticator returns an authenticator for the service at
// baseURL. callbackURL is what the service reports back on success; empty
// means the service root.
func NewCredentialsAuthenticator(baseURL, callbackURL string, opts ...Option) (*CredentialsAuthenticator, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("identity: invalid base URL %q", baseURL)
	}
	if callbackURL == "" {
		callbackURL = baseURL + "/"
	}

	a := &CredentialsAuthenticator{
		baseURL:     baseURL,
		base:        base,
		callbackURL: callbackURL,
		opts:        buildOptions(opts),
	}
	if err := a.resetJar(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *CredentialsAuthenticator) resetJar() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("identity: cookie jar: %w", err)
	}
	a.mu.Lock()
	a.jar = jar
	a.client = http.NewClient(jar)
	a.mu.Unlock()
	return nil
}

func (a *CredentialsAuthenticator) session() (*cookiejar.Jar, *gohttp.Client) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.jar, a.client
}

// Cookies returns the cookies currently held for the service.
func (a *CredentialsAuthenticator) Cookies() []*gohttp.Cookie {
	jar, _ := a.session()
	return jar.Cookies(a.base)
}

// RestoreCookies seeds the jar, e.g. with cookies kept from an earlier
// sign-in, so Session and SignOut act on that session.
func (a *CredentialsAuthenticator) RestoreCookies(cookies []*gohttp.Cookie) {
	jar, _ := a.session()
	jar.SetCookies(a.base, cookies)
}

// Authenticate performs the credentials exchange for provider. A rejection is
// reported in AuthResult.Error (the "error" parameter of the URL the service
// answers with); errors are transport or contract failures only.
//
// With opts.Redirect the returned URL is fetched like a browser would.
func (a *CredentialsAuthenticator) Authenticate(ctx context.Context, provider string, opts flow.SignInOptions) (flow.AuthResult, error) {
	if provider == "" {
		return flow.AuthResult{}, fmt.Errorf("identity: empty provider")
	}
	jar, client := a.session()

	token, err := a.csrfToken(ctx, client)
	if err != nil {
		return flow.AuthResult{}, err
	}

	form := url.Values{
		"email":       {opts.Email},
		"password":    {opts.Password},
		"csrfToken":   {token},
		"callbackUrl": {a.callbackURL},
		"redirect":    {strconv.FormatBool(opts.Redirect)},
		"json":        {"true"},
	}
	resp, err := http.Post(a.baseURL+CallbackPath+url.PathEscape(provider)).
		WithContext(ctx).
		Client(client).
		Timeout(a.opts.timeout).
		Header("X-Auth-Return-Redirect", "1").
		Form(form).
		Send()
	if err != nil {
		return flow.AuthResult{}, fmt.Errorf("identity: credentials callback: %w", err)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := resp.JSON(&body); err != nil {
		return flow.AuthResult{}, fmt.Errorf("%w: callback status %d: %v", ErrBadResponse, resp.StatusCode, err)
	}

	res := flow.AuthResult{Error: errorParam(body.URL)}
	if res.Error == "" && !resp.OK() {
		res.Error = gohttp.StatusText(resp.StatusCode)
	}
	if res.Error != "" {
		return res, nil
	}

	res.URL = body.URL
	res.Cookies = jar.Cookies(a.base)

	if opts.Redirect && body.URL != "" {
		if _, err := http.Get(body.URL).WithContext(ctx).Client(client).Timeout(a.opts.timeout).Send(); err != nil {
			return res, fmt.Errorf("identity: follow redirect: %w", err)
		}
	}
	return res, nil
}

func (a *CredentialsAuthenticator) csrfToken(ctx context.Context, client *gohttp.Client) (string, error) {
	resp, err := http.Get(a.baseURL + CSRFPath).
		WithContext(ctx).
		Client(client).
		Timeout(a.opts.timeout).
		Send()
	if err != nil {
		return "", fmt.Errorf("identity: csrf: %w", err)
	}

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := resp.JSON(&body); err != nil || body.CSRFToken == "" {
		return "", fmt.Errorf("%w: csrf status %d", ErrBadResponse, resp.StatusCode)
	}
	return body.CSRFToken, nil
}

// SessionUser is the signed-in user reported by the service.
type SessionUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SessionInfo is the body of /api/auth/session. User is nil when signed out.
type SessionInfo struct {
	User    *SessionUser `json:"user,omitempty"`
	Expires string       `json:"expires,omitempty"`
}

// Session reads the current session.
func (a *CredentialsAuthenticator) Session(ctx context.Context) (SessionInfo, error) {
	_, client := a.session()

	resp, err := http.Get(a.baseURL + SessionPath).
		WithContext(ctx).
		Client(client).
		Timeout(a.opts.timeout).
		Send()
	if err != nil {
		return SessionInfo{}, fmt.Errorf("identity: session: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return SessionInfo{}, fmt.Errorf("identity: session: %w", err)
	}

	var info SessionInfo
	if err := resp.JSON(&info); err != nil {
		return SessionInfo{}, fmt.Errorf("%w: session: %v", ErrBadResponse, err)
	}
	return info, nil
}

// SignOut ends the session on the service and forgets every cookie.
func (a *CredentialsAuthenticator) SignOut(ctx context.Context) error {
	_, client := a.session()

	token, err := a.csrfToken(ctx, client)
	if err != nil {
		return err
	}
	resp, err := http.Post(a.baseURL+SignOutPath).
		WithContext(ctx).
		Client(client).
		Timeout(a.opts.timeout).
		Header("X-Auth-Return-Redirect", "1").
		Form(url.Values{"csrfToken": {token}, "callbackUrl": {a.callbackURL}, "json": {"true"}}).
		Send()
	if err != nil {
		return fmt.Errorf("identity: sign out: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return fmt.Errorf("identity: sign out: %w", err)
	}
	return a.resetJar()
}

// errorParam extracts the "error" query parameter of a callback URL.
func errorParam(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("error")
}
