package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/authflow/app/views"
	"github.com/shashiranjanraj/authflow/pkg/crypt"
	"github.com/shashiranjanraj/authflow/pkg/event"
	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/identity"
	"github.com/shashiranjanraj/authflow/pkg/logger"
	"github.com/shashiranjanraj/authflow/pkg/metrics"
	"github.com/shashiranjanraj/authflow/pkg/session"
	"github.com/shashiranjanraj/authflow/pkg/validate"
)

// Session key holding the identity service's cookies as an encrypted Cookie
// header.
const upstreamCookiesKey = "identity_cookies"

// Page routes.
const (
	SignInPath = "/pages/signin"
	SignUpPath = "/pages/signup"
	LogoutPath = "/logout"
)

// SessionAuthenticator is a flow.Authenticator that holds a browser-like
// session with the identity service.
type SessionAuthenticator interface {
	flow.Authenticator
	Cookies() []*http.Cookie
	RestoreCookies([]*http.Cookie)
	Session(ctx context.Context) (identity.SessionInfo, error)
	SignOut(ctx context.Context) error
}

// PagesController renders the sign-in and sign-up pages. Every request
// mounts a fresh flow; the identity session lives in the local session.
type PagesController struct {
	views    *views.Set
	accounts flow.AccountCreator
	newAuth  func() (SessionAuthenticator, error)
	landing  string
}

func NewPagesController(v *views.Set, accounts flow.AccountCreator, newAuth func() (SessionAuthenticator, error), landing string) *PagesController {
	if landing == "" {
		landing = "/"
	}
	return &PagesController{views: v, accounts: accounts, newAuth: newAuth, landing: landing}
}

type formPage struct {
	Title        string
	Action       string
	AltURL       string
	Name         string
	Email        string
	Role         string
	Roles        []flow.Role
	Errors       map[string]string
	Message      string
	Success      bool
	Pending      bool
	ButtonLabel  string
	PendingLabel string
}

type homePage struct {
	Title     string
	User      *identity.SessionUser
	LogoutURL string
	SignInURL string
	SignUpURL string
}

func signInPage(form flow.SignInForm, res flow.SubmissionResult) formPage {
	return formPage{
		Title:        "Sign In",
		Action:       SignInPath,
		AltURL:       SignUpPath,
		Email:        form.Email,
		Message:      res.Message,
		Success:      res.Status == flow.StatusSuccess,
		Pending:      res.Pending(),
		ButtonLabel:  buttonLabel(res, "Signing in...", "Sign In"),
		PendingLabel: "Signing in...",
	}
}

func signUpPage(form flow.SignUpForm, res flow.SubmissionResult) formPage {
	return formPage{
		Title:        "Sign Up",
		Action:       SignUpPath,
		AltURL:       SignInPath,
		Name:         form.Name,
		Email:        form.Email,
		Role:         string(form.Role),
		Roles:        flow.Roles,
		Message:      res.Message,
		Success:      res.Status == flow.StatusSuccess,
		Pending:      res.Pending(),
		ButtonLabel:  buttonLabel(res, "Creating...", "Sign Up"),
		PendingLabel: "Creating...",
	}
}

func buttonLabel(res flow.SubmissionResult, pending, idle string) string {
	if res.Pending() {
		return pending
	}
	return idle
}

func flowOptions(landing string) []flow.Option {
	return []flow.Option{
		flow.WithLandingPath(landing),
		flow.WithObserver(metrics.FlowObserver()),
		flow.WithObserver(event.FlowObserver()),
	}
}

// ShowSignIn handles GET /pages/signin.
func (c *PagesController) ShowSignIn(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, views.SignIn, signInPage(flow.SignInForm{}, flow.SubmissionResult{}))
}

// SignIn handles POST /pages/signin.
func (c *PagesController) SignIn(w http.ResponseWriter, r *http.Request) {
	authn, err := c.newAuth()
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var target string
	f := flow.NewSignInFlow(authn, flow.NavigatorFunc(func(p string) { target = p }), flowOptions(c.landing)...)
	defer f.Unmount()

	f.SetEmail(strings.TrimSpace(r.PostFormValue("email")))
	f.SetPassword(r.PostFormValue("password"))

	form := f.Form()
	if errs := validate.Struct(form); validate.HasErrors(errs) {
		page := signInPage(form, f.Result())
		page.Errors = errs
		c.render(w, r, http.StatusUnprocessableEntity, views.SignIn, page)
		return
	}

	res, err := f.Submit(r.Context(), form)
	if target != "" {
		c.navigate(w, r, authn, target)
		return
	}
	c.render(w, r, statusFor(err), views.SignIn, signInPage(f.Form(), res))
}

// ShowSignUp handles GET /pages/signup.
func (c *PagesController) ShowSignUp(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, views.SignUp, signUpPage(flow.SignUpForm{}, flow.SubmissionResult{}))
}

// SignUp handles POST /pages/signup.
func (c *PagesController) SignUp(w http.ResponseWriter, r *http.Request) {
	authn, err := c.newAuth()
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var target string
	f := flow.NewSignUpFlow(c.accounts, authn, flow.NavigatorFunc(func(p string) { target = p }), flowOptions(c.landing)...)
	defer f.Unmount()

	f.SetName(strings.TrimSpace(r.PostFormValue("name")))
	f.SetEmail(strings.TrimSpace(r.PostFormValue("email")))
	f.SetPassword(r.PostFormValue("password"))
	if role, err := flow.ParseRole(r.PostFormValue("role")); err == nil {
		f.SetRole(role)
	}

	form := f.Form()
	if errs := validate.Struct(form); validate.HasErrors(errs) {
		page := signUpPage(form, f.Result())
		page.Errors = errs
		c.render(w, r, http.StatusUnprocessableEntity, views.SignUp, page)
		return
	}

	res, err := f.Submit(r.Context(), form)
	if target != "" {
		c.navigate(w, r, authn, target)
		return
	}
	c.render(w, r, statusFor(err), views.SignUp, signUpPage(f.Form(), res))
}

// Home handles GET /, showing who is signed in.
func (c *PagesController) Home(w http.ResponseWriter, r *http.Request) {
	page := homePage{Title: "Home", LogoutURL: LogoutPath, SignInURL: SignInPath, SignUpURL: SignUpPath}

	if cookies := storedCookies(session.FromCtx(r)); len(cookies) > 0 {
		authn, err := c.newAuth()
		if err != nil {
			c.fail(w, r, err)
			return
		}
		authn.RestoreCookies(cookies)
		info, err := authn.Session(r.Context())
		if err != nil {
			logger.WithCtx(r.Context()).Warn("identity session lookup failed", "error", err)
		}
		page.User = info.User
	}
	c.render(w, r, http.StatusOK, views.Home, page)
}

// Logout handles POST /logout.
func (c *PagesController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	log := logger.WithCtx(r.Context())

	if cookies := storedCookies(sess); len(cookies) > 0 {
		if authn, err := c.newAuth(); err == nil {
			authn.RestoreCookies(cookies)
			if err := authn.SignOut(r.Context()); err != nil {
				log.Warn("identity sign-out failed", "error", err)
			}
		}
	}

	sess.Invalidate()
	if err := sess.Save(w); err != nil {
		log.Error("logout: save session", "error", err)
	}
	http.Redirect(w, r, SignInPath, http.StatusSeeOther)
}

// navigate keeps the identity cookies in the local session and redirects.
func (c *PagesController) navigate(w http.ResponseWriter, r *http.Request, authn SessionAuthenticator, target string) {
	sess := session.FromCtx(r)
	sealed, err := crypt.Encrypt(cookieHeader(authn.Cookies()))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	sess.Set(upstreamCookiesKey, sealed)
	if err := sess.Save(w); err != nil {
		logger.WithCtx(r.Context()).Error("save session", "error", err)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (c *PagesController) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.views.Render(w, page, data); err != nil {
		logger.WithCtx(r.Context()).Error("render page", "page", page, "error", err)
	}
}

func (c *PagesController) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.WithCtx(r.Context()).Error("pages: identity client", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// statusFor maps a Submit error onto the page status: collaborator failures
// are a bad gateway, a rejected submission a conflict.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, flow.ErrSubmissionPending), errors.Is(err, flow.ErrUnmounted):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func cookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func storedCookies(sess *session.Session) []*http.Cookie {
	sealed, ok := sess.GetString(upstreamCookiesKey)
	if !ok || sealed == "" {
		return nil
	}
	raw, err := crypt.Decrypt(sealed)
	if err != nil {
		return nil
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return nil
	}
	return cookies
}
