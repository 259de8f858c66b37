package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shashiranjanraj/authflow/app/services"
	"github.com/shashiranjanraj/authflow/pkg/auth"
	"github.com/shashiranjanraj/authflow/pkg/bind"
	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/identity"
	"github.com/shashiranjanraj/authflow/pkg/logger"
	"github.com/shashiranjanraj/authflow/pkg/middleware"
	"github.com/shashiranjanraj/authflow/pkg/response"
	"github.com/shashiranjanraj/authflow/pkg/session"
)

const csrfSessionKey = "csrf_token"

// Error codes reported in the "error" parameter of /api/auth/error URLs.
const (
	codeCredentialsSignin = "CredentialsSignin"
	codeMissingCSRF       = "MissingCSRF"
	codeConfiguration     = "Configuration"
)

// IdentityController serves the next-auth style endpoints of the local
// identity service.
type IdentityController struct {
	accounts   *services.AccountService
	sessionTTL time.Duration
	secure     bool
}

func NewIdentityController(accounts *services.AccountService, sessionTTL time.Duration, secureCookies bool) *IdentityController {
	return &IdentityController{accounts: accounts, sessionTTL: sessionTTL, secure: secureCookies}
}

type accountBody struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Signup handles POST /api/auth/signup.
func (c *IdentityController) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	errs, err := bind.JSON(w, r, &in)
	if errors.Is(err, bind.ErrTooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.accounts.Register(r.Context(), in)
	switch {
	case errors.Is(err, services.ErrAccountExists):
		response.Error(w, http.StatusBadRequest, "Email already exists")
		return
	case errors.Is(err, services.ErrInvalidRole):
		response.Error(w, http.StatusBadRequest, "Invalid role")
		return
	case errors.Is(err, services.ErrPasswordTooLong):
		response.ValidationError(w, map[string]string{"password": "The password must not exceed 72 bytes."})
		return
	case err != nil:
		logger.WithCtx(r.Context()).Error("signup failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logger.WithCtx(r.Context()).Info("account created", "user_id", user.ID, "role", user.Role)
	response.Created(w, accountBody{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
}

// CSRF handles GET /api/auth/csrf. The token is bound to the caller's
// session cookie.
func (c *IdentityController) CSRF(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	token, ok := sess.GetString(csrfSessionKey)
	if !ok || token == "" {
		token = uuid.NewString()
		sess.Set(csrfSessionKey, token)
	}
	if err := sess.Save(w); err != nil {
		logger.WithCtx(r.Context()).Error("csrf: save session", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	response.Success(w, map[string]string{"csrfToken": token})
}

func csrfValid(r *http.Request) bool {
	want, ok := session.FromCtx(r).GetString(csrfSessionKey)
	return ok && want != "" && want == r.PostFormValue("csrfToken")
}

// Callback handles POST /api/auth/callback/{provider}.
func (c *IdentityController) Callback(w http.ResponseWriter, r *http.Request) {
	base := origin(r)
	if err := r.ParseForm(); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if provider := chi.URLParam(r, "provider"); provider != flow.ProviderCredentials {
		response.JSON(w, http.StatusBadRequest, map[string]string{"url": errorURL(base, codeConfiguration, provider)})
		return
	}
	if !csrfValid(r) {
		response.JSON(w, http.StatusForbidden, map[string]string{"url": errorURL(base, codeMissingCSRF, "")})
		return
	}

	log := logger.WithCtx(r.Context())
	user, err := c.accounts.Authenticate(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Info("credentials rejected")
		response.JSON(w, http.StatusUnauthorized, map[string]string{
			"url": errorURL(base, codeCredentialsSignin, flow.ProviderCredentials),
		})
		return
	}
	if err != nil {
		log.Error("credentials check failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	token, expires, err := auth.GenerateToken(auth.Identity{
		UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role,
	}, c.sessionTTL)
	if err != nil {
		log.Error("session token", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	log.Info("signed in", "user_id", user.ID)
	response.Success(w, map[string]string{"url": sameOrigin(base, r.PostFormValue("callbackUrl"))})
}

// Session handles GET /api/auth/session. Signed-out callers get {}.
func (c *IdentityController) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Success(w, struct{}{})
		return
	}

	info := identity.SessionInfo{
		User: &identity.SessionUser{Name: claims.Name, Email: claims.Email, Role: claims.Role},
	}
	if claims.ExpiresAt != nil {
		info.Expires = claims.ExpiresAt.UTC().Format(time.RFC3339)
	}
	response.Success(w, info)
}

// SignOut handles POST /api/auth/signout.
func (c *IdentityController) SignOut(w http.ResponseWriter, r *http.Request) {
	base := origin(r)
	if err := r.ParseForm(); err != nil || !csrfValid(r) {
		response.JSON(w, http.StatusForbidden, map[string]string{"url": errorURL(base, codeMissingCSRF, "")})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	response.Success(w, map[string]string{"url": sameOrigin(base, r.PostFormValue("callbackUrl"))})
}

// Error handles GET /api/auth/error.
func (c *IdentityController) Error(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("error")
	if code == "" {
		code = "Default"
	}
	response.Error(w, http.StatusBadRequest, code)
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func errorURL(base, code, provider string) string {
	q := url.Values{"error": {code}}
	if provider != "" {
		q.Set("provider", provider)
	}
	return base + identity.ErrorPath + "?" + q.Encode()
}

// sameOrigin returns callback when it stays on base (or is a relative path),
// and base otherwise.
func sameOrigin(base, callback string) string {
	switch {
	case callback == "":
		return base
	case strings.HasPrefix(callback, "/") && !strings.HasPrefix(callback, "//"):
		return base + callback
	case callback == base || strings.HasPrefix(callback, base+"/"):
		return callback
	}
	return base
}
