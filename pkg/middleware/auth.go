package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/authflow/pkg/auth"
)

type claimsKey struct{}

// ClaimsFromCtx returns the session claims injected by SessionToken.
func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

func tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(auth.SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// SessionToken injects the claims of a valid session token (cookie or
// bearer header) into the request context. Requests without one pass
// through untouched.
func SessionToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := tokenFrom(r); tok != "" {
			if claims, err := auth.ValidateToken(tok); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}
