// Package kernel assembles the HTTP handler: the global middleware stack,
// /metrics, and whichever of the pages and the identity API are enabled.
package kernel

import (
	"net/http"

	"github.com/shashiranjanraj/authflow/app/controllers"
	"github.com/shashiranjanraj/authflow/app/routes"
	"github.com/shashiranjanraj/authflow/pkg/metrics"
	"github.com/shashiranjanraj/authflow/pkg/middleware"
	"github.com/shashiranjanraj/authflow/pkg/reqid"
	"github.com/shashiranjanraj/authflow/pkg/router"
	"github.com/shashiranjanraj/authflow/pkg/session"
)

// Components are the parts a server mounts. Nil controllers are skipped.
type Components struct {
	Pages    *controllers.PagesController
	Identity *controllers.IdentityController
	// Limiter rate-limits the identity API.
	Limiter *middleware.Limiter
	CORS    middleware.CORSOptions
	Session session.Options
	// TrustedProxies may set X-Forwarded-For. Nil means loopback only.
	TrustedProxies middleware.TrustedProxies
}

// HTTPKernel is a built router.
type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(c Components) *HTTPKernel {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics
	//  2. Request ID
	//  3. Client address
	//  4. Recovery
	//  5. Logger
	//  6. CORS (before routing so preflights reach it)
	//  7. Session
	trusted := c.TrustedProxies
	if trusted == nil {
		trusted = middleware.DefaultTrustedProxies()
	}
	r.Use(metrics.Middleware(router.RoutePattern))
	r.Use(reqid.Middleware())
	r.Use(middleware.RealIP(trusted))
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(c.CORS))
	r.Use(session.Middleware(c.Session))

	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if c.Identity != nil {
		routes.RegisterAPI(r, c.Identity, c.Limiter)
	}
	if c.Pages != nil {
		routes.RegisterWeb(r, c.Pages)
	}

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists the mounted routes.
func (k *HTTPKernel) Routes() []router.RouteInfo { return k.router.Routes() }
