package routes

import (
	"net/http"

	"github.com/shashiranjanraj/authflow/app/controllers"
	"github.com/shashiranjanraj/authflow/pkg/middleware"
	"github.com/shashiranjanraj/authflow/pkg/router"
)

// RegisterAPI mounts the identity service under /api/auth. limiter may be nil.
func RegisterAPI(r *router.Router, c *controllers.IdentityController, limiter *middleware.Limiter) {
	mws := []router.Middleware{middleware.SessionToken}
	if limiter != nil {
		mws = append([]router.Middleware{limiter.Middleware}, mws...)
	}

	api := r.Group("/api/auth", mws...)
	api.Post("/signup", "auth.signup", c.Signup)
	api.Get("/csrf", "auth.csrf", c.CSRF)
	api.Post("/callback/{provider}", "auth.callback", c.Callback)
	api.Get("/session", "auth.session", c.Session)
	api.Post("/signout", "auth.signout", c.SignOut)
	api.Get("/error", "auth.error", c.Error)
}

// RegisterWeb mounts the pages.
func RegisterWeb(r *router.Router, c *controllers.PagesController) {
	r.Get("/", "home", c.Home)
	r.Get(controllers.SignInPath, "pages.signin", c.ShowSignIn)
	r.Post(controllers.SignInPath, "pages.signin.submit", c.SignIn)
	r.Get(controllers.SignUpPath, "pages.signup", c.ShowSignUp)
	r.Post(controllers.SignUpPath, "pages.signup.submit", c.SignUp)
	r.Post(controllers.LogoutPath, "logout", c.Logout)
	r.Get("/pages", "pages", http.RedirectHandler(controllers.SignInPath, http.StatusFound).ServeHTTP)
}
