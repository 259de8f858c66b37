package kernel

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shashiranjanraj/authflow/app/controllers"
	"github.com/shashiranjanraj/authflow/app/models"
	"github.com/shashiranjanraj/authflow/app/repositories"
	"github.com/shashiranjanraj/authflow/app/services"
	"github.com/shashiranjanraj/authflow/app/views"
	"github.com/shashiranjanraj/authflow/config"
	"github.com/shashiranjanraj/authflow/pkg/cache"
	"github.com/shashiranjanraj/authflow/pkg/database"
	"github.com/shashiranjanraj/authflow/pkg/event"
	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/identity"
	"github.com/shashiranjanraj/authflow/pkg/logger"
	"github.com/shashiranjanraj/authflow/pkg/middleware"
	"github.com/shashiranjanraj/authflow/pkg/migration"
	"github.com/shashiranjanraj/authflow/pkg/session"

	// Register schema migrations.
	_ "github.com/shashiranjanraj/authflow/database/migrations"
)

const rateWindow = time.Minute

var listenOnce sync.Once

// Features selects what a server mounts.
type Features struct {
	Pages    bool
	Identity bool
}

// Boot loads config, connects the cache (falling back to memory) and builds
// the components for features.
func Boot(ctx context.Context, f Features) (Components, error) {
	if err := config.Load(); err != nil {
		return Components{}, fmt.Errorf("config: %w", err)
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("cache: redis unavailable, using memory store", "error", err)
	}
	listen()

	trusted, err := middleware.ParseTrustedProxies(config.TrustedProxies())
	if err != nil {
		return Components{}, fmt.Errorf("config: %w", err)
	}

	c := Components{
		CORS:           middleware.DefaultCORSOptions(config.CORSOrigins()),
		Session:        session.DefaultOptions(),
		TrustedProxies: trusted,
	}

	if f.Identity {
		users, err := userStore(ctx)
		if err != nil {
			return Components{}, err
		}
		c.Identity = controllers.NewIdentityController(
			services.NewAccountService(users), config.SessionTTL(), config.IsProduction())
		c.Limiter = middleware.NewLimiter(config.RateLimit(), rateWindow)
	}

	if f.Pages {
		pages, err := NewPages()
		if err != nil {
			return Components{}, err
		}
		c.Pages = pages
	}
	return c, nil
}

// NewPages builds the pages controller against IDENTITY_URL.
func NewPages() (*controllers.PagesController, error) {
	set, err := views.Load()
	if err != nil {
		return nil, err
	}
	accounts, newAuth := IdentityClients()
	return controllers.NewPagesController(set, accounts, func() (controllers.SessionAuthenticator, error) {
		a, err := newAuth()
		if err != nil {
			return nil, err
		}
		return a, nil
	}, config.LandingPath()), nil
}

// IdentityClients returns the account client and an authenticator factory
// for IDENTITY_URL. Every authenticator holds its own cookie jar.
func IdentityClients() (*identity.AccountClient, func() (*identity.CredentialsAuthenticator, error)) {
	base, timeout := config.IdentityURL(), config.HTTPTimeout()
	callback := config.AppURL() + config.LandingPath()

	accounts := identity.NewAccountClient(base, identity.WithTimeout(timeout))
	return accounts, func() (*identity.CredentialsAuthenticator, error) {
		return identity.NewCredentialsAuthenticator(base, callback, identity.WithTimeout(timeout))
	}
}

// userStore opens the configured database and migrates it. Without a
// reachable database the service keeps accounts in memory.
func userStore(ctx context.Context) (repositories.UserStore, error) {
	if err := database.Connect(); err != nil {
		logger.Warn("database unavailable, keeping accounts in memory", "error", err)
		return repositories.NewMemoryUserRepository(), nil
	}
	if err := migration.New(database.DB, io.Discard).Run(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.WithCtx(ctx).Info("database ready", "driver", config.DatabaseDriver())
	return repositories.NewUserRepository(database.DB), nil
}

// listen logs domain events.
func listen() {
	listenOnce.Do(func() {
		event.Listen(event.FlowTransition, func(p interface{}) {
			if t, ok := p.(flow.Transition); ok {
				logger.Debug("flow transition", "flow", t.Flow, "from", t.From.String(), "to", t.To.String())
			}
		})
		event.Listen(event.AccountCreated, func(p interface{}) {
			if u, ok := p.(models.User); ok {
				logger.Info("account registered", "user_id", u.ID, "role", u.Role)
			}
		})
	})
}
