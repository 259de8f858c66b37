package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/authflow/app/controllers"
	"github.com/shashiranjanraj/authflow/app/repositories"
	"github.com/shashiranjanraj/authflow/app/services"
	"github.com/shashiranjanraj/authflow/config"
	"github.com/shashiranjanraj/authflow/internal/kernel"
	"github.com/shashiranjanraj/authflow/internal/server"
	"github.com/shashiranjanraj/authflow/pkg/cache"
	"github.com/shashiranjanraj/authflow/pkg/event"
	"github.com/shashiranjanraj/authflow/pkg/schedule"
)

var (
	withIdentityFlag bool
	portFlag         string
)

// authflow serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sign-in and sign-up pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), kernel.Features{Pages: true, Identity: withIdentityFlag})
	},
}

// authflow identity
var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Serve the local identity service API only",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), kernel.Features{Identity: true})
	},
}

// authflow route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List the routes of `serve --with-identity`",
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, err := kernel.NewPages()
		if err != nil {
			return err
		}
		identityAPI := controllers.NewIdentityController(
			services.NewAccountService(repositories.NewMemoryUserRepository()), config.SessionTTL(), false)
		k := kernel.NewHTTPKernel(kernel.Components{Pages: pages, Identity: identityAPI})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&withIdentityFlag, "with-identity", false, "also mount the identity service API")
	for _, c := range []*cobra.Command{serveCmd, identityCmd} {
		c.Flags().StringVar(&portFlag, "port", "", "listen port (overrides APP_PORT)")
	}
}

func run(parent context.Context, f kernel.Features) error {
	if portFlag != "" {
		config.Set("APP_PORT", portFlag)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := kernel.Boot(ctx, f)
	if err != nil {
		return err
	}
	k := kernel.NewHTTPKernel(c)

	sched := schedule.New()
	if c.Limiter != nil {
		sched.Every(time.Minute).Name("rate-limit-sweep").WithoutOverlapping().Run(c.Limiter.Sweep)
	}
	if mem, ok := cache.Default().(*cache.MemoryStore); ok {
		sched.Every(time.Minute).Name("cache-sweep").WithoutOverlapping().Run(func() { mem.Sweep() })
	}

	err = server.Start(ctx, net.JoinHostPort("", config.AppPort()), k.Handler(), sched.Start)
	event.Wait()
	return err
}
