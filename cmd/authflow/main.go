// Command authflow drives the sign-in and sign-up flows from the terminal,
// serves the web pages, and runs the local identity service.
//
//	authflow signin --email ada@example.com --password secret
//	authflow signup --name Ada --email ada@example.com --password secret --role ADMIN
//	authflow serve --with-identity
//	authflow identity
//	authflow migrate
//	authflow route:list
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/authflow/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "authflow",
	Short:         "Credentials sign-in and sign-up flows",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if identityURLFlag != "" {
			config.Set("IDENTITY_URL", identityURLFlag)
		}
		return nil
	},
}

var identityURLFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&identityURLFlag, "identity-url", "", "identity service base URL (overrides IDENTITY_URL)")

	// Flows
	rootCmd.AddCommand(signinCmd)
	rootCmd.AddCommand(signupCmd)

	// Servers
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}
