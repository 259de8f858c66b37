package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/authflow/database/seeders"
	"github.com/shashiranjanraj/authflow/pkg/database"
	"github.com/shashiranjanraj/authflow/pkg/migration"

	// Register schema migrations.
	_ "github.com/shashiranjanraj/authflow/database/migrations"
)

// authflow migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Connect(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
		return migration.New(database.DB, cmd.OutOrStdout()).Run()
	},
}

// authflow migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Connect(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
		return migration.New(database.DB, cmd.OutOrStdout()).Rollback()
	},
}

// authflow migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Connect(); err != nil {
			return err
		}
		return migration.New(database.DB, cmd.OutOrStdout()).Status()
	},
}

// authflow seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Connect(); err != nil {
			return err
		}
		if err := migration.New(database.DB, cmd.OutOrStdout()).Run(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(cmd.Context(), database.DB, cmd.OutOrStdout())
	},
}
