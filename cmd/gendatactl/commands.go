package main

import (
	"fmt"
	"log/slog"

	"github.com/gendata/gendata-api/internal/config"
	"github.com/gendata/gendata-api/internal/database"
	"github.com/gendata/gendata-api/internal/services"
	"github.com/gendata/gendata-api/internal/store"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gendatactl",
		Short:        "Operator tasks for the GenData API database",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newInitDBCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := database.Connect(cfg); err != nil {
				return err
			}
			defer database.Close(database.DB)

			if err := database.Migrate(database.DB); err != nil {
				return fmt.Errorf("migrate failed: %w", err)
			}
			slog.Info("schema migrated")
			return nil
		},
	}
}

func newInitDBCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Migrate the schema and create the first admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if password == "" {
				password = cfg.AdminDefaultPassword
			}

			if err := database.Connect(cfg); err != nil {
				return err
			}
			defer database.Close(database.DB)

			if err := database.Migrate(database.DB); err != nil {
				return fmt.Errorf("migrate failed: %w", err)
			}

			users := services.NewUserService(store.NewUserRepository(database.DB), services.NewBcryptHasher())
			created, err := users.EnsureAdmin(cmd.Context(), password)
			if err != nil {
				return fmt.Errorf("create admin failed: %w", err)
			}
			if created {
				fmt.Fprintln(cmd.OutOrStdout(), "created admin account: login=admin")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "admin account already exists")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "admin password (defaults to ADMIN_DEFAULT_PASSWORD)")
	return cmd
}
