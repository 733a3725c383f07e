package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"dispatch-service/internal/adapters/repositories"
	"dispatch-service/internal/config"
	"dispatch-service/internal/platform/db"
	"dispatch-service/internal/platform/logging"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logLevel string
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Database maintenance and offline simulation for the dispatch service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, true)
			// stdout carries command output
			logrus.SetOutput(os.Stderr)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log verbosity level")

	root.AddCommand(
		newMigrateCmd(&cfg),
		newSeedCmd(&cfg),
		newHistoryCmd(&cfg),
		newSimulateCmd(&cfg),
	)
	return root
}

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cfg, func(conn *sqlx.DB) error {
				logrus.Info("initializing database schema")
				if err := repositories.InitSchema(conn); err != nil {
					return err
				}
				logrus.Info("schema ready")
				return nil
			})
		},
	}
}

func newSeedCmd(cfg *config.Config) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace drivers, routes and orders with a dataset file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cfg, func(conn *sqlx.DB) error {
				ctx := commandContext(cmd)
				if err := repositories.InitSchema(conn); err != nil {
					return err
				}

				summary, err := repositories.SeedFromJSON(ctx, conn, path)
				if err != nil {
					return err
				}
				logrus.WithFields(logrus.Fields{
					"path":    path,
					"drivers": summary.Drivers,
					"routes":  summary.Routes,
					"orders":  summary.Orders,
				}).Info("seeding complete")

				if cfg.AdminEmail != "" {
					if cfg.AdminPassword == "" {
						return errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
					}
					if err := repositories.SeedAdmin(ctx, conn, cfg.AdminEmail, cfg.AdminPassword); err != nil {
						return err
					}
					logrus.WithField("email", cfg.AdminEmail).Info("admin user ready")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", cfg.SeedPath, "Dataset file (JSON or YAML)")
	return cmd
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the most recent stored simulation results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cfg, func(conn *sqlx.DB) error {
				results, err := repositories.NewPostgresSimulationRepository(conn).ListResults(commandContext(cmd), limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), results)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of results")
	return cmd
}

func withDB(cfg *config.Config, fn func(conn *sqlx.DB) error) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(conn)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// commandContext returns cmd's context, or Background when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
