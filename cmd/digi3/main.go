// Package main is the digi3 entry point: HTTP server plus admin commands.
package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"digi3/internal/app"
	"digi3/internal/config"
	"digi3/internal/logging"
	"digi3/internal/repositories"
)

const appName = "digi3"

// @title        Digi3 API
// @version      1.0
// @description  Gestion de projets et tableau des tâches.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Project and task board server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file path (YAML)")

	cmd.AddCommand(serveCmd(&configPath), migrateCmd(&configPath), createAdminCmd(&configPath))
	return cmd
}

func load(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(*configPath)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), cfg)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(*configPath)
			if err != nil {
				return err
			}
			db, err := app.OpenDB(cmd.Context(), cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repositories.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("[migrate][ok]")
			return nil
		},
	}
}

func createAdminCmd(configPath *string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := app.OpenDB(ctx, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			svcs, err := app.NewServices(cfg, db)
			if err != nil {
				return err
			}
			u, err := svcs.Users.CreateAdmin(ctx, email, password)
			if err != nil {
				return err
			}
			log.WithField("user_id", u.ID).Infof("[admin][create][ok] %s", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Administrator email")
	cmd.Flags().StringVar(&password, "password", "", "Administrator password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
