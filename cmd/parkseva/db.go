package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parkseva/internal/config"
	"github.com/iliyamo/parkseva/internal/database"
	"github.com/iliyamo/parkseva/internal/logger"
)

func initLogging(cfg config.Config) {
	logger.Init(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, JSON: cfg.IsProd()})
}

func newMigrateCmd() *cobra.Command {
	var optional bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			initLogging(cfg)

			db, err := database.Open(cfg)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := database.Migrate(ctx, db, optional); err != nil {
				return err
			}
			logger.InfoLogger.WithField("optional_columns", optional).Info("migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&optional, "optional-columns", true, "add the payment_mode and transaction_id booking columns")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var opts database.SeedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo profiles, three Pune lots and their slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			initLogging(cfg)
			opts.BcryptCost = cfg.BcryptCost
			// .env is only loaded by config.Load, after flag defaults were set.
			if !cmd.Flags().Changed("user-password") {
				opts.UserPassword = envOr("SEED_USER_PASSWORD", opts.UserPassword)
			}
			if !cmd.Flags().Changed("admin-password") {
				opts.AdminPassword = envOr("SEED_ADMIN_PASSWORD", opts.AdminPassword)
			}

			db, err := database.Open(cfg)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := database.Seed(ctx, db, opts); err != nil {
				return err
			}
			logger.InfoLogger.Info("seed data inserted")
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.UserPassword, "user-password", "password123", "password of the demo user")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "admin12345", "password of the demo admin")
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
