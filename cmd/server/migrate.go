package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vortex07x/steamsurf/internal/config"
	"github.com/vortex07x/steamsurf/internal/db"
	"github.com/vortex07x/steamsurf/internal/middleware"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load(envFile)
		middleware.InitLogger(cfg.LogLevel, "steamsurf-migrate")

		pool, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		pool.Close()
		log.Info().Msg("schema up to date")
		return nil
	},
}

// openDatabase connects and applies the embedded schema.
func openDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pool, nil
}
