package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vortex07x/steamsurf/internal/config"
	"github.com/vortex07x/steamsurf/internal/middleware"
	"github.com/vortex07x/steamsurf/internal/repository"
	"github.com/vortex07x/steamsurf/internal/service"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete view events older than the retention window and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load(envFile)
		middleware.InitLogger(cfg.LogLevel, "steamsurf-cleanup")

		pool, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		res, err := service.NewCleanupService(repository.NewInteractionRepo(pool), cfg.ViewRetention).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d view records older than %s\n", res.DeletedCount, res.Cutoff.Format("2006-01-02 15:04:05Z07:00"))
		return nil
	},
}
