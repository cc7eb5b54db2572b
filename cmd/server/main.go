package main

import (
	"os"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "steamsurf",
	Short: "SteamSurf video catalog API",
	// Running without a subcommand starts the server.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional env file loaded before the process environment")
	rootCmd.AddCommand(serveCmd, migrateCmd, cleanupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
