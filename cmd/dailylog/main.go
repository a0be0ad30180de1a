// Package main is the entry point for the dailylog service.
//
// COMMANDS:
//
//	dailylog serve              → run the HTTP API (default)
//	dailylog migrate            → apply database migrations and exit
//	dailylog import FILE -u ME  → merge a legacy logs.json file into a user's journal
//	dailylog test-email         → send one test notification through SMTP
//
// main stays minimal: it parses the command line, loads configuration and
// builds a logger. Everything else lives in internal/.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/dailylog/internal/config"
	"github.com/sakif/dailylog/internal/logger"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "dailylog",
		Short:         "Daily learning journal service",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running the bare binary starts the server, like the old cmd/server.
		RunE: runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (overrides CONFIG_PATH)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newImportCmd(),
		newTestEmailCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the process logger.
//
// The --config flag is applied through CONFIG_PATH so config.Load keeps a
// single source of truth for where the file comes from.
func setup() (*config.Config, *slog.Logger, error) {
	if configPath != "" {
		if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
			return nil, nil, fmt.Errorf("setting CONFIG_PATH: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(os.Stdout, cfg.Log)
	slog.SetDefault(log)
	return cfg, log, nil
}
