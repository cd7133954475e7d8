package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-rings/internal/config"
	"github.com/phrazzld/scry-rings/internal/platform/logger"
)

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "scry-server",
		Short:         "Answer evaluation and progress ring service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("SCRY_CONFIG"),
		"path to a YAML config file (default: ./config.yaml when present)")

	cmd.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newImportCmd(&configPath),
		newCheckRulesCmd(),
	)
	return cmd
}

// loadConfig loads configuration and installs the configured logger as the
// process default.
func loadConfig(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, l, nil
}
