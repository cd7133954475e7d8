package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, *configPath)
		},
	}
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, l, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("progress_backend", cfg.Progress.Backend),
		slog.String("catalog_source", cfg.Catalog.Source))

	app, err := newApplication(cmd.Context(), cfg, l)
	if err != nil {
		l.Error("failed to initialize application", slog.String("error", err.Error()))
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(cmd.Context())
}
