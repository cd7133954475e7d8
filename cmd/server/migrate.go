package main

import (
	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-rings/internal/platform/postgres"
)

var migrateCommands = []string{"up", "down", "status", "version"}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Run database migrations",
		Long:      "Apply, roll back or inspect the embedded SQL migrations. Defaults to up.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrateCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, l, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := setupAppDatabase(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, command, l)
		},
	}
}
