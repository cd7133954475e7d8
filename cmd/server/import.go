package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-rings/internal/catalog"
	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/platform/postgres"
	"github.com/phrazzld/scry-rings/internal/store"
)

func newImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <stack-file>",
		Short: "Import a YAML stack file into the Postgres question catalog",
		Long: "Validate every stack in the file and write it to Postgres. " +
			"An existing stack with the same id has its question set replaced.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stacks, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}

			cfg, l, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("database.url must be configured to import stacks")
			}
			db, err := setupAppDatabase(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			n, err := importStacks(cmd.Context(), postgres.NewPostgresQuestionStore(db, l), stacks, l)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d stack(s) from %s\n", n, args[0])
			return nil
		},
	}
}

// importStacks saves each stack in order and stops at the first failure.
// Stacks saved before the failure stay saved.
func importStacks(ctx context.Context, w store.StackWriter, stacks []*domain.Stack, l *slog.Logger) (int, error) {
	for i, stack := range stacks {
		if err := w.SaveStack(ctx, stack); err != nil {
			return i, fmt.Errorf("import stack %q: %w", stack.ID, err)
		}
		l.Info("stack imported",
			slog.String("stack_id", stack.ID),
			slog.Int("question_count", len(stack.Questions)))
	}
	return len(stacks), nil
}
