package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-rings/internal/catalog"
	"github.com/phrazzld/scry-rings/internal/domain"
)

func newCheckRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-rules <stack-file>...",
		Short: "Validate stack files offline",
		Long: "Parse each stack file and check every question's answers and match rule, " +
			"including that regex patterns compile. Nothing is written.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				stacks, err := catalog.LoadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %v\n", err)
					continue
				}
				printSummary(cmd.OutOrStdout(), path, stacks)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d stack file(s) failed validation", failed, len(args))
			}
			return nil
		},
	}
}

func printSummary(w io.Writer, path string, stacks []*domain.Stack) {
	questions := 0
	modes := map[domain.MatchMode]int{}
	for _, s := range stacks {
		questions += len(s.Questions)
		for _, q := range s.Questions {
			modes[q.Rule.Mode]++
		}
	}
	fmt.Fprintf(w, "ok   %s: %d stack(s), %d question(s) (exact %d, normalized %d, regex %d)\n",
		path, len(stacks), questions,
		modes[domain.MatchModeExact], modes[domain.MatchModeNormalized], modes[domain.MatchModeRegex])
}
