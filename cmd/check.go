package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/catalog"
	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
)

// NewCheckCmd creates the check subcommand, which validates the stored tree
// without repairing it.
func NewCheckCmd(pio ProjectIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check",
		Short:        "Report dangling parents, duplicate ids, cycles, depth violations and unknown field types",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, pio, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var problems []tree.Problem
			if ws.kind == history.KindField {
				problems, err = validateStored(ctx, ws.fields(), ws.cfg.MaxDepth(ws.kind), catalog.ValidateFields)
			} else {
				problems, err = validateStored(ctx, ws.categories(), ws.cfg.MaxDepth(ws.kind), nil)
			}
			if err != nil {
				return fmt.Errorf("reading %s tree: %w", ws.kind, err)
			}
			if problems == nil {
				problems = []tree.Problem{}
			}

			if jsonFlag(cmd) {
				if err := writeJSON(cmd, problems); err != nil {
					return err
				}
			} else {
				printProblems(cmd, problems)
			}

			if len(problems) > 0 {
				return fmt.Errorf("%s tree has %d problem(s)", ws.kind, len(problems))
			}
			if !jsonFlag(cmd) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s tree OK\n", ws.kind)
			}
			return nil
		},
	}

	return cmd
}
