package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/tree"
)

// NewDropCmd creates the drop subcommand, which replays a drag gesture
// through the intent classifier.
func NewDropCmd(pio ProjectIO) *cobra.Command {
	var (
		source string
		target string
		g      tree.Gesture
	)

	cmd := &cobra.Command{
		Use:          "drop",
		Short:        "Drop --source onto --target using pointer geometry",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" || target == "" {
				return fmt.Errorf("--source and --target are required")
			}
			return withEditor(cmd, pio, func(ctx context.Context, ed editor) error {
				out, found, err := ed.Drop(ctx, source, target, g)
				if !found {
					if jsonFlag(cmd) {
						return writeJSON(cmd, out)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "No valid placement")
					return nil
				}
				return reportOutcome(cmd, out, err, fmt.Sprintf("No change (%s %s)", out.Intent.Type, sanitizeText(out.Intent.Anchor)))
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "id of the dragged node")
	cmd.Flags().StringVar(&target, "target", "", "id of the node under the pointer")
	cmd.Flags().Float64Var(&g.OffsetX, "dx", 0, "horizontal pointer travel since the drag started")
	cmd.Flags().Float64Var(&g.PointerY, "y", 0, "pointer y coordinate")
	cmd.Flags().Float64Var(&g.TargetTop, "top", 0, "top edge of the target row")
	cmd.Flags().Float64Var(&g.TargetHeight, "height", 0, "height of the target row")

	return cmd
}
