package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/tree"
)

// NewMoveCmd creates the move subcommand.
func NewMoveCmd(pio ProjectIO) *cobra.Command {
	var (
		source string
		before string
		after  string
		into   string
		toRoot bool
	)

	cmd := &cobra.Command{
		Use:          "move",
		Short:        "Move a node and its subtree",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				return fmt.Errorf("--source is required")
			}
			intent, err := moveIntent(before, after, into, toRoot)
			if err != nil {
				return err
			}
			return withEditor(cmd, pio, func(ctx context.Context, ed editor) error {
				if !ed.Has(source) {
					return fmt.Errorf("node %q: %w", source, tree.ErrNotFound)
				}
				if intent.Anchor != tree.Root && !ed.Has(intent.Anchor) {
					return fmt.Errorf("node %q: %w", intent.Anchor, tree.ErrNotFound)
				}
				out, err := ed.Move(ctx, source, intent)
				return reportOutcome(cmd, out, err, "No change: the placement is invalid or leaves the node where it is")
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "id of the node to move")
	cmd.Flags().StringVar(&before, "before", "", "place immediately before this node")
	cmd.Flags().StringVar(&after, "after", "", "place immediately after this node")
	cmd.Flags().StringVar(&into, "into", "", "append as the last child of this node")
	cmd.Flags().BoolVar(&toRoot, "root", false, "detach to the top level")

	return cmd
}

// moveIntent builds the intent named by exactly one placement flag. A
// --root move carries no anchor.
func moveIntent(before, after, into string, toRoot bool) (tree.Intent, error) {
	var intents []tree.Intent
	if before != "" {
		intents = append(intents, tree.Intent{Type: tree.IntentBefore, Anchor: before})
	}
	if after != "" {
		intents = append(intents, tree.Intent{Type: tree.IntentAfter, Anchor: after})
	}
	if into != "" {
		intents = append(intents, tree.Intent{Type: tree.IntentChild, Anchor: into})
	}
	if toRoot {
		intents = append(intents, tree.Intent{Type: tree.IntentRoot})
	}
	if len(intents) != 1 {
		return tree.Intent{}, fmt.Errorf("exactly one of --before, --after, --into or --root is required")
	}
	return intents[0], nil
}
