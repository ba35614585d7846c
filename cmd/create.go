package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/tree"
)

// NewCreateCmd creates the create subcommand.
func NewCreateCmd(pio ProjectIO) *cobra.Command {
	var (
		name   string
		parent string
	)

	cmd := &cobra.Command{
		Use:          "create",
		Short:        "Create a node as the last root or the last child of --parent",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			return withEditor(cmd, pio, func(ctx context.Context, ed editor) error {
				out, err := ed.Create(ctx, name, parent)
				return reportOutcome(cmd, out, err, "No change")
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the new node")
	cmd.Flags().StringVar(&parent, "parent", tree.Root, "parent id (default: create a root)")

	return cmd
}
