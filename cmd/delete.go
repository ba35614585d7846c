package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd creates the delete subcommand.
func NewDeleteCmd(pio ProjectIO) *cobra.Command {
	var (
		id  string
		yes bool
	)

	cmd := &cobra.Command{
		Use:          "delete",
		Short:        "Delete a node and everything below it",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			if !yes {
				return fmt.Errorf("delete removes %s and its whole subtree; pass --yes to confirm", sanitizeText(id))
			}
			return withEditor(cmd, pio, func(ctx context.Context, ed editor) error {
				out, err := ed.Delete(ctx, id)
				return reportOutcome(cmd, out, err, "No change")
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "id of the node to delete")
	cmd.Flags().BoolVar(&yes, "yes", false, "Required confirmation flag")

	return cmd
}
