package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewShowCmd creates the show subcommand.
func NewShowCmd(pio ProjectIO) *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:          "show",
		Short:        "Print the tree",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd, pio, func(_ context.Context, ed editor) error {
				if jsonFlag(cmd) {
					return ed.WriteJSON(cmd.OutOrStdout(), flat)
				}
				return ed.WriteTree(cmd.OutOrStdout(), flat)
			})
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "list nodes in flat form with their parent ids")

	return cmd
}
