package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRenameCmd creates the rename subcommand.
func NewRenameCmd(pio ProjectIO) *cobra.Command {
	var (
		id   string
		name string
	)

	cmd := &cobra.Command{
		Use:          "rename",
		Short:        "Rename a node",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			return withEditor(cmd, pio, func(ctx context.Context, ed editor) error {
				out, err := ed.Rename(ctx, id, name)
				return reportOutcome(cmd, out, err, "Name unchanged")
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "id of the node to rename")
	cmd.Flags().StringVar(&name, "name", "", "new name")

	return cmd
}
