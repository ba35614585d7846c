package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewExportCmd creates the export subcommand.
func NewExportCmd(pio ProjectIO) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Write the tree to an Excel workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			return withEditor(cmd, pio, func(_ context.Context, ed editor) error {
				var buf bytes.Buffer
				if err := ed.Export(&buf); err != nil {
					return fmt.Errorf("exporting: %w", err)
				}
				if err := pio.WriteFileAtomic(out, buf.Bytes()); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Exported to "+sanitizeText(out))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "path of the .xlsx file to write")

	return cmd
}
