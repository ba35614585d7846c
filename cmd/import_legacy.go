package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/catalog"
	"github.com/eykd/shelfmark/internal/tree"
	"github.com/eykd/shelfmark/internal/tree/ops"
)

// NewImportLegacyCmd creates the import-legacy subcommand, which loads a
// "categorias" document produced by the ingestion pipeline into the
// category tree.
func NewImportLegacyCmd(pio ProjectIO) *cobra.Command {
	return newImportLegacyCmd(pio, ops.UUIDGenerator{}, time.Now)
}

func newImportLegacyCmd(pio ProjectIO, ids ops.IDGenerator, now func() time.Time) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:          "import-legacy <file>",
		Short:        "Import a legacy categorias JSON file into the category tree",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, pio, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			data, err := pio.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			imported, err := catalog.ImportLegacy(data, ids, now())
			if err != nil {
				return err
			}

			forests := ws.categories()
			merged := imported
			if !replace {
				existing, err := forests.Load(ctx)
				if err != nil {
					return fmt.Errorf("loading categories: %w", err)
				}
				merged = append(tree.Clone(existing), imported...)
			}
			if problems := tree.Validate(tree.Flatten(merged), ws.cfg.Categories.MaxDepth); len(problems) > 0 {
				printProblems(cmd, problems)
				return fmt.Errorf("imported categories violate the tree limits; nothing was written")
			}
			if err := forests.Save(ctx, merged); err != nil {
				return err
			}

			count := len(tree.Flatten(imported))
			if jsonFlag(cmd) {
				return writeJSON(cmd, map[string]any{"imported": count, "replaced": replace})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d categories from %s\n", count, sanitizeText(args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace the existing category tree instead of appending to it")

	return cmd
}
