package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/catalog"
	"github.com/eykd/shelfmark/internal/tree"
	"github.com/eykd/shelfmark/internal/tree/ops"
)

// NewSetRequiredCmd creates the set-required subcommand. It always edits the
// field tree.
func NewSetRequiredCmd(pio ProjectIO) *cobra.Command {
	var (
		id    string
		value string
	)

	cmd := &cobra.Command{
		Use:          "set-required",
		Short:        "Mark a field as required or optional",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			required, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("--value must be true or false, got %q", value)
			}
			ws, err := openWorkspace(cmd, pio, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			sess, closeLog, err := ws.openFieldSession(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			engine := sess.Engine()
			res, err := sess.Apply(ctx, func(f tree.Forest[catalog.Field]) (ops.Result[catalog.Field], error) {
				return catalog.SetRequired(engine, f, id, required)
			})
			return reportOutcome(cmd, outcomeOf(res), err, "No change")
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "id of the field")
	cmd.Flags().StringVar(&value, "value", "", "true or false")

	return cmd
}

// NewSetTypeCmd creates the set-type subcommand. It always edits the field
// tree.
func NewSetTypeCmd(pio ProjectIO) *cobra.Command {
	var (
		id       string
		typeName string
	)

	cmd := &cobra.Command{
		Use:          "set-type",
		Short:        "Change the data type of a field",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			ft, err := catalog.ParseFieldType(typeName)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd, pio, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			sess, closeLog, err := ws.openFieldSession(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			engine := sess.Engine()
			res, err := sess.Apply(ctx, func(f tree.Forest[catalog.Field]) (ops.Result[catalog.Field], error) {
				return catalog.SetType(engine, f, id, ft)
			})
			return reportOutcome(cmd, outcomeOf(res), err, "No change")
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "id of the field")
	cmd.Flags().StringVar(&typeName, "type", "", fmt.Sprintf("one of %v", catalog.FieldTypes))

	return cmd
}
