package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/history"
)

// NewHistoryCmd creates the history subcommand.
func NewHistoryCmd(pio ProjectIO) *cobra.Command {
	var (
		limit  int
		nodeID string
	)

	cmd := &cobra.Command{
		Use:          "history",
		Short:        "List recorded changes, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, pio, nil)
			if err != nil {
				return err
			}
			log, closeLog, err := pio.OpenHistory(ws.cfg, ws.dir)
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			defer func() { _ = closeLog() }()

			entries, err := log.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}

			filter := history.Filter{Subject: nodeID, Limit: limit}
			// Both trees share one log; --kind narrows it only when given.
			if cmd.Flags().Changed("kind") {
				filter.Kind = ws.kind
			}
			entries = filter.Apply(entries)

			if jsonFlag(cmd) {
				return writeJSON(cmd, entries)
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %-8s %s\n",
					e.Timestamp, e.Action, e.Kind, sanitizeText(e.Details.Message))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many entries (0: all)")
	cmd.Flags().StringVar(&nodeID, "node", "", "only entries about this node id")

	return cmd
}
