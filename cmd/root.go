// Package cmd implements the shelf CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
)

// NewRootCmd creates the root shelf command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithIO(newDefaultProjectIO(), newDefaultInitIO())
}

func newRootCmdWithIO(pio ProjectIO, initIO InitIO) *cobra.Command {
	root := &cobra.Command{
		Use:               "shelf",
		Short:             "shelf - edit product category and field trees",
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
		RunE:              rootRunE,
	}
	root.PersistentFlags().String("project", "", "project directory (default: current directory)")
	root.PersistentFlags().String("kind", string(history.KindCategory), "tree to operate on: category or field")
	root.PersistentFlags().Bool("json", false, "output results as JSON")
	root.PersistentFlags().BoolP("verbose", "v", false, "log persistence details to stderr")

	root.AddCommand(NewInitCmd(initIO))
	root.AddCommand(NewShowCmd(pio))
	root.AddCommand(NewCreateCmd(pio))
	root.AddCommand(NewRenameCmd(pio))
	root.AddCommand(NewDeleteCmd(pio))
	root.AddCommand(NewMoveCmd(pio))
	root.AddCommand(NewDropCmd(pio))
	root.AddCommand(NewSetRequiredCmd(pio))
	root.AddCommand(NewSetTypeCmd(pio))
	root.AddCommand(NewHistoryCmd(pio))
	root.AddCommand(NewCheckCmd(pio))
	root.AddCommand(NewExportCmd(pio))
	root.AddCommand(NewImportLegacyCmd(pio))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

// setupLogging installs the process logger: warnings only, or debug
// output with --verbose.
func setupLogging(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}

// resolveProject returns the --project directory, or the working directory
// when the flag is empty.
func resolveProject(cmd *cobra.Command, getwd func() (string, error)) (string, error) {
	project, _ := cmd.Flags().GetString("project")
	if project != "" {
		return project, nil
	}
	if getwd == nil {
		getwd = os.Getwd
	}
	cwd, err := getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return cwd, nil
}

// kindFlag parses the persistent --kind flag. Commands built outside the
// root command have no such flag and operate on categories.
func kindFlag(cmd *cobra.Command) (history.Kind, error) {
	s, err := cmd.Flags().GetString("kind")
	if err != nil || s == "" {
		return history.KindCategory, nil
	}
	return history.ParseKind(s)
}

func jsonFlag(cmd *cobra.Command) bool {
	b, _ := cmd.Flags().GetBool("json")
	return b
}

func writeJSON(cmd *cobra.Command, v any) error {
	return encodeIndented(cmd.OutOrStdout(), v)
}

func encodeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// printProblems writes each problem to stderr in human-readable form.
func printProblems(cmd *cobra.Command, problems []tree.Problem) {
	for _, p := range problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s)\n", p.Severity, sanitizeText(p.Message), p.Code)
	}
}
