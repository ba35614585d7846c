package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/config"
	"github.com/eykd/shelfmark/internal/fileio"
	"github.com/eykd/shelfmark/internal/history"
)

// InitIO handles I/O for the init command.
type InitIO interface {
	StatFile(path string) (bool, error)
	MkdirAll(path string) error
	WriteFileAtomic(path, content string) error
}

const emptyForest = "{\n  \"nodes\": []\n}\n"

// NewInitCmd creates the init subcommand.
func NewInitCmd(io InitIO) *cobra.Command {
	return newInitCmdWithGetCWD(io, os.Getwd)
}

func newInitCmdWithGetCWD(io InitIO, getwd func() (string, error)) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Initialize a shelf project in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(cmd, getwd)
			if err != nil {
				return err
			}

			cfg := config.Default()
			configPath := filepath.Join(project, config.FileName)

			configExists, err := io.StatFile(configPath)
			if err != nil {
				return fmt.Errorf("checking %s: %w", configPath, err)
			}
			if configExists && !force {
				return fmt.Errorf("%s already exists in %s; use --force to overwrite", config.FileName, project)
			}

			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			content := "# shelf project configuration\n" + string(data)
			if err := io.WriteFileAtomic(configPath, content); err != nil {
				return fmt.Errorf("writing %s: %w", config.FileName, err)
			}

			if err := io.MkdirAll(filepath.Join(project, cfg.DataDir)); err != nil {
				return fmt.Errorf("creating data directory: %w", err)
			}

			for _, kind := range []history.Kind{history.KindCategory, history.KindField} {
				path := cfg.ForestPath(project, kind)
				exists, err := io.StatFile(path)
				if err != nil {
					return fmt.Errorf("checking %s: %w", path, err)
				}
				if exists {
					continue
				}
				if err := io.WriteFileAtomic(path, emptyForest); err != nil {
					return fmt.Errorf("writing %s (partial init; re-run with --force to recover): %w", filepath.Base(path), err)
				}
			}

			if configExists {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: overwriting existing configuration")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized "+sanitizeText(project))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}

// fileInitIO implements InitIO using OS file I/O.
type fileInitIO struct{}

func newDefaultInitIO() *fileInitIO {
	return &fileInitIO{}
}

// StatFile returns true if the file at path exists, false if it does not.
// Returns an error only for unexpected OS errors.
func (f *fileInitIO) StatFile(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// MkdirAll creates path and any missing parents.
func (f *fileInitIO) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

// WriteFileAtomic writes content to path atomically via a temp file.
func (f *fileInitIO) WriteFileAtomic(path, content string) error {
	return fileio.WriteAtomic(path, ".init", []byte(content))
}
