// Package config loads the project configuration file (.shelf.yml) with
// environment overrides, and writes the default file for new projects.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
)

// FileName is the configuration file looked up in the project directory.
const FileName = ".shelf.yml"

// EnvPrefix prefixes environment overrides: SHELF_ACTOR,
// SHELF_CATEGORIES_MAX_DEPTH, SHELF_PERSISTENCE_STRICT, ...
const EnvPrefix = "SHELF"

// History backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is the project configuration.
type Config struct {
	DataDir         string            `mapstructure:"data_dir" yaml:"data_dir"`
	Actor           string            `mapstructure:"actor" yaml:"actor"`
	DanglingParents string            `mapstructure:"dangling_parents" yaml:"dangling_parents"`
	History         HistoryConfig     `mapstructure:"history" yaml:"history"`
	Categories      TreeConfig        `mapstructure:"categories" yaml:"categories"`
	Fields          TreeConfig        `mapstructure:"fields" yaml:"fields"`
	Drag            DragConfig        `mapstructure:"drag" yaml:"drag"`
	Persistence     PersistenceConfig `mapstructure:"persistence" yaml:"persistence"`
}

// HistoryConfig selects the history log backend.
type HistoryConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// TreeConfig holds per-tree limits.
type TreeConfig struct {
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

// DragConfig holds the drag classifier thresholds in pixels.
type DragConfig struct {
	UnparentThreshold float64 `mapstructure:"unparent_threshold" yaml:"unparent_threshold"`
	ChildThreshold    float64 `mapstructure:"child_threshold" yaml:"child_threshold"`
}

// PersistenceConfig selects optimistic or strict persistence.
type PersistenceConfig struct {
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DataDir:         "data",
		Actor:           "admin",
		DanglingParents: "root",
		History:         HistoryConfig{Backend: BackendJSON},
		Categories:      TreeConfig{MaxDepth: 5},
		Fields:          TreeConfig{MaxDepth: 3},
		Drag: DragConfig{
			UnparentThreshold: tree.DefaultUnparentThreshold,
			ChildThreshold:    tree.DefaultChildThreshold,
		},
	}
}

// Load reads FileName from dir, applies SHELF_* environment overrides on top
// of the defaults and validates the result. A missing file is not an error.
func Load(dir string) (Config, error) {
	def := Default()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("actor", def.Actor)
	v.SetDefault("dangling_parents", def.DanglingParents)
	v.SetDefault("history.backend", def.History.Backend)
	v.SetDefault("categories.max_depth", def.Categories.MaxDepth)
	v.SetDefault("fields.max_depth", def.Fields.MaxDepth)
	v.SetDefault("drag.unparent_threshold", def.Drag.UnparentThreshold)
	v.SetDefault("drag.child_threshold", def.Drag.ChildThreshold)
	v.SetDefault("persistence.strict", def.Persistence.Strict)

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("checking %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Categories.MaxDepth < 1 {
		return fmt.Errorf("categories.max_depth must be at least 1, got %d", c.Categories.MaxDepth)
	}
	if c.Fields.MaxDepth < 1 {
		return fmt.Errorf("fields.max_depth must be at least 1, got %d", c.Fields.MaxDepth)
	}
	if c.Drag.UnparentThreshold >= 0 {
		return fmt.Errorf("drag.unparent_threshold must be negative, got %v", c.Drag.UnparentThreshold)
	}
	if c.Drag.ChildThreshold <= 0 {
		return fmt.Errorf("drag.child_threshold must be positive, got %v", c.Drag.ChildThreshold)
	}
	if _, err := tree.ParseDanglingPolicy(c.DanglingParents); err != nil {
		return err
	}
	switch c.History.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("history.backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.History.Backend)
	}
	return nil
}

// MaxDepth returns the depth limit of kind.
func (c Config) MaxDepth(kind history.Kind) int {
	if kind == history.KindField {
		return c.Fields.MaxDepth
	}
	return c.Categories.MaxDepth
}

// DragConfigFor returns the classifier parameters for kind.
func (c Config) DragConfigFor(kind history.Kind) tree.DragConfig {
	return tree.DragConfig{
		MaxDepth:          c.MaxDepth(kind),
		UnparentThreshold: c.Drag.UnparentThreshold,
		ChildThreshold:    c.Drag.ChildThreshold,
	}
}

// DanglingPolicy returns the rebuild policy. Validate has already rejected
// unknown spellings.
func (c Config) DanglingPolicy() tree.DanglingPolicy {
	p, _ := tree.ParseDanglingPolicy(c.DanglingParents)
	return p
}

// ForestPath returns the JSON file holding kind's forest under dir.
func (c Config) ForestPath(dir string, kind history.Kind) string {
	name := "categories.json"
	if kind == history.KindField {
		name = "fields.json"
	}
	return filepath.Join(dir, c.DataDir, name)
}

// HistoryPath returns the history log location under dir.
func (c Config) HistoryPath(dir string) string {
	if c.History.Backend == BackendSQLite {
		return filepath.Join(dir, c.DataDir, "history.db")
	}
	return filepath.Join(dir, c.DataDir, "history.json")
}

// Marshal renders c as YAML for a new project file.
func Marshal(c Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return data, nil
}
