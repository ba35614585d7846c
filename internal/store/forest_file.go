// Package store persists forests as JSON documents and couples a forest, its
// mutation engine and a history log into an editing session.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/eykd/shelfmark/internal/fileio"
	"github.com/eykd/shelfmark/internal/tree"
)

// ForestStore loads and saves one forest.
type ForestStore[P any] interface {
	Load(ctx context.Context) (tree.Forest[P], error)
	Save(ctx context.Context, forest tree.Forest[P]) error
}

// FlatLoader is implemented by stores that can return their nodes as stored,
// before a rebuild repairs dangling parents, duplicates or cycles.
type FlatLoader[P any] interface {
	LoadFlat(ctx context.Context) ([]tree.FlatNode[P], error)
}

// document is the on-disk shape: {"nodes": [...]}.
type document[P any] struct {
	Nodes []*tree.Node[P] `json:"nodes"`
}

// ForestFile stores a forest in a JSON file. Save always writes the nested
// form; Load also accepts the flat form (nodes with parentId and no
// children) and normalizes either through a rebuild under Policy.
type ForestFile[P any] struct {
	Path   string
	Policy tree.DanglingPolicy
	Logger *slog.Logger
}

// NewForestFile returns a store at path with the given dangling policy.
func NewForestFile[P any](path string, policy tree.DanglingPolicy, logger *slog.Logger) *ForestFile[P] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForestFile[P]{Path: path, Policy: policy, Logger: logger}
}

// Load reads the forest. A missing or empty file is an empty forest.
func (f *ForestFile[P]) Load(_ context.Context) (tree.Forest[P], error) {
	data, err := fileio.ReadIfExists(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	if len(data) == 0 {
		return tree.Forest[P]{}, nil
	}
	return decodeForest[P](data, f.Policy)
}

// LoadFlat reads the nodes in stored order without rebuilding them. Nested
// documents are flattened by structure; flat documents keep their stored
// parentId values.
func (f *ForestFile[P]) LoadFlat(_ context.Context) ([]tree.FlatNode[P], error) {
	data, err := fileio.ReadIfExists(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	if len(data) == 0 {
		return []tree.FlatNode[P]{}, nil
	}
	return decodeFlat[P](data)
}

// Save writes forest atomically in nested form.
func (f *ForestFile[P]) Save(_ context.Context, forest tree.Forest[P]) error {
	data, err := encodeForest(forest)
	if err != nil {
		return err
	}
	if err := fileio.WriteAtomic(f.Path, ".forest", data); err != nil {
		return fmt.Errorf("saving %s: %w", f.Path, err)
	}
	f.logger().Debug("forest saved", "path", f.Path, "roots", len(forest))
	return nil
}

func (f *ForestFile[P]) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

func encodeForest[P any](forest tree.Forest[P]) ([]byte, error) {
	nodes := []*tree.Node[P](forest)
	if nodes == nil {
		nodes = []*tree.Node[P]{}
	}
	data, err := json.MarshalIndent(document[P]{Nodes: nodes}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding forest: %w", err)
	}
	return append(data, '\n'), nil
}

// decodeForest reads a document in either form and rebuilds it under policy.
func decodeForest[P any](data []byte, policy tree.DanglingPolicy) (tree.Forest[P], error) {
	flat, err := decodeFlat[P](data)
	if err != nil {
		return nil, err
	}
	forest, err := tree.RebuildWith(flat, policy)
	if err != nil {
		return nil, fmt.Errorf("rebuilding forest: %w", err)
	}
	return forest, nil
}

// decodeFlat reads a document in either form. A document is nested when
// any node has children; otherwise the stored parentId values are trusted.
func decodeFlat[P any](data []byte) ([]tree.FlatNode[P], error) {
	var doc document[P]
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing forest: %w", err)
	}

	nested := false
	for _, n := range doc.Nodes {
		if n != nil && len(n.Children) > 0 {
			nested = true
			break
		}
	}

	var flat []tree.FlatNode[P]
	if nested {
		flat = tree.Flatten(tree.Forest[P](doc.Nodes))
	} else {
		flat = make([]tree.FlatNode[P], 0, len(doc.Nodes))
		for _, n := range doc.Nodes {
			if n != nil {
				flat = append(flat, n.Flat())
			}
		}
	}
	return flat, nil
}
