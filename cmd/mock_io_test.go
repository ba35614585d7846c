package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/eykd/shelfmark/internal/catalog"
	"github.com/eykd/shelfmark/internal/config"
	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/store"
	"github.com/eykd/shelfmark/internal/tree"
)

// memForest is an in-memory forest store. When flat is set, LoadFlat
// returns it verbatim, standing in for a file with structural defects.
type memForest[P any] struct {
	forest  tree.Forest[P]
	flat    []tree.FlatNode[P]
	saves   int
	saveErr error
}

func (m *memForest[P]) Load(context.Context) (tree.Forest[P], error) {
	if m.forest == nil {
		return tree.Forest[P]{}, nil
	}
	return tree.Clone(m.forest), nil
}

func (m *memForest[P]) Save(_ context.Context, f tree.Forest[P]) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.forest = tree.Clone(f)
	return nil
}

func (m *memForest[P]) LoadFlat(ctx context.Context) ([]tree.FlatNode[P], error) {
	if m.flat != nil {
		return m.flat, nil
	}
	f, err := m.Load(ctx)
	return tree.Flatten(f), err
}

type memHistory struct {
	entries []history.Entry
}

func (h *memHistory) Append(_ context.Context, e history.Entry) error {
	h.entries = append([]history.Entry{e}, h.entries...)
	return nil
}

func (h *memHistory) Load(context.Context) ([]history.Entry, error) {
	return h.entries, nil
}

// mockProjectIO is a test double for ProjectIO.
type mockProjectIO struct {
	cfg        config.Config
	cfgErr     error
	categories *memForest[catalog.Category]
	fields     *memForest[catalog.Field]
	log        *memHistory
	files      map[string][]byte
	written    map[string][]byte
	closed     int
}

func newMockProjectIO() *mockProjectIO {
	return &mockProjectIO{
		cfg:        config.Default(),
		categories: &memForest[catalog.Category]{},
		fields:     &memForest[catalog.Field]{},
		log:        &memHistory{},
		files:      map[string][]byte{},
		written:    map[string][]byte{},
	}
}

func (m *mockProjectIO) LoadConfig(string) (config.Config, error) {
	return m.cfg, m.cfgErr
}

func (m *mockProjectIO) CategoryStore(string, tree.DanglingPolicy) store.ForestStore[catalog.Category] {
	return m.categories
}

func (m *mockProjectIO) FieldStore(string, tree.DanglingPolicy) store.ForestStore[catalog.Field] {
	return m.fields
}

func (m *mockProjectIO) OpenHistory(config.Config, string) (history.Log, func() error, error) {
	return m.log, func() error { m.closed++; return nil }, nil
}

func (m *mockProjectIO) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *mockProjectIO) WriteFileAtomic(path string, data []byte) error {
	m.written[path] = data
	return nil
}

// mockInitIO is a test double for InitIO.
type mockInitIO struct {
	existing map[string]bool
	statErr  error
	writeErr error
	dirs     []string
	written  map[string]string
}

func newMockInitIO() *mockInitIO {
	return &mockInitIO{existing: map[string]bool{}, written: map[string]string{}}
}

func (m *mockInitIO) StatFile(path string) (bool, error) {
	return m.existing[path], m.statErr
}

func (m *mockInitIO) MkdirAll(path string) error {
	m.dirs = append(m.dirs, path)
	return nil
}

func (m *mockInitIO) WriteFileAtomic(path, content string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written[path] = content
	return nil
}

// runShelf executes the root command against pio with --project /proj.
func runShelf(t *testing.T, pio ProjectIO, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmdWithIO(pio, newMockInitIO())
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(append([]string{"--project", "/proj"}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// seedCategories stores A(B(C)),D.
func seedCategories(m *mockProjectIO) {
	m.categories.forest = tree.Rebuild([]tree.FlatNode[catalog.Category]{
		{ID: "A", Name: "Clothing"},
		{ID: "B", Name: "Shirts", ParentID: "A"},
		{ID: "C", Name: "Polo", ParentID: "B"},
		{ID: "D", Name: "Shoes"},
	})
}

var errBoom = errors.New("boom")
