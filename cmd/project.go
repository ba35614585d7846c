package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/shelfmark/internal/catalog"
	"github.com/eykd/shelfmark/internal/config"
	"github.com/eykd/shelfmark/internal/fileio"
	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/store"
	"github.com/eykd/shelfmark/internal/tree"
	"github.com/eykd/shelfmark/internal/tree/ops"
)

// ProjectIO opens the configuration and stores of a project directory.
type ProjectIO interface {
	LoadConfig(dir string) (config.Config, error)
	CategoryStore(path string, policy tree.DanglingPolicy) store.ForestStore[catalog.Category]
	FieldStore(path string, policy tree.DanglingPolicy) store.ForestStore[catalog.Field]
	// OpenHistory returns the configured history log and a function that
	// releases it.
	OpenHistory(cfg config.Config, dir string) (history.Log, func() error, error)
	ReadFile(path string) ([]byte, error)
	WriteFileAtomic(path string, data []byte) error
}

// workspace is the resolved project a command runs against.
type workspace struct {
	dir  string
	cfg  config.Config
	kind history.Kind
	pio  ProjectIO
}

func openWorkspace(cmd *cobra.Command, pio ProjectIO, getwd func() (string, error)) (*workspace, error) {
	dir, err := resolveProject(cmd, getwd)
	if err != nil {
		return nil, err
	}
	kind, err := kindFlag(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := pio.LoadConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return &workspace{dir: dir, cfg: cfg, kind: kind, pio: pio}, nil
}

func (w *workspace) sessionOptions() store.SessionOptions {
	return store.SessionOptions{
		Strict: w.cfg.Persistence.Strict,
		Drag:   w.cfg.DragConfigFor(w.kind),
		Logger: slog.Default(),
	}
}

func (w *workspace) categories() store.ForestStore[catalog.Category] {
	return w.pio.CategoryStore(w.cfg.ForestPath(w.dir, history.KindCategory), w.cfg.DanglingPolicy())
}

func (w *workspace) fields() store.ForestStore[catalog.Field] {
	return w.pio.FieldStore(w.cfg.ForestPath(w.dir, history.KindField), w.cfg.DanglingPolicy())
}

// openEditor opens a session over the --kind tree. The returned function
// closes the history log.
func (w *workspace) openEditor(ctx context.Context) (editor, func() error, error) {
	log, closeLog, err := w.pio.OpenHistory(w.cfg, w.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history: %w", err)
	}
	switch w.kind {
	case history.KindField:
		engine := catalog.NewFieldEngine(w.cfg.MaxDepth(w.kind), w.cfg.Actor)
		sess, err := store.OpenSession(ctx, engine, w.fields(), log, w.sessionOptions())
		if err != nil {
			_ = closeLog()
			return nil, nil, err
		}
		return &sessionEditor[catalog.Field]{
			sess:     sess,
			sheet:    "fields",
			cols:     catalog.FieldColumns(),
			describe: describeField,
		}, closeLog, nil
	default:
		engine := catalog.NewCategoryEngine(w.cfg.MaxDepth(w.kind), w.cfg.Actor)
		sess, err := store.OpenSession(ctx, engine, w.categories(), log, w.sessionOptions())
		if err != nil {
			_ = closeLog()
			return nil, nil, err
		}
		return &sessionEditor[catalog.Category]{sess: sess, sheet: "categories"}, closeLog, nil
	}
}

// openFieldSession opens a session over the field tree regardless of --kind.
func (w *workspace) openFieldSession(ctx context.Context) (*store.Session[catalog.Field], func() error, error) {
	log, closeLog, err := w.pio.OpenHistory(w.cfg, w.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history: %w", err)
	}
	engine := catalog.NewFieldEngine(w.cfg.MaxDepth(history.KindField), w.cfg.Actor)
	opts := w.sessionOptions()
	opts.Drag = w.cfg.DragConfigFor(history.KindField)
	sess, err := store.OpenSession(ctx, engine, w.fields(), log, opts)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	return sess, closeLog, nil
}

// withEditor runs fn against an editor over the --kind tree and closes the
// history log afterwards.
func withEditor(cmd *cobra.Command, pio ProjectIO, fn func(ctx context.Context, ed editor) error) error {
	ws, err := openWorkspace(cmd, pio, nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	ed, closeLog, err := ws.openEditor(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	return fn(ctx, ed)
}

// reportOutcome prints the history message of a change, or noChange when
// nothing changed; with --json it prints the outcome. A persistence error
// is returned after the report so the change is still visible.
func reportOutcome(cmd *cobra.Command, out outcome, opErr error, noChange string) error {
	if opErr != nil && !store.IsPersistError(opErr) {
		return opErr
	}
	if jsonFlag(cmd) {
		if err := writeJSON(cmd, out); err != nil {
			return err
		}
	} else if out.Entry != nil {
		fmt.Fprintln(cmd.OutOrStdout(), sanitizeText(out.Entry.Details.Message))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), noChange)
	}
	return opErr
}

// outcome is the command-level view of an operation result.
type outcome struct {
	Changed bool           `json:"changed"`
	Intent  *tree.Intent   `json:"intent,omitempty"`
	Entry   *history.Entry `json:"entry,omitempty"`
}

func outcomeOf[P any](res ops.Result[P]) outcome {
	return outcome{Changed: res.Changed, Entry: res.Entry}
}

// editor hides the payload type of a session from the commands.
type editor interface {
	Create(ctx context.Context, name, parentID string) (outcome, error)
	Rename(ctx context.Context, id, name string) (outcome, error)
	Delete(ctx context.Context, id string) (outcome, error)
	Move(ctx context.Context, sourceID string, intent tree.Intent) (outcome, error)
	Drop(ctx context.Context, sourceID, targetID string, g tree.Gesture) (outcome, bool, error)
	Has(id string) bool
	WriteTree(w io.Writer, flat bool) error
	WriteJSON(w io.Writer, flat bool) error
	Export(w io.Writer) error
}

type sessionEditor[P any] struct {
	sess     *store.Session[P]
	sheet    string
	cols     store.Columns[P]
	describe func(P) string
}

func (e *sessionEditor[P]) Create(ctx context.Context, name, parentID string) (outcome, error) {
	res, err := e.sess.Create(ctx, name, parentID)
	return outcomeOf(res), err
}

func (e *sessionEditor[P]) Rename(ctx context.Context, id, name string) (outcome, error) {
	res, err := e.sess.Rename(ctx, id, name)
	return outcomeOf(res), err
}

func (e *sessionEditor[P]) Delete(ctx context.Context, id string) (outcome, error) {
	res, err := e.sess.Delete(ctx, id)
	return outcomeOf(res), err
}

func (e *sessionEditor[P]) Move(ctx context.Context, sourceID string, intent tree.Intent) (outcome, error) {
	res, err := e.sess.Move(ctx, sourceID, intent)
	out := outcomeOf(res)
	out.Intent = &intent
	return out, err
}

func (e *sessionEditor[P]) Drop(ctx context.Context, sourceID, targetID string, g tree.Gesture) (outcome, bool, error) {
	res, intent, found, err := e.sess.Drop(ctx, sourceID, targetID, g)
	out := outcomeOf(res)
	if found {
		out.Intent = &intent
	}
	return out, found, err
}

func (e *sessionEditor[P]) Has(id string) bool {
	return tree.Find(e.sess.Forest(), id) != nil
}

// WriteTree prints one line per node, indented by depth, or the flat
// "id parent name" listing.
func (e *sessionEditor[P]) WriteTree(w io.Writer, flat bool) error {
	var err error
	forest := e.sess.Forest()
	if flat {
		for _, fn := range tree.Flatten(forest) {
			parent := fn.ParentID
			if parent == tree.Root {
				parent = "-"
			}
			if _, err = fmt.Fprintf(w, "%s\t%s\t%s%s\n", fn.ID, parent, sanitizeText(fn.Name), e.suffix(fn.Payload)); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
		return nil
	}
	tree.Walk(forest, func(n *tree.Node[P], depth int) bool {
		_, err = fmt.Fprintf(w, "%s- %s [%s]%s\n", strings.Repeat("  ", depth), sanitizeText(n.Name), n.ID, e.suffix(n.Payload))
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func (e *sessionEditor[P]) suffix(p P) string {
	if e.describe == nil {
		return ""
	}
	return e.describe(p)
}

func (e *sessionEditor[P]) WriteJSON(w io.Writer, flat bool) error {
	var v any = map[string]any{"nodes": e.sess.Forest()}
	if flat {
		v = map[string]any{"nodes": tree.Flatten(e.sess.Forest())}
	}
	return encodeIndented(w, v)
}

func (e *sessionEditor[P]) Export(w io.Writer) error {
	return store.ExportXLSX(w, e.sheet, e.sess.Forest(), e.cols)
}

func describeField(f catalog.Field) string {
	if f.Required {
		return fmt.Sprintf(" (%s, required)", f.Type)
	}
	return fmt.Sprintf(" (%s)", f.Type)
}

// validateStored checks the stored form of a forest before any rebuild
// repairs it. payload, when set, adds problems found in node payloads.
func validateStored[P any](ctx context.Context, s store.ForestStore[P], maxDepth int, payload func([]tree.FlatNode[P]) []tree.Problem) ([]tree.Problem, error) {
	var flat []tree.FlatNode[P]
	if fl, ok := s.(store.FlatLoader[P]); ok {
		var err error
		if flat, err = fl.LoadFlat(ctx); err != nil {
			return nil, err
		}
	} else {
		forest, err := s.Load(ctx)
		if err != nil {
			return nil, err
		}
		flat = tree.Flatten(forest)
	}
	problems := tree.Validate(flat, maxDepth)
	if payload != nil {
		problems = append(problems, payload(flat)...)
	}
	return problems, nil
}

// fileProjectIO implements ProjectIO using OS file I/O.
type fileProjectIO struct{}

func newDefaultProjectIO() *fileProjectIO {
	return &fileProjectIO{}
}

// LoadConfig reads .shelf.yml from dir.
func (f *fileProjectIO) LoadConfig(dir string) (config.Config, error) {
	return config.Load(dir)
}

// CategoryStore returns the JSON file store for categories.
func (f *fileProjectIO) CategoryStore(path string, policy tree.DanglingPolicy) store.ForestStore[catalog.Category] {
	return store.NewForestFile[catalog.Category](path, policy, slog.Default())
}

// FieldStore returns the JSON file store for fields.
func (f *fileProjectIO) FieldStore(path string, policy tree.DanglingPolicy) store.ForestStore[catalog.Field] {
	return store.NewForestFile[catalog.Field](path, policy, slog.Default())
}

// OpenHistory opens the JSON or SQLite history log named by cfg.
func (f *fileProjectIO) OpenHistory(cfg config.Config, dir string) (history.Log, func() error, error) {
	path := cfg.HistoryPath(dir)
	if cfg.History.Backend == config.BackendSQLite {
		l, err := history.OpenSQLiteLog(path)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	}
	return history.NewFileLog(path), func() error { return nil }, nil
}

// ReadFile reads the file at path.
func (f *fileProjectIO) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes data to path via a temp file and rename.
func (f *fileProjectIO) WriteFileAtomic(path string, data []byte) error {
	return fileio.WriteAtomic(path, ".shelf", data)
}
