package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
	"github.com/eykd/shelfmark/internal/tree/ops"
)

// PersistError reports that a mutation was computed but could not be
// stored. In optimistic mode the session keeps the new forest; in strict
// mode it has been re-read from the store.
type PersistError struct {
	Op       string // "save" or "history"
	Err      error
	Reverted bool
}

func (e *PersistError) Error() string {
	if e.Reverted {
		return fmt.Sprintf("%s failed, changes reverted: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed, changes kept in memory only: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// SessionOptions tunes a Session.
type SessionOptions struct {
	Strict bool            // reload from the store when persisting fails
	Drag   tree.DragConfig // classifier thresholds for Drop
	Logger *slog.Logger
}

// Session is one editor's view of a forest: the in-memory snapshot, the
// engine that mutates it and the collaborators that persist the results.
// It is not safe for concurrent use; callers serialize gestures.
type Session[P any] struct {
	engine  *ops.Engine[P]
	forests ForestStore[P]
	log     history.Log
	opts    SessionOptions
	forest  tree.Forest[P]
}

// OpenSession loads the forest and returns a session over it.
func OpenSession[P any](ctx context.Context, engine *ops.Engine[P], forests ForestStore[P], log history.Log, opts SessionOptions) (*Session[P], error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Drag == (tree.DragConfig{}) {
		opts.Drag = tree.DefaultDragConfig(engine.MaxDepth)
	}
	s := &Session[P]{engine: engine, forests: forests, log: log, opts: opts}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Forest returns the current snapshot. Callers must not modify it.
func (s *Session[P]) Forest() tree.Forest[P] {
	return s.forest
}

// Engine returns the session's engine.
func (s *Session[P]) Engine() *ops.Engine[P] {
	return s.engine
}

// Reload replaces the in-memory forest with the stored one.
func (s *Session[P]) Reload(ctx context.Context) error {
	forest, err := s.forests.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading forest: %w", err)
	}
	s.forest = forest
	return nil
}

// Apply runs op against the current forest. A changed result becomes the
// session's forest before it is saved and its entry appended; when either
// step fails the returned error is a *PersistError.
func (s *Session[P]) Apply(ctx context.Context, op func(tree.Forest[P]) (ops.Result[P], error)) (ops.Result[P], error) {
	res, err := op(s.forest)
	if err != nil {
		return res, err
	}
	if !res.Changed {
		return res, nil
	}

	s.forest = res.Forest
	if err := s.forests.Save(ctx, res.Forest); err != nil {
		return res, s.persistFailed(ctx, "save", err)
	}
	if res.Entry != nil {
		if err := s.log.Append(ctx, *res.Entry); err != nil {
			return res, s.persistFailed(ctx, "history", err)
		}
		s.opts.Logger.Debug("change recorded", "kind", res.Entry.Kind, "action", res.Entry.Action, "subject", res.Entry.Subject.ID)
	}
	return res, nil
}

func (s *Session[P]) persistFailed(ctx context.Context, op string, err error) error {
	pe := &PersistError{Op: op, Err: err}
	if !s.opts.Strict {
		s.opts.Logger.Warn("persisting change failed; keeping optimistic update", "op", op, "err", err)
		return pe
	}
	if reloadErr := s.Reload(ctx); reloadErr != nil {
		s.opts.Logger.Error("persisting change failed and reload failed", "op", op, "err", err, "reload_err", reloadErr)
		pe.Err = errors.Join(err, reloadErr)
		return pe
	}
	pe.Reverted = true
	s.opts.Logger.Warn("persisting change failed; reverted to stored forest", "op", op, "err", err)
	return pe
}

// Create adds a node named name under parentID (tree.Root for a root).
func (s *Session[P]) Create(ctx context.Context, name, parentID string) (ops.Result[P], error) {
	return s.Apply(ctx, func(f tree.Forest[P]) (ops.Result[P], error) {
		return s.engine.Create(f, name, parentID)
	})
}

// Rename renames id.
func (s *Session[P]) Rename(ctx context.Context, id, name string) (ops.Result[P], error) {
	return s.Apply(ctx, func(f tree.Forest[P]) (ops.Result[P], error) {
		return s.engine.Rename(f, id, name)
	})
}

// Delete removes id and its subtree.
func (s *Session[P]) Delete(ctx context.Context, id string) (ops.Result[P], error) {
	return s.Apply(ctx, func(f tree.Forest[P]) (ops.Result[P], error) {
		return s.engine.Delete(f, id)
	})
}

// Move applies an already classified intent.
func (s *Session[P]) Move(ctx context.Context, sourceID string, intent tree.Intent) (ops.Result[P], error) {
	return s.Apply(ctx, func(f tree.Forest[P]) (ops.Result[P], error) {
		return s.engine.Move(f, sourceID, intent), nil
	})
}

// Drop classifies a drag and applies it. found is false when the gesture
// has no valid placement.
func (s *Session[P]) Drop(ctx context.Context, sourceID, targetID string, g tree.Gesture) (res ops.Result[P], intent tree.Intent, found bool, err error) {
	intent, found = tree.Classify(s.forest, sourceID, targetID, g, s.opts.Drag)
	if !found {
		return ops.Result[P]{Forest: s.forest}, intent, false, nil
	}
	res, err = s.Move(ctx, sourceID, intent)
	return res, intent, true, err
}

// IsPersistError reports whether err is a recoverable persistence failure.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
