package ops

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
)

// ErrUnsupportedAction is returned when an edit names an action outside the
// engine kind's action set.
var ErrUnsupportedAction = errors.New("action not supported for this kind")

// Create appends a new node named name as the last root (parentID ==
// tree.Root) or as the last child of parentID.
func (e *Engine[P]) Create(forest tree.Forest[P], name, parentID string) (Result[P], error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return unchanged(forest), err
	}

	idx := tree.NewIndex(forest)
	depth := 0
	var path []string
	if parentID != tree.Root {
		if idx.Node(parentID) == nil {
			return unchanged(forest), fmt.Errorf("parent %q: %w", parentID, tree.ErrNotFound)
		}
		depth = idx.Depth(parentID) + 1
		if !e.fits(depth) {
			return unchanged(forest), fmt.Errorf("creating under %q would reach depth %d (limit %d): %w",
				parentID, depth, e.depthLimit(), tree.ErrDepthExceeded)
		}
		path = idx.Path(parentID)
	}

	id := e.newID()
	if idx.Node(id) != nil {
		return unchanged(forest), fmt.Errorf("%w: generated id %q", tree.ErrDuplicateID, id)
	}

	ts := e.timestamp()
	fn := tree.FlatNode[P]{
		ID:       id,
		Name:     name,
		ParentID: parentID,
		Metadata: tree.Metadata{CreatedAt: ts, UpdatedAt: ts, Status: tree.StatusActive},
		Payload:  e.newPayload(),
	}
	next := tree.Rebuild(append(tree.Flatten(forest), fn))

	nidx := tree.NewIndex(next)
	node := nidx.Node(id)
	path = append(path, name)
	message := fmt.Sprintf("Created %q", name)
	if parentID != tree.Root {
		message = fmt.Sprintf("Created %q under %q", name, displayPath(path[:len(path)-1]))
	}
	entry := e.entry(history.ActionCreated, ts, subjectOf(node.Flat(), path), message)
	entry.Details.NewPath = path
	entry.Changes = &history.Changes{
		NewState: positionState(parentID, nidx.Position(id), depth),
	}
	return Result[P]{Forest: next, Entry: entry, Changed: true}, nil
}

// Rename sets the name of id. Renaming to the current name returns the
// input forest with no entry.
func (e *Engine[P]) Rename(forest tree.Forest[P], id, name string) (Result[P], error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return unchanged(forest), err
	}
	idx := tree.NewIndex(forest)
	n := idx.Node(id)
	if n == nil {
		return unchanged(forest), fmt.Errorf("node %q: %w", id, tree.ErrNotFound)
	}
	if n.Name == name {
		return unchanged(forest), nil
	}

	ts := e.timestamp()
	prevPath := idx.Path(id)
	flat := tree.Flatten(forest)
	for i := range flat {
		if flat[i].ID == id {
			flat[i].Name = name
			flat[i].Metadata.UpdatedAt = ts
		}
	}
	next := tree.Rebuild(flat)

	nidx := tree.NewIndex(next)
	newPath := nidx.Path(id)
	entry := e.entry(history.ActionRenamed, ts, subjectOf(nidx.Node(id).Flat(), newPath),
		fmt.Sprintf("Renamed %q to %q", displayPath(prevPath), displayPath(newPath)))
	entry.Details.PreviousPath = prevPath
	entry.Details.NewPath = newPath
	return Result[P]{Forest: next, Entry: entry, Changed: true}, nil
}

// Delete removes id and every node below it in one pass.
func (e *Engine[P]) Delete(forest tree.Forest[P], id string) (Result[P], error) {
	idx := tree.NewIndex(forest)
	n := idx.Node(id)
	if n == nil {
		return unchanged(forest), fmt.Errorf("node %q: %w", id, tree.ErrNotFound)
	}

	flat := tree.Flatten(forest)
	descendants := tree.Descendants(flat, id)
	drop := make(map[string]bool, len(descendants)+1)
	drop[id] = true
	for _, d := range descendants {
		drop[d] = true
	}
	kept := make([]tree.FlatNode[P], 0, len(flat)-len(drop))
	for _, fn := range flat {
		if !drop[fn.ID] {
			kept = append(kept, fn)
		}
	}
	next := tree.Rebuild(kept)

	ts := e.timestamp()
	snapshot := n.Flat()
	snapshot.Metadata.DeletedAt = ts
	snapshot.Metadata.Status = tree.StatusInactive
	path := idx.Path(id)

	action := history.ActionRemoved
	message := fmt.Sprintf("Removed %q", displayPath(path))
	if len(descendants) > 0 {
		action = history.ActionSubtreeRemoved
		message = fmt.Sprintf("Removed %q and %d descendant(s)", displayPath(path), len(descendants))
	}
	entry := e.entry(action, ts, subjectOf(snapshot, path), message)
	entry.Details.PreviousPath = path
	entry.Details.DescendantCount = len(descendants)
	entry.Changes = &history.Changes{
		PreviousState: positionState(idx.ParentID(id), idx.Position(id), idx.Depth(id)),
	}
	return Result[P]{Forest: next, Entry: entry, Changed: true}, nil
}

// PropertyChange describes a single payload edit for the history entry.
type PropertyChange struct {
	Previous history.State
	Next     history.State
	Message  string
}

// EditFunc receives a copy of the node and returns its new payload. It
// returns changed=false when the edit would not alter anything.
type EditFunc[P any] func(n tree.FlatNode[P]) (payload P, change PropertyChange, changed bool, err error)

// Edit rewrites the payload of id through fn and records it as action,
// which must belong to the engine kind's action set.
func (e *Engine[P]) Edit(forest tree.Forest[P], id string, action history.Action, fn EditFunc[P]) (Result[P], error) {
	if !e.Kind.Allows(action) {
		return unchanged(forest), fmt.Errorf("%w: %s on %s", ErrUnsupportedAction, action, e.Kind)
	}
	idx := tree.NewIndex(forest)
	n := idx.Node(id)
	if n == nil {
		return unchanged(forest), fmt.Errorf("node %q: %w", id, tree.ErrNotFound)
	}

	payload, change, changed, err := fn(n.Flat())
	if err != nil {
		return unchanged(forest), err
	}
	if !changed {
		return unchanged(forest), nil
	}

	ts := e.timestamp()
	flat := tree.Flatten(forest)
	for i := range flat {
		if flat[i].ID == id {
			flat[i].Payload = payload
			flat[i].Metadata.UpdatedAt = ts
		}
	}
	next := tree.Rebuild(flat)

	nidx := tree.NewIndex(next)
	path := nidx.Path(id)
	entry := e.entry(action, ts, subjectOf(nidx.Node(id).Flat(), path), change.Message)
	entry.Changes = &history.Changes{PreviousState: change.Previous, NewState: change.Next}
	return Result[P]{Forest: next, Entry: entry, Changed: true}, nil
}
