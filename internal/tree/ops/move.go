package ops

import (
	"fmt"

	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
)

// fits reports whether depth is within the engine's bound. A MaxDepth of
// zero or less means unbounded.
func (e *Engine[P]) fits(depth int) bool {
	return e.MaxDepth <= 0 || depth <= e.depthLimit()
}

// destination computes the parent the source would get under intent and
// the depth it would land at. ok is false when the placement would create a
// cycle, exceed the depth bound with the source's subtree, or refers to
// missing nodes.
func (e *Engine[P]) destination(idx *tree.Index[P], sourceID string, intent tree.Intent) (parentID string, depth int, ok bool) {
	if idx.Node(sourceID) == nil {
		return "", 0, false
	}
	// A root intent may omit its anchor.
	if intent.Type != tree.IntentRoot || intent.Anchor != tree.Root {
		if idx.Node(intent.Anchor) == nil {
			return "", 0, false
		}
		if sourceID == intent.Anchor || idx.IsDescendant(sourceID, intent.Anchor) {
			return "", 0, false
		}
	}
	switch intent.Type {
	case tree.IntentBefore, tree.IntentAfter:
		parentID = idx.ParentID(intent.Anchor)
		depth = idx.Depth(intent.Anchor)
	case tree.IntentChild:
		parentID = intent.Anchor
		depth = idx.Depth(intent.Anchor) + 1
	case tree.IntentRoot:
		parentID = tree.Root
		depth = 0
	default:
		return "", 0, false
	}
	if !e.fits(depth + idx.Height(sourceID)) {
		return "", 0, false
	}
	return parentID, depth, true
}

// CanMove reports whether Move would accept intent for sourceID against
// forest.
func (e *Engine[P]) CanMove(forest tree.Forest[P], sourceID string, intent tree.Intent) bool {
	_, _, ok := e.destination(tree.NewIndex(forest), sourceID, intent)
	return ok
}

// Move relocates sourceID (with its subtree) according to intent. The
// placement is re-validated against forest first; a stale or invalid
// intent, or one that leaves the node where it is, returns the input
// forest unchanged.
//
// The source entry is removed from the flat form and spliced back in at the
// position the intent names: adjacent to the anchor for before/after,
// after the anchor's last child for child, and after the last root for
// root. Its descendants keep pointing at it and follow it on rebuild.
func (e *Engine[P]) Move(forest tree.Forest[P], sourceID string, intent tree.Intent) Result[P] {
	idx := tree.NewIndex(forest)
	newParentID, _, ok := e.destination(idx, sourceID, intent)
	if !ok {
		return unchanged(forest)
	}

	prevParent := idx.Parent(sourceID)
	prevParentID := idx.ParentID(sourceID)
	prevPos := idx.Position(sourceID)
	prevDepth := idx.Depth(sourceID)
	prevPath := idx.Path(sourceID)

	flat := tree.Flatten(forest)
	var moved tree.FlatNode[P]
	rest := make([]tree.FlatNode[P], 0, len(flat))
	for _, fn := range flat {
		if fn.ID == sourceID {
			moved = fn
			continue
		}
		rest = append(rest, fn)
	}

	anchorAt := -1
	for i, fn := range rest {
		if fn.ID == intent.Anchor {
			anchorAt = i
			break
		}
	}
	if anchorAt < 0 && intent.Type != tree.IntentRoot {
		return unchanged(forest)
	}

	insertAt := anchorAt
	switch intent.Type {
	case tree.IntentBefore:
		insertAt = anchorAt
	case tree.IntentAfter:
		insertAt = anchorAt + 1
	case tree.IntentChild:
		insertAt = anchorAt + 1
		for i, fn := range rest {
			if fn.ParentID == intent.Anchor {
				insertAt = i + 1
			}
		}
	case tree.IntentRoot:
		insertAt = 0
		for i, fn := range rest {
			if fn.ParentID == tree.Root {
				insertAt = i + 1
			}
		}
	}

	ts := e.timestamp()
	moved.ParentID = newParentID
	moved.Metadata.UpdatedAt = ts

	spliced := make([]tree.FlatNode[P], 0, len(flat))
	spliced = append(spliced, rest[:insertAt]...)
	spliced = append(spliced, moved)
	spliced = append(spliced, rest[insertAt:]...)
	next := tree.Rebuild(spliced)

	nidx := tree.NewIndex(next)
	newPos := nidx.Position(sourceID)
	newDepth := nidx.Depth(sourceID)
	if newParentID == prevParentID && newPos == prevPos {
		return unchanged(forest)
	}

	node := nidx.Node(sourceID)
	newPath := nidx.Path(sourceID)
	entry := e.entry(history.ActionMoved, ts, subjectOf(node.Flat(), newPath),
		fmt.Sprintf("Moved %q from %q to %q", node.Name, displayPath(prevPath), displayPath(newPath)))
	entry.Details.PreviousPath = prevPath
	entry.Details.NewPath = newPath
	entry.Affected = &history.Affected{
		PreviousParent: refOf(prevParent),
		NewParent:      refOf(nidx.Parent(sourceID)),
	}
	entry.Changes = &history.Changes{
		PreviousState: positionState(prevParentID, prevPos, prevDepth),
		NewState:      positionState(newParentID, newPos, newDepth),
	}
	return Result[P]{Forest: next, Entry: entry, Changed: true}
}

// Drop classifies a drag of sourceID over targetID and applies the result.
// The returned intent is meaningful only when found is true; a drop with no
// valid placement changes nothing.
func (e *Engine[P]) Drop(forest tree.Forest[P], sourceID, targetID string, g tree.Gesture, cfg tree.DragConfig) (res Result[P], intent tree.Intent, found bool) {
	intent, found = tree.Classify(forest, sourceID, targetID, g, cfg)
	if !found {
		return unchanged(forest), intent, false
	}
	return e.Move(forest, sourceID, intent), intent, true
}

func positionState(parentID string, position, depth int) history.State {
	s := history.State{
		Position: history.Ptr(position),
		Depth:    history.Ptr(depth),
	}
	if parentID != tree.Root {
		s.ParentID = history.Ptr(parentID)
	}
	return s
}
