package tree

import "fmt"

// IntentType is the structural effect of a drop.
type IntentType string

const (
	// IntentBefore places the source immediately before the anchor.
	IntentBefore IntentType = "before"
	// IntentAfter places the source immediately after the anchor.
	IntentAfter IntentType = "after"
	// IntentChild appends the source as the anchor's last child.
	IntentChild IntentType = "child"
	// IntentRoot detaches the source to the top level.
	IntentRoot IntentType = "root"
)

// ParseIntentType validates an intent spelling.
func ParseIntentType(s string) (IntentType, error) {
	switch t := IntentType(s); t {
	case IntentBefore, IntentAfter, IntentChild, IntentRoot:
		return t, nil
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

// Intent is a classified drop relative to Anchor.
type Intent struct {
	Type   IntentType `json:"type"`
	Anchor string     `json:"anchor"`
}

// Default drag thresholds in pixels of horizontal pointer travel.
const (
	DefaultUnparentThreshold = -20.0
	DefaultChildThreshold    = 20.0
)

// DragConfig holds the parameters of the classifier.
type DragConfig struct {
	MaxDepth          int
	UnparentThreshold float64 // negative; travel left past it unnests
	ChildThreshold    float64 // positive; travel right past it nests
}

// DefaultDragConfig returns the stock thresholds for maxDepth.
func DefaultDragConfig(maxDepth int) DragConfig {
	return DragConfig{
		MaxDepth:          maxDepth,
		UnparentThreshold: DefaultUnparentThreshold,
		ChildThreshold:    DefaultChildThreshold,
	}
}

// Gesture is the pointer geometry of an in-progress drag.
type Gesture struct {
	OffsetX      float64 // horizontal travel since drag start
	PointerY     float64 // current pointer position
	TargetTop    float64 // top edge of the row under the pointer
	TargetHeight float64
}

// RelativeY is how far down the target row the pointer sits, in [0, 1].
// A row without height counts as its top edge.
func (g Gesture) RelativeY() float64 {
	if g.TargetHeight <= 0 {
		return 0
	}
	y := g.PointerY - g.TargetTop
	if y < 0 {
		y = 0
	}
	if y > g.TargetHeight {
		y = g.TargetHeight
	}
	return y / g.TargetHeight
}

// Classify turns a drag of sourceID over targetID into an intent. The
// second return is false when there is no valid placement: the source is
// the target, the target lies inside the source's subtree, or either node
// is missing. Rules apply in order:
//
//  1. self or descendant target: no intent
//  2. travel left past UnparentThreshold from a nested source: before/after
//     a root target by midpoint, otherwise detach to root
//  3. travel right past ChildThreshold onto a target above the last
//     allowed depth: child
//  4. before/after by midpoint
func Classify[P any](forest Forest[P], sourceID, targetID string, g Gesture, cfg DragConfig) (Intent, bool) {
	return ClassifyIndexed(NewIndex(forest), sourceID, targetID, g, cfg)
}

// ClassifyIndexed is Classify over a prebuilt index, for callers that
// classify many pointer moves against the same snapshot.
func ClassifyIndexed[P any](idx *Index[P], sourceID, targetID string, g Gesture, cfg DragConfig) (Intent, bool) {
	source, target := idx.Node(sourceID), idx.Node(targetID)
	if source == nil || target == nil {
		return Intent{}, false
	}
	if sourceID == targetID || idx.IsDescendant(sourceID, targetID) {
		return Intent{}, false
	}

	midpoint := IntentAfter
	if g.RelativeY() < 0.5 {
		midpoint = IntentBefore
	}

	if g.OffsetX < cfg.UnparentThreshold && idx.Parent(sourceID) != nil {
		if idx.Parent(targetID) == nil {
			return Intent{Type: midpoint, Anchor: targetID}, true
		}
		return Intent{Type: IntentRoot, Anchor: targetID}, true
	}

	if g.OffsetX > cfg.ChildThreshold {
		// Whether the dragged subtree fits is left to the move guard.
		if idx.Depth(targetID) < cfg.MaxDepth-1 {
			return Intent{Type: IntentChild, Anchor: targetID}, true
		}
	}

	return Intent{Type: midpoint, Anchor: targetID}, true
}
