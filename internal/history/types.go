// Package history defines the audit record written for every structural or
// property change of a forest, and the append-only logs that persist it.
package history

import (
	"context"
	"fmt"

	"github.com/eykd/shelfmark/internal/tree"
)

// Kind identifies which forest a record belongs to.
type Kind string

const (
	// KindCategory is the product category tree.
	KindCategory Kind = "category"
	// KindField is the product structure (field) tree.
	KindField Kind = "field"
)

// ParseKind validates a kind spelling. "categories" and "fields" are
// accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "category", "categories":
		return KindCategory, nil
	case "field", "fields":
		return KindField, nil
	}
	return "", fmt.Errorf("unknown kind %q (want \"category\" or \"field\")", s)
}

// Action is what a record describes.
type Action string

const (
	// ActionCreated records a new node.
	ActionCreated Action = "CREATED"
	// ActionRenamed records a name change.
	ActionRenamed Action = "RENAMED"
	// ActionRemoved records the removal of a leaf.
	ActionRemoved Action = "REMOVED"
	// ActionSubtreeRemoved records the removal of a node with descendants.
	ActionSubtreeRemoved Action = "SUBTREE_REMOVED"
	// ActionMoved records a reparent or reorder.
	ActionMoved Action = "MOVED"
	// ActionRequiredChanged records a field's required flag flipping.
	ActionRequiredChanged Action = "REQUIRED_CHANGED"
	// ActionTypeChanged records a field's data type changing.
	ActionTypeChanged Action = "TYPE_CHANGED"
)

var structuralActions = []Action{
	ActionCreated, ActionRenamed, ActionRemoved, ActionSubtreeRemoved, ActionMoved,
}

var kindActions = map[Kind][]Action{
	KindCategory: structuralActions,
	KindField:    append(append([]Action{}, structuralActions...), ActionRequiredChanged, ActionTypeChanged),
}

// Actions returns the actions valid for k.
func (k Kind) Actions() []Action {
	return append([]Action(nil), kindActions[k]...)
}

// Allows reports whether a is part of k's action set.
func (k Kind) Allows(a Action) bool {
	for _, x := range kindActions[k] {
		if x == a {
			return true
		}
	}
	return false
}

// NodeRef names a node at the time of the record.
type NodeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subject is a snapshot of the affected node.
type Subject struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Path     []string      `json:"path"`
	Metadata tree.Metadata `json:"metadata"`
}

// Details is the human-facing part of a record.
type Details struct {
	Message         string   `json:"message"`
	PreviousPath    []string `json:"previousPath,omitempty"`
	NewPath         []string `json:"newPath,omitempty"`
	DescendantCount int      `json:"descendantCount,omitempty"`
}

// Affected holds the parents involved in a move. A nil parent is the root.
type Affected struct {
	PreviousParent *NodeRef `json:"previousParent"`
	NewParent      *NodeRef `json:"newParent"`
}

// State is a partial view of a node before or after a change. Only the
// fields relevant to the action are set; a nil ParentID on a MOVED record
// means the root.
type State struct {
	ParentID *string `json:"parentId,omitempty"`
	Position *int    `json:"position,omitempty"`
	Depth    *int    `json:"depth,omitempty"`
	Required *bool   `json:"required,omitempty"`
	Type     *string `json:"type,omitempty"`
}

// Changes pairs the states around a change.
type Changes struct {
	PreviousState State `json:"previousState"`
	NewState      State `json:"newState"`
}

// Entry is one immutable audit record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp string    `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Action    Action    `json:"action"`
	Actor     string    `json:"actor"`
	Subject   Subject   `json:"subject"`
	Details   Details   `json:"details"`
	Affected  *Affected `json:"affected,omitempty"`
	Changes   *Changes  `json:"changes,omitempty"`
}

// Log is an append-only store of entries. Load returns the most recent
// entry first.
type Log interface {
	Append(ctx context.Context, e Entry) error
	Load(ctx context.Context) ([]Entry, error)
}

// Filter narrows a loaded history. Zero fields match everything.
type Filter struct {
	Kind    Kind
	Subject string
	Limit   int
}

// Apply returns the entries of h matching f, keeping order.
func (f Filter) Apply(h []Entry) []Entry {
	out := make([]Entry, 0, len(h))
	for _, e := range h {
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		if f.Subject != "" && e.Subject.ID != f.Subject {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// Ptr returns a pointer to v, for filling State fields.
func Ptr[T any](v T) *T {
	return &v
}
