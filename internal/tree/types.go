// Package tree provides the generic forest model shared by the category and
// product-field editors: nested/flat transforms, structural queries, and drag
// intent classification.
package tree

import "errors"

// Root is the parent id of a top-level node. It is the only "no parent"
// value; every boundary normalizes null, missing, and "" to it.
const Root = ""

// Status is the lifecycle state recorded in node metadata.
type Status string

const (
	// StatusActive marks a live node.
	StatusActive Status = "active"
	// StatusInactive marks a removed node in a history snapshot.
	StatusInactive Status = "inactive"
)

// Metadata carries node timestamps (RFC3339 UTC) and status.
type Metadata struct {
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	DeletedAt string `json:"deletedAt,omitempty"`
	Status    Status `json:"status,omitempty"`
}

// Node is a node of a nested forest. P is the domain payload; its JSON
// fields are written inline next to id, name, parentId and metadata.
type Node[P any] struct {
	ID       string
	Name     string
	ParentID string // Root for top-level nodes
	Metadata Metadata
	Payload  P
	Children []*Node[P] // ordered; never nil on rebuilt nodes
}

// FlatNode is a node of the flat parent-pointer form.
type FlatNode[P any] struct {
	ID       string
	Name     string
	ParentID string
	Metadata Metadata
	Payload  P
}

// Forest is an ordered list of root nodes.
type Forest[P any] []*Node[P]

// IsRoot reports whether n has no parent.
func (n *Node[P]) IsRoot() bool {
	return n.ParentID == Root
}

// Flat returns n's data without its children.
func (n *Node[P]) Flat() FlatNode[P] {
	return FlatNode[P]{
		ID:       n.ID,
		Name:     n.Name,
		ParentID: n.ParentID,
		Metadata: n.Metadata,
		Payload:  n.Payload,
	}
}

// Sentinel errors returned by strict rebuilds and mutation commands.
var (
	ErrNotFound       = errors.New("node not found")
	ErrDepthExceeded  = errors.New("maximum depth exceeded")
	ErrDanglingParent = errors.New("parent does not exist")
	ErrDuplicateID    = errors.New("duplicate node id")
	ErrCycle          = errors.New("parent chain forms a cycle")
	ErrInvalidName    = errors.New("invalid node name")
)

// Problem codes reported by Validate.
const (
	CodeDanglingParent = "TRE001"
	CodeDuplicateID    = "TRE002"
	CodeCycle          = "TRE003"
	CodeDepthExceeded  = "TRE004"
)

// Problem is a structural defect found in a flat forest.
type Problem struct {
	Severity string `json:"severity"` // "error" | "warning"
	Code     string `json:"code"`
	NodeID   string `json:"nodeId"`
	Message  string `json:"message"`
}
