package tree

import "strings"

// label is a minimal payload used across the package tests.
type label struct {
	Tag string `json:"tag,omitempty"`
}

// fl builds a flat node named after its id.
func fl(id, parentID string) FlatNode[label] {
	return FlatNode[label]{ID: id, Name: "n" + id, ParentID: parentID}
}

// build rebuilds a forest from (id, parent) pairs.
func build(pairs ...string) Forest[label] {
	var flat []FlatNode[label]
	for i := 0; i+1 < len(pairs); i += 2 {
		flat = append(flat, fl(pairs[i], pairs[i+1]))
	}
	return Rebuild(flat)
}

// shape renders a forest as "A(B,C(D)),E" for compact assertions.
func shape[P any](f Forest[P]) string {
	parts := make([]string, 0, len(f))
	for _, n := range f {
		s := n.ID
		if len(n.Children) > 0 {
			s += "(" + shape(Forest[P](n.Children)) + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ",")
}
