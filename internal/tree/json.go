package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// nodeJSON is the wire shape shared by nested and flat nodes. ParentID is a
// pointer so the root sentinel round-trips as null.
type nodeJSON struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	ParentID *string   `json:"parentId"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

type nestedJSON[P any] struct {
	nodeJSON
	Children []*Node[P] `json:"children"`
}

func toWire(id, name, parentID string, md Metadata) nodeJSON {
	w := nodeJSON{ID: id, Name: name}
	if parentID != Root {
		p := parentID
		w.ParentID = &p
	}
	if md != (Metadata{}) {
		m := md
		w.Metadata = &m
	}
	return w
}

func fromWire(w nodeJSON) (id, name, parentID string, md Metadata) {
	if w.ParentID != nil {
		parentID = *w.ParentID
	}
	if w.Metadata != nil {
		md = *w.Metadata
	}
	return w.ID, w.Name, parentID, md
}

// MarshalJSON writes the node with its payload fields inlined and a
// children array that is never null.
func (n Node[P]) MarshalJSON() ([]byte, error) {
	children := n.Children
	if children == nil {
		children = []*Node[P]{}
	}
	base, err := json.Marshal(nestedJSON[P]{
		nodeJSON: toWire(n.ID, n.Name, n.ParentID, n.Metadata),
		Children: children,
	})
	if err != nil {
		return nil, err
	}
	return inlinePayload(base, n.Payload)
}

// UnmarshalJSON reads a node and its payload fields.
func (n *Node[P]) UnmarshalJSON(data []byte) error {
	var w nestedJSON[P]
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var payload P
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decoding payload of node %q: %w", w.ID, err)
	}
	n.ID, n.Name, n.ParentID, n.Metadata = fromWire(w.nodeJSON)
	n.Payload = payload
	n.Children = w.Children
	if n.Children == nil {
		n.Children = []*Node[P]{}
	}
	return nil
}

// MarshalJSON writes the flat node with its payload fields inlined.
func (f FlatNode[P]) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(toWire(f.ID, f.Name, f.ParentID, f.Metadata))
	if err != nil {
		return nil, err
	}
	return inlinePayload(base, f.Payload)
}

// UnmarshalJSON reads a flat node and its payload fields.
func (f *FlatNode[P]) UnmarshalJSON(data []byte) error {
	var w nodeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var payload P
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decoding payload of node %q: %w", w.ID, err)
	}
	f.ID, f.Name, f.ParentID, f.Metadata = fromWire(w)
	f.Payload = payload
	return nil
}

// inlinePayload splices the members of payload's JSON object into base,
// which must itself be a non-empty JSON object.
func inlinePayload(base []byte, payload any) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	p = bytes.TrimSpace(p)
	if len(p) < 2 || p[0] != '{' {
		return nil, fmt.Errorf("payload must encode as a JSON object, got %s", p)
	}
	members := bytes.TrimSpace(p[1 : len(p)-1])
	if len(members) == 0 {
		return base, nil
	}
	out := make([]byte, 0, len(base)+len(members)+1)
	out = append(out, base[:len(base)-1]...)
	out = append(out, ',')
	out = append(out, members...)
	out = append(out, '}')
	return out, nil
}
