package tree

import "fmt"

// DanglingPolicy selects how a rebuild treats a parent id that cannot be
// resolved, a duplicated id, or a parent chain that loops.
type DanglingPolicy int

const (
	// DanglingAsRoot promotes offending nodes to roots and drops later
	// duplicates.
	DanglingAsRoot DanglingPolicy = iota
	// DanglingReject fails the rebuild.
	DanglingReject
)

// ParseDanglingPolicy maps the configuration spelling to a policy.
func ParseDanglingPolicy(s string) (DanglingPolicy, error) {
	switch s {
	case "", "root":
		return DanglingAsRoot, nil
	case "reject":
		return DanglingReject, nil
	}
	return DanglingAsRoot, fmt.Errorf("unknown dangling parent policy %q (want \"root\" or \"reject\")", s)
}

type flatFrame[P any] struct {
	node     *Node[P]
	parentID string
}

// Flatten walks forest depth-first in pre-order and returns one entry per
// node with its parent id resolved from the structure. Rebuilding the result
// reproduces forest exactly.
func Flatten[P any](forest Forest[P]) []FlatNode[P] {
	out := make([]FlatNode[P], 0, len(forest))
	stack := make([]flatFrame[P], 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, flatFrame[P]{node: forest[i], parentID: Root})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.node == nil {
			continue
		}
		fn := top.node.Flat()
		fn.ParentID = top.parentID
		out = append(out, fn)
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, flatFrame[P]{node: top.node.Children[i], parentID: top.node.ID})
		}
	}
	return out
}

// Rebuild converts a flat list back into nested form. Nodes whose parent
// cannot be resolved become roots.
func Rebuild[P any](flat []FlatNode[P]) Forest[P] {
	forest, _ := RebuildWith(flat, DanglingAsRoot)
	return forest
}

// RebuildWith converts a flat list into nested form in two passes: every
// node is instantiated first, then attached to its parent (or the root list)
// in flat order. The policy decides what happens to unresolvable parents,
// duplicate ids and cyclic parent chains.
func RebuildWith[P any](flat []FlatNode[P], policy DanglingPolicy) (Forest[P], error) {
	byID := make(map[string]*Node[P], len(flat))
	order := make([]*Node[P], 0, len(flat))
	for _, fn := range flat {
		if _, dup := byID[fn.ID]; dup {
			if policy == DanglingReject {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateID, fn.ID)
			}
			continue
		}
		n := &Node[P]{
			ID:       fn.ID,
			Name:     fn.Name,
			ParentID: fn.ParentID,
			Metadata: fn.Metadata,
			Payload:  fn.Payload,
			Children: []*Node[P]{},
		}
		byID[fn.ID] = n
		order = append(order, n)
	}

	for _, n := range order {
		if n.ParentID == Root {
			continue
		}
		if _, ok := byID[n.ParentID]; !ok {
			if policy == DanglingReject {
				return nil, fmt.Errorf("%w: node %q references %q", ErrDanglingParent, n.ID, n.ParentID)
			}
			n.ParentID = Root
		}
	}

	if err := breakCycles(order, byID, policy); err != nil {
		return nil, err
	}

	roots := Forest[P]{}
	for _, n := range order {
		if n.ParentID == Root {
			roots = append(roots, n)
			continue
		}
		parent := byID[n.ParentID]
		parent.Children = append(parent.Children, n)
	}
	return roots, nil
}

// breakCycles walks every parent chain once. A chain that returns to a node
// already on the current walk is a cycle; the node where the walk re-entered
// is detached to the root list (or the rebuild fails under DanglingReject).
func breakCycles[P any](order []*Node[P], byID map[string]*Node[P], policy DanglingPolicy) error {
	const (
		unseen uint8 = iota
		onWalk
		settled
	)
	state := make(map[string]uint8, len(order))
	for _, n := range order {
		var walk []*Node[P]
		cur := n
		for cur != nil && state[cur.ID] == unseen {
			state[cur.ID] = onWalk
			walk = append(walk, cur)
			if cur.ParentID == Root {
				cur = nil
				break
			}
			cur = byID[cur.ParentID]
		}
		if cur != nil && state[cur.ID] == onWalk {
			if policy == DanglingReject {
				return fmt.Errorf("%w: at node %q", ErrCycle, cur.ID)
			}
			cur.ParentID = Root
		}
		for _, w := range walk {
			state[w.ID] = settled
		}
	}
	return nil
}

// Clone returns a deep copy of forest.
func Clone[P any](forest Forest[P]) Forest[P] {
	return Rebuild(Flatten(forest))
}
