package tree

import "fmt"

type depthFrame[P any] struct {
	node  *Node[P]
	depth int
}

// Depth counts the edges from id up to its root by breadth-first search from
// the roots. It returns -1 when id is absent.
func Depth[P any](forest Forest[P], id string) int {
	queue := make([]depthFrame[P], 0, len(forest))
	for _, r := range forest {
		queue = append(queue, depthFrame[P]{node: r})
	}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if f.node == nil {
			continue
		}
		if f.node.ID == id {
			return f.depth
		}
		for _, c := range f.node.Children {
			queue = append(queue, depthFrame[P]{node: c, depth: f.depth + 1})
		}
	}
	return -1
}

// IsDescendant reports whether nodeID lies strictly inside the subtree
// rooted at ancestorID.
func IsDescendant[P any](forest Forest[P], ancestorID, nodeID string) bool {
	anc := Find(forest, ancestorID)
	if anc == nil {
		return false
	}
	stack := append([]*Node[P](nil), anc.Children...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if n.ID == nodeID {
			return true
		}
		stack = append(stack, n.Children...)
	}
	return false
}

// Find returns the node with the given id, or nil.
func Find[P any](forest Forest[P], id string) *Node[P] {
	var found *Node[P]
	Walk(forest, func(n *Node[P], _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits every node in pre-order with its depth. Returning false from
// fn stops the walk.
func Walk[P any](forest Forest[P], fn func(n *Node[P], depth int) bool) {
	stack := make([]depthFrame[P], 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, depthFrame[P]{node: forest[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			continue
		}
		if !fn(f.node, f.depth) {
			return
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, depthFrame[P]{node: f.node.Children[i], depth: f.depth + 1})
		}
	}
}

// Height returns the number of edges from id to its deepest descendant
// (0 for a leaf), or -1 when id is absent.
func Height[P any](forest Forest[P], id string) int {
	n := Find(forest, id)
	if n == nil {
		return -1
	}
	return subtreeHeight(n)
}

func subtreeHeight[P any](n *Node[P]) int {
	height := 0
	queue := []depthFrame[P]{{node: n}}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if f.depth > height {
			height = f.depth
		}
		for _, c := range f.node.Children {
			if c != nil {
				queue = append(queue, depthFrame[P]{node: c, depth: f.depth + 1})
			}
		}
	}
	return height
}

// Descendants returns the ids of every node whose parent chain leads to id,
// found by repeatedly filtering the flat list for children of the current
// frontier. The result is in flat order per generation.
func Descendants[P any](flat []FlatNode[P], id string) []string {
	seen := map[string]bool{id: true}
	frontier := map[string]bool{id: true}
	var out []string
	for len(frontier) > 0 {
		next := make(map[string]bool)
		for _, fn := range flat {
			if fn.ParentID != Root && frontier[fn.ParentID] && !seen[fn.ID] {
				seen[fn.ID] = true
				next[fn.ID] = true
				out = append(out, fn.ID)
			}
		}
		frontier = next
	}
	return out
}

// Path returns the names from the root down to id, or nil when id is absent.
func Path[P any](forest Forest[P], id string) []string {
	return NewIndex(forest).Path(id)
}

// Index is a lookup table over one forest snapshot. It must be rebuilt
// after the forest changes.
type Index[P any] struct {
	nodes    map[string]*Node[P]
	parents  map[string]*Node[P]
	depths   map[string]int
	position map[string]int
	roots    Forest[P]
}

// NewIndex builds an Index over forest.
func NewIndex[P any](forest Forest[P]) *Index[P] {
	idx := &Index[P]{
		nodes:    make(map[string]*Node[P]),
		parents:  make(map[string]*Node[P]),
		depths:   make(map[string]int),
		position: make(map[string]int),
		roots:    forest,
	}
	for i, r := range forest {
		if r != nil {
			idx.position[r.ID] = i
		}
	}
	Walk(forest, func(n *Node[P], depth int) bool {
		idx.nodes[n.ID] = n
		idx.depths[n.ID] = depth
		for i, c := range n.Children {
			if c == nil {
				continue
			}
			idx.parents[c.ID] = n
			idx.position[c.ID] = i
		}
		return true
	})
	return idx
}

// Node returns the node with id, or nil.
func (x *Index[P]) Node(id string) *Node[P] {
	return x.nodes[id]
}

// Parent returns the parent of id, or nil for roots and unknown ids.
func (x *Index[P]) Parent(id string) *Node[P] {
	return x.parents[id]
}

// ParentID returns the parent id of id (Root for roots).
func (x *Index[P]) ParentID(id string) string {
	if p := x.parents[id]; p != nil {
		return p.ID
	}
	return Root
}

// Depth returns the depth of id, or -1.
func (x *Index[P]) Depth(id string) int {
	d, ok := x.depths[id]
	if !ok {
		return -1
	}
	return d
}

// Position returns the index of id among its siblings, or -1.
func (x *Index[P]) Position(id string) int {
	p, ok := x.position[id]
	if !ok || x.nodes[id] == nil {
		return -1
	}
	return p
}

// Height returns the height of the subtree rooted at id, or -1.
func (x *Index[P]) Height(id string) int {
	n := x.nodes[id]
	if n == nil {
		return -1
	}
	return subtreeHeight(n)
}

// IsDescendant reports whether nodeID lies strictly below ancestorID by
// walking nodeID's parent chain.
func (x *Index[P]) IsDescendant(ancestorID, nodeID string) bool {
	if x.nodes[ancestorID] == nil {
		return false
	}
	for p := x.parents[nodeID]; p != nil; p = x.parents[p.ID] {
		if p.ID == ancestorID {
			return true
		}
	}
	return false
}

// Path returns the names from the root down to id.
func (x *Index[P]) Path(id string) []string {
	n := x.nodes[id]
	if n == nil {
		return nil
	}
	path := []string{n.Name}
	for p := x.parents[id]; p != nil; p = x.parents[p.ID] {
		path = append(path, p.Name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Len returns the number of indexed nodes.
func (x *Index[P]) Len() int {
	return len(x.nodes)
}

// Validate reports structural defects in a flat forest: unresolvable
// parents, duplicate ids, cyclic parent chains and nodes deeper than
// maxDepth-1. A maxDepth of zero or less disables the depth check.
func Validate[P any](flat []FlatNode[P], maxDepth int) []Problem {
	var problems []Problem
	byID := make(map[string]FlatNode[P], len(flat))
	for _, fn := range flat {
		if _, dup := byID[fn.ID]; dup {
			problems = append(problems, Problem{
				Severity: "error",
				Code:     CodeDuplicateID,
				NodeID:   fn.ID,
				Message:  fmt.Sprintf("id %q appears more than once", fn.ID),
			})
			continue
		}
		byID[fn.ID] = fn
	}
	for _, fn := range flat {
		if fn.ParentID == Root {
			continue
		}
		if _, ok := byID[fn.ParentID]; !ok {
			problems = append(problems, Problem{
				Severity: "error",
				Code:     CodeDanglingParent,
				NodeID:   fn.ID,
				Message:  fmt.Sprintf("node %q references missing parent %q", fn.ID, fn.ParentID),
			})
		}
	}

	reported := make(map[string]bool)
	for _, fn := range flat {
		if reported[fn.ID] {
			continue
		}
		reported[fn.ID] = true
		depth, cyclic := chainDepth(byID, fn.ID)
		switch {
		case cyclic:
			problems = append(problems, Problem{
				Severity: "error",
				Code:     CodeCycle,
				NodeID:   fn.ID,
				Message:  fmt.Sprintf("parent chain of %q loops back on itself", fn.ID),
			})
		case maxDepth > 0 && depth > maxDepth-1:
			problems = append(problems, Problem{
				Severity: "error",
				Code:     CodeDepthExceeded,
				NodeID:   fn.ID,
				Message:  fmt.Sprintf("node %q is at depth %d; the limit is %d", fn.ID, depth, maxDepth-1),
			})
		}
	}
	return problems
}

// chainDepth follows parent pointers from id. A missing parent ends the
// chain as if it were a root.
func chainDepth[P any](byID map[string]FlatNode[P], id string) (depth int, cyclic bool) {
	visited := map[string]bool{id: true}
	cur := byID[id]
	for cur.ParentID != Root {
		parent, ok := byID[cur.ParentID]
		if !ok {
			return depth, false
		}
		if visited[parent.ID] {
			return depth, true
		}
		visited[parent.ID] = true
		depth++
		cur = parent
	}
	return depth, false
}
