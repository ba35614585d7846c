package ops

import (
	"strings"
	"time"

	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
)

type note struct {
	Text string `json:"text,omitempty"`
}

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newEngine(maxDepth int) *Engine[note] {
	return &Engine[note]{
		Kind:     history.KindCategory,
		MaxDepth: maxDepth,
		Actor:    "tester",
		IDs:      &SequentialIDs{Prefix: "id"},
		Now:      func() time.Time { return fixedNow },
	}
}

// forestOf rebuilds a forest from (id, parent) pairs, naming each node
// after its id.
func forestOf(pairs ...string) tree.Forest[note] {
	var flat []tree.FlatNode[note]
	for i := 0; i+1 < len(pairs); i += 2 {
		flat = append(flat, tree.FlatNode[note]{ID: pairs[i], Name: pairs[i], ParentID: pairs[i+1]})
	}
	return tree.Rebuild(flat)
}

func shape(f tree.Forest[note]) string {
	parts := make([]string, 0, len(f))
	for _, n := range f {
		s := n.ID
		if len(n.Children) > 0 {
			s += "(" + shape(tree.Forest[note](n.Children)) + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ",")
}
