package ops

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
)

func sample() tree.Forest[note] {
	return forestOf(
		"A", "",
		"B", "A",
		"C", "B",
		"D", "B",
		"E", "A",
		"F", "E",
		"G", "",
		"H", "G",
		"I", "H",
		"J", "G",
	)
}

func TestMove_Intents(t *testing.T) {
	tests := []struct {
		name   string
		source string
		intent tree.Intent
		want   string
	}{
		{
			name:   "before a sibling in another parent",
			source: "J",
			intent: tree.Intent{Type: tree.IntentBefore, Anchor: "B"},
			want:   "A(J,B(C,D),E(F)),G(H(I))",
		},
		{
			name:   "after a node with children",
			source: "C",
			intent: tree.Intent{Type: tree.IntentAfter, Anchor: "E"},
			want:   "A(B(D),E(F),C),G(H(I),J)",
		},
		{
			name:   "child carries its subtree",
			source: "H",
			intent: tree.Intent{Type: tree.IntentChild, Anchor: "B"},
			want:   "A(B(C,D,H(I)),E(F)),G(J)",
		},
		{
			name:   "child of a leaf",
			source: "J",
			intent: tree.Intent{Type: tree.IntentChild, Anchor: "C"},
			want:   "A(B(C(J),D),E(F)),G(H(I))",
		},
		{
			name:   "root goes last",
			source: "E",
			intent: tree.Intent{Type: tree.IntentRoot, Anchor: "C"},
			want:   "A(B(C,D)),G(H(I),J),E(F)",
		},
		{
			name:   "reorder roots",
			source: "G",
			intent: tree.Intent{Type: tree.IntentBefore, Anchor: "A"},
			want:   "G(H(I),J),A(B(C,D),E(F))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := sample()
			res := newEngine(5).Move(forest, tt.source, tt.intent)

			assert.True(t, res.Changed)
			assert.Equal(t, tt.want, shape(res.Forest))
			require.NotNil(t, res.Entry)
			assert.Equal(t, history.ActionMoved, res.Entry.Action)
			assert.Equal(t, tt.source, res.Entry.Subject.ID)
			assert.Equal(t, "A(B(C,D),E(F)),G(H(I),J)", shape(forest), "input is untouched")
		})
	}
}

func TestMove_EntryRecordsBothPositions(t *testing.T) {
	res := newEngine(5).Move(sample(), "J", tree.Intent{Type: tree.IntentBefore, Anchor: "B"})
	require.True(t, res.Changed)

	e := res.Entry
	assert.Equal(t, []string{"G", "J"}, e.Details.PreviousPath)
	assert.Equal(t, []string{"A", "J"}, e.Details.NewPath)
	require.NotNil(t, e.Affected)
	assert.Equal(t, &history.NodeRef{ID: "G", Name: "G"}, e.Affected.PreviousParent)
	assert.Equal(t, &history.NodeRef{ID: "A", Name: "A"}, e.Affected.NewParent)
	require.NotNil(t, e.Changes)
	assert.Equal(t, "G", *e.Changes.PreviousState.ParentID)
	assert.Equal(t, 1, *e.Changes.PreviousState.Position)
	assert.Equal(t, "A", *e.Changes.NewState.ParentID)
	assert.Equal(t, 0, *e.Changes.NewState.Position)
	assert.Equal(t, 1, *e.Changes.NewState.Depth)
}

func TestMove_ToRootHasNilParent(t *testing.T) {
	res := newEngine(5).Move(sample(), "E", tree.Intent{Type: tree.IntentRoot, Anchor: "E"})
	// Self-anchored intents are rejected outright.
	assert.False(t, res.Changed)

	res = newEngine(5).Move(sample(), "E", tree.Intent{Type: tree.IntentRoot, Anchor: "A"})
	require.True(t, res.Changed)
	assert.Nil(t, res.Entry.Affected.NewParent)
	assert.Nil(t, res.Entry.Changes.NewState.ParentID)
	assert.Equal(t, 0, *res.Entry.Changes.NewState.Depth)
}

func TestMove_RejectedIntentsAreNoOps(t *testing.T) {
	tests := []struct {
		name     string
		maxDepth int
		source   string
		intent   tree.Intent
	}{
		{"onto itself", 5, "B", tree.Intent{Type: tree.IntentChild, Anchor: "B"}},
		{"into own descendant", 5, "A", tree.Intent{Type: tree.IntentChild, Anchor: "C"}},
		{"beside own descendant", 5, "A", tree.Intent{Type: tree.IntentAfter, Anchor: "F"}},
		{"missing anchor", 5, "B", tree.Intent{Type: tree.IntentBefore, Anchor: "missing"}},
		{"missing source", 5, "missing", tree.Intent{Type: tree.IntentBefore, Anchor: "A"}},
		{"subtree too deep", 3, "G", tree.Intent{Type: tree.IntentChild, Anchor: "A"}},
		{"leaf too deep", 3, "J", tree.Intent{Type: tree.IntentChild, Anchor: "C"}},
		{"unknown intent", 5, "J", tree.Intent{Type: "sideways", Anchor: "A"}},
		{"already in place", 5, "B", tree.Intent{Type: tree.IntentBefore, Anchor: "E"}},
		{"already last root", 5, "G", tree.Intent{Type: tree.IntentAfter, Anchor: "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := sample()
			e := newEngine(tt.maxDepth)

			res := e.Move(forest, tt.source, tt.intent)

			assert.False(t, res.Changed)
			assert.Nil(t, res.Entry)
			assert.Equal(t, shape(forest), shape(res.Forest))
		})
	}
}

func TestCanMove(t *testing.T) {
	e := newEngine(3)
	assert.True(t, e.CanMove(sample(), "J", tree.Intent{Type: tree.IntentChild, Anchor: "B"}))
	assert.False(t, e.CanMove(sample(), "H", tree.Intent{Type: tree.IntentChild, Anchor: "B"}))
}

func TestDrop_UnparentOntoRoot(t *testing.T) {
	e := newEngine(5)
	forest := forestOf("A", "", "B", "A")
	cfg := tree.DefaultDragConfig(5)

	above := tree.Gesture{OffsetX: -30, PointerY: 2, TargetTop: 0, TargetHeight: 20}
	res, intent, found := e.Drop(forest, "B", "A", above, cfg)
	require.True(t, found)
	assert.Equal(t, tree.Intent{Type: tree.IntentBefore, Anchor: "A"}, intent)
	assert.Equal(t, "B,A", shape(res.Forest))

	below := tree.Gesture{OffsetX: -30, PointerY: 18, TargetTop: 0, TargetHeight: 20}
	res, intent, found = e.Drop(forest, "B", "A", below, cfg)
	require.True(t, found)
	assert.Equal(t, tree.IntentAfter, intent.Type)
	assert.Equal(t, "A,B", shape(res.Forest))
}

func TestDrop_NoPlacement(t *testing.T) {
	forest := sample()
	res, _, found := newEngine(5).Drop(forest, "A", "C", tree.Gesture{}, tree.DefaultDragConfig(5))
	assert.False(t, found)
	assert.False(t, res.Changed)
}

func TestDrop_NestWithoutRoomLeavesForestUnchanged(t *testing.T) {
	// X(Y) under B (depth 1) would put Y at depth 3 with maxDepth 3.
	e := newEngine(3)
	forest := forestOf("A", "", "B", "A", "X", "", "Y", "X")
	nest := tree.Gesture{OffsetX: 30, PointerY: 8, TargetTop: 0, TargetHeight: 20}

	res, intent, found := e.Drop(forest, "X", "B", nest, tree.DefaultDragConfig(3))

	require.True(t, found)
	assert.Equal(t, tree.Intent{Type: tree.IntentChild, Anchor: "B"}, intent)
	assert.False(t, res.Changed)
	assert.Nil(t, res.Entry)
	assert.Equal(t, "A(B),X(Y)", shape(res.Forest))
}

// Any sequence of moves keeps the forest acyclic, within the depth bound
// and with the same set of nodes.
func TestMove_RandomSequencesPreserveInvariants(t *testing.T) {
	const maxDepth = 4
	ids := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	types := []tree.IntentType{tree.IntentBefore, tree.IntentAfter, tree.IntentChild, tree.IntentRoot}
	rng := rand.New(rand.NewSource(7))
	e := newEngine(maxDepth)

	forest := sample()
	changed := 0
	for i := 0; i < 500; i++ {
		source := ids[rng.Intn(len(ids))]
		intent := tree.Intent{Type: types[rng.Intn(len(types))], Anchor: ids[rng.Intn(len(ids))]}

		res := e.Move(forest, source, intent)
		if res.Changed {
			changed++
		}
		forest = res.Forest

		flat := tree.Flatten(forest)
		require.Len(t, flat, len(ids), "step %d", i)
		require.Empty(t, tree.Validate(flat, maxDepth), "step %d: %s %v", i, source, intent)
	}
	assert.Positive(t, changed)
}

func TestMove_RootWithoutAnchor(t *testing.T) {
	res := newEngine(5).Move(sample(), "H", tree.Intent{Type: tree.IntentRoot})

	require.True(t, res.Changed)
	assert.Equal(t, "A(B(C,D),E(F)),G(J),H(I)", shape(res.Forest))

	res = newEngine(5).Move(sample(), "G", tree.Intent{Type: tree.IntentRoot})
	assert.False(t, res.Changed, "already the last root")
}
