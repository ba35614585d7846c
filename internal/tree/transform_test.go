package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tenNodes is a 3-level, 10-node forest:
//
//	A(B(C,D),E(F)),G(H(I),J)
func tenNodes() Forest[label] {
	return build(
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

func TestFlatten_PreOrderWithResolvedParents(t *testing.T) {
	flat := Flatten(tenNodes())

	ids := make([]string, len(flat))
	parents := make([]string, len(flat))
	for i, fn := range flat {
		ids[i] = fn.ID
		parents[i] = fn.ParentID
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}, ids)
	assert.Equal(t, []string{"", "A", "B", "B", "A", "E", "", "G", "H", "G"}, parents)
}

func TestFlatten_IgnoresStoredParentIDs(t *testing.T) {
	// Nested input whose ParentID fields disagree with the structure.
	forest := Forest[label]{{
		ID:       "A",
		ParentID: "bogus",
		Children: []*Node[label]{{ID: "B", ParentID: "also-bogus"}},
	}}

	flat := Flatten(forest)

	require.Len(t, flat, 2)
	assert.Equal(t, Root, flat[0].ParentID)
	assert.Equal(t, "A", flat[1].ParentID)
}

func TestRoundTrip_RebuildFlattenReproducesForest(t *testing.T) {
	original := tenNodes()

	got := Rebuild(Flatten(original))

	if diff := cmp.Diff(original, got); diff != "" {
		t.Errorf("rebuild(flatten(F)) differs from F (-want +got):\n%s", diff)
	}
	assert.Equal(t, "A(B(C,D),E(F)),G(H(I),J)", shape(got))
}

func TestRoundTrip_EmptyForest(t *testing.T) {
	got := Rebuild(Flatten(Forest[label]{}))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRebuild_DoesNotShareNodesWithInput(t *testing.T) {
	original := tenNodes()
	copyOf := Rebuild(Flatten(original))

	copyOf[0].Name = "changed"
	copyOf[0].Children[0].Children = nil

	assert.Equal(t, "nA", original[0].Name)
	assert.Equal(t, "A(B(C,D),E(F)),G(H(I),J)", shape(original))
}

func TestRebuild_SiblingOrderFollowsFlatOrder(t *testing.T) {
	// Children listed before their parent still attach in flat order.
	got := Rebuild([]FlatNode[label]{
		fl("C2", "P"),
		fl("P", ""),
		fl("C1", "P"),
	})
	assert.Equal(t, "P(C2,C1)", shape(got))
}

func TestRebuild_DanglingParentBecomesRoot(t *testing.T) {
	got := Rebuild([]FlatNode[label]{
		fl("A", ""),
		fl("B", "missing"),
	})
	assert.Equal(t, "A,B", shape(got))
	assert.Equal(t, Root, got[1].ParentID)
}

func TestRebuildWith_RejectPolicy(t *testing.T) {
	tests := []struct {
		name    string
		flat    []FlatNode[label]
		wantErr error
	}{
		{
			name:    "dangling parent",
			flat:    []FlatNode[label]{fl("A", ""), fl("B", "missing")},
			wantErr: ErrDanglingParent,
		},
		{
			name:    "duplicate id",
			flat:    []FlatNode[label]{fl("A", ""), fl("A", "")},
			wantErr: ErrDuplicateID,
		},
		{
			name:    "two-node cycle",
			flat:    []FlatNode[label]{fl("A", "B"), fl("B", "A")},
			wantErr: ErrCycle,
		},
		{
			name:    "self parent",
			flat:    []FlatNode[label]{fl("A", "A")},
			wantErr: ErrCycle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RebuildWith(tt.flat, DanglingReject)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRebuildWith_LenientBreaksCycles(t *testing.T) {
	// A -> B -> C -> A, plus D hanging off C.
	got, err := RebuildWith([]FlatNode[label]{
		fl("A", "C"),
		fl("B", "A"),
		fl("C", "B"),
		fl("D", "C"),
	}, DanglingAsRoot)
	require.NoError(t, err)

	// Walking up from A re-enters at A, which is promoted.
	assert.Equal(t, "A(B(C(D)))", shape(got))
}

func TestRebuildWith_LenientDropsLaterDuplicates(t *testing.T) {
	first := fl("A", "")
	first.Name = "first"
	second := fl("A", "")
	second.Name = "second"

	got, err := RebuildWith([]FlatNode[label]{first, second}, DanglingAsRoot)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Name)
}

func TestParseDanglingPolicy(t *testing.T) {
	p, err := ParseDanglingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DanglingAsRoot, p)

	p, err = ParseDanglingPolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, DanglingReject, p)

	_, err = ParseDanglingPolicy("drop")
	assert.Error(t, err)
}

func TestClone_IsDeep(t *testing.T) {
	original := build("A", "", "B", "A")
	c := Clone(original)
	c[0].Children[0].Name = "renamed"
	assert.Equal(t, "nB", original[0].Children[0].Name)
}
