package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeJSON_RootParentIsNull(t *testing.T) {
	forest := build("A", "", "B", "A")
	forest[0].Children[0].Payload = label{Tag: "x"}

	data, err := json.Marshal(forest)
	require.NoError(t, err)

	assert.JSONEq(t, `[{
		"id": "A", "name": "nA", "parentId": null,
		"children": [
			{"id": "B", "name": "nB", "parentId": "A", "children": [], "tag": "x"}
		]
	}]`, string(data))
}

func TestNodeJSON_MetadataOmittedWhenEmpty(t *testing.T) {
	n := Node[label]{ID: "A", Name: "a", Metadata: Metadata{CreatedAt: "2024-01-02T03:04:05Z", Status: StatusActive}}

	data, err := json.Marshal(n)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "A", "name": "a", "parentId": null, "children": [],
		"metadata": {"createdAt": "2024-01-02T03:04:05Z", "status": "active"}
	}`, string(data))
}

func TestNodeJSON_DecodeNested(t *testing.T) {
	var forest Forest[label]
	err := json.Unmarshal([]byte(`[
		{"id": "A", "name": "a", "parentId": null, "children": [
			{"id": "B", "name": "b", "parentId": "A", "tag": "t"}
		]}
	]`), &forest)
	require.NoError(t, err)

	require.Len(t, forest, 1)
	assert.Equal(t, Root, forest[0].ParentID)
	require.Len(t, forest[0].Children, 1)
	b := forest[0].Children[0]
	assert.Equal(t, "A", b.ParentID)
	assert.Equal(t, "t", b.Payload.Tag)
	assert.NotNil(t, b.Children)
}

func TestFlatNodeJSON_RoundTrip(t *testing.T) {
	in := []FlatNode[label]{
		{ID: "A", Name: "a"},
		{ID: "B", Name: "b", ParentID: "A", Payload: label{Tag: "t"}},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id": "A", "name": "a", "parentId": null},
		{"id": "B", "name": "b", "parentId": "A", "tag": "t"}
	]`, string(data))

	var out []FlatNode[label]
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestFlatNodeJSON_MissingParentIsRoot(t *testing.T) {
	var fn FlatNode[label]
	require.NoError(t, json.Unmarshal([]byte(`{"id": "A", "name": "a"}`), &fn))
	assert.Equal(t, Root, fn.ParentID)
}

func TestInlinePayload_RejectsNonObject(t *testing.T) {
	_, err := json.Marshal(Node[int]{ID: "A", Payload: 3})
	assert.Error(t, err)
}
