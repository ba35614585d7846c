package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eykd/shelfmark/internal/tree"
)

func TestExportXLSX_PreOrderRows(t *testing.T) {
	forest := tree.Rebuild([]tree.FlatNode[item]{
		{ID: "A", Name: "Clothing", Metadata: tree.Metadata{Status: tree.StatusActive}},
		{ID: "B", Name: "Shirts", ParentID: "A"},
		{ID: "C", Name: "Shoes"},
	})

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, "", forest, Columns[item]{}))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	assert.Equal(t, []string{"Sheet1"}, wb.GetSheetList())
	rows, err := wb.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, baseHeaders, rows[0])
	assert.Equal(t, []string{"A", "Clothing", "", "0", "Clothing", "active"}, rows[1])
	assert.Equal(t, []string{"B", "Shirts", "A", "1", "Clothing > Shirts"}, rows[2])
	assert.Equal(t, "C", rows[3][0])
}
