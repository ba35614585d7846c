package store

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eykd/shelfmark/internal/tree"
)

// Columns adds payload-specific columns to an export.
type Columns[P any] struct {
	Headers []string
	Values  func(p P) []any
}

var baseHeaders = []string{"id", "name", "parentId", "depth", "path", "status", "createdAt", "updatedAt"}

// ExportXLSX writes forest as one flat sheet, one row per node in pre-order,
// followed by the payload columns.
func ExportXLSX[P any](w io.Writer, sheet string, forest tree.Forest[P], cols Columns[P]) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, 0, len(baseHeaders)+len(cols.Headers))
	for _, h := range append(append([]string{}, baseHeaders...), cols.Headers...) {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	idx := tree.NewIndex(forest)
	row := 2
	var werr error
	tree.Walk(forest, func(n *tree.Node[P], depth int) bool {
		values := []any{
			n.ID,
			n.Name,
			idx.ParentID(n.ID),
			depth,
			strings.Join(idx.Path(n.ID), " > "),
			string(n.Metadata.Status),
			n.Metadata.CreatedAt,
			n.Metadata.UpdatedAt,
		}
		if cols.Values != nil {
			values = append(values, cols.Values(n.Payload)...)
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			werr = err
			return false
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			werr = fmt.Errorf("writing row %d: %w", row, err)
			return false
		}
		row++
		return true
	})
	if werr != nil {
		return werr
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
