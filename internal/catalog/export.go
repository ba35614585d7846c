package catalog

import "github.com/eykd/shelfmark/internal/store"

// FieldColumns are the extra export columns of the product structure tree.
func FieldColumns() store.Columns[Field] {
	return store.Columns[Field]{
		Headers: []string{"type", "required"},
		Values: func(f Field) []any {
			return []any{string(f.Type), f.Required}
		},
	}
}
