// Package catalog instantiates the generic forest for the two hierarchies of
// the product dashboard: categories (name only) and product fields (name,
// data type, required flag).
package catalog

import (
	"fmt"
	"strings"

	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
	"github.com/eykd/shelfmark/internal/tree/ops"
)

// Category is the payload of a category node. Categories carry only the
// name held on the node itself.
type Category struct{}

// FieldType is the data type of a product field.
type FieldType string

// Field types.
const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldBoolean     FieldType = "boolean"
	FieldDate        FieldType = "date"
	FieldSelect      FieldType = "select"
	FieldMultiselect FieldType = "multiselect"
	FieldURL         FieldType = "url"
	FieldTimestamp   FieldType = "timestamp"
	FieldEmail       FieldType = "email"
	FieldImage       FieldType = "image"
	FieldCurrency    FieldType = "currency"
	FieldPhone       FieldType = "phone"
	FieldJSON        FieldType = "json"
	FieldMarkdown    FieldType = "markdown"
	FieldColor       FieldType = "color"
)

// FieldTypes lists every field type in display order.
var FieldTypes = []FieldType{
	FieldText, FieldNumber, FieldBoolean, FieldDate, FieldSelect,
	FieldMultiselect, FieldURL, FieldTimestamp, FieldEmail, FieldImage,
	FieldCurrency, FieldPhone, FieldJSON, FieldMarkdown, FieldColor,
}

// ParseFieldType validates s (case-insensitive).
func ParseFieldType(s string) (FieldType, error) {
	want := FieldType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range FieldTypes {
		if t == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown field type %q", s)
}

// Field is the payload of a product structure node.
type Field struct {
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// NewField is the payload given to newly created fields.
func NewField() Field {
	return Field{Type: FieldText}
}

// CodeUnknownFieldType is reported by ValidateFields for a field whose
// stored type is not one of FieldTypes.
const CodeUnknownFieldType = "FLD001"

// ValidateFields reports every field whose type does not parse.
func ValidateFields(flat []tree.FlatNode[Field]) []tree.Problem {
	var problems []tree.Problem
	for _, fn := range flat {
		if _, err := ParseFieldType(string(fn.Payload.Type)); err != nil {
			problems = append(problems, tree.Problem{
				Severity: "error",
				Code:     CodeUnknownFieldType,
				NodeID:   fn.ID,
				Message:  fmt.Sprintf("field %q has unknown type %q", fn.Name, fn.Payload.Type),
			})
		}
	}
	return problems
}

// NewCategoryEngine returns an engine for the category tree.
func NewCategoryEngine(maxDepth int, actor string) *ops.Engine[Category] {
	return &ops.Engine[Category]{
		Kind:     history.KindCategory,
		MaxDepth: maxDepth,
		Actor:    actor,
	}
}

// NewFieldEngine returns an engine for the product structure tree.
func NewFieldEngine(maxDepth int, actor string) *ops.Engine[Field] {
	return &ops.Engine[Field]{
		Kind:       history.KindField,
		MaxDepth:   maxDepth,
		Actor:      actor,
		NewPayload: NewField,
	}
}

// SetRequired flips the required flag of field id.
func SetRequired(e *ops.Engine[Field], forest tree.Forest[Field], id string, required bool) (ops.Result[Field], error) {
	return e.Edit(forest, id, history.ActionRequiredChanged,
		func(n tree.FlatNode[Field]) (Field, ops.PropertyChange, bool, error) {
			p := n.Payload
			if p.Required == required {
				return p, ops.PropertyChange{}, false, nil
			}
			change := ops.PropertyChange{
				Previous: history.State{Required: history.Ptr(p.Required)},
				Next:     history.State{Required: history.Ptr(required)},
				Message:  fmt.Sprintf("Field %q is now %s", n.Name, requiredLabel(required)),
			}
			p.Required = required
			return p, change, true, nil
		})
}

// SetType changes the data type of field id.
func SetType(e *ops.Engine[Field], forest tree.Forest[Field], id string, t FieldType) (ops.Result[Field], error) {
	if _, err := ParseFieldType(string(t)); err != nil {
		return ops.Result[Field]{Forest: forest}, err
	}
	return e.Edit(forest, id, history.ActionTypeChanged,
		func(n tree.FlatNode[Field]) (Field, ops.PropertyChange, bool, error) {
			p := n.Payload
			if p.Type == t {
				return p, ops.PropertyChange{}, false, nil
			}
			change := ops.PropertyChange{
				Previous: history.State{Type: history.Ptr(string(p.Type))},
				Next:     history.State{Type: history.Ptr(string(t))},
				Message:  fmt.Sprintf("Field %q changed type from %s to %s", n.Name, displayType(p.Type), t),
			}
			p.Type = t
			return p, change, true, nil
		})
}

func requiredLabel(required bool) string {
	if required {
		return "required"
	}
	return "optional"
}

func displayType(t FieldType) string {
	if t == "" {
		return "(none)"
	}
	return string(t)
}
