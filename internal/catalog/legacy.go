package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eykd/shelfmark/internal/tree"
	"github.com/eykd/shelfmark/internal/tree/ops"
)

// legacyCategory is one entry of the ingestion pipeline's category file
// (arvore_categorias.json): dotted positional ids and Portuguese keys.
type legacyCategory struct {
	ID            string           `json:"id"`
	Name          string           `json:"nome"`
	Subcategories []legacyCategory `json:"subcategorias"`
}

type legacyDocument struct {
	Categories []legacyCategory `json:"categorias"`
}

type legacyFrame struct {
	cat      legacyCategory
	parentID string
}

// ImportLegacy converts a {"categorias": [...]} document into a category
// forest. Every node gets a fresh id from ids, since the dotted ids of the
// legacy file encode position rather than identity. Empty names are
// skipped along with their subtrees.
func ImportLegacy(data []byte, ids ops.IDGenerator, now time.Time) (tree.Forest[Category], error) {
	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing legacy categories: %w", err)
	}
	if ids == nil {
		ids = ops.UUIDGenerator{}
	}
	ts := ops.FormatTimestamp(now)

	var flat []tree.FlatNode[Category]
	stack := make([]legacyFrame, 0, len(doc.Categories))
	for i := len(doc.Categories) - 1; i >= 0; i-- {
		stack = append(stack, legacyFrame{cat: doc.Categories[i], parentID: tree.Root})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		name := strings.TrimSpace(top.cat.Name)
		if name == "" {
			continue
		}
		id := ids.NewID()
		flat = append(flat, tree.FlatNode[Category]{
			ID:       id,
			Name:     name,
			ParentID: top.parentID,
			Metadata: tree.Metadata{CreatedAt: ts, UpdatedAt: ts, Status: tree.StatusActive},
		})
		subs := top.cat.Subcategories
		for i := len(subs) - 1; i >= 0; i-- {
			stack = append(stack, legacyFrame{cat: subs[i], parentID: id})
		}
	}
	return tree.RebuildWith(flat, tree.DanglingReject)
}
