// Package ops applies structural and property changes to a forest. Every
// operation works on a copy of its input and returns the next forest along
// with the history entry describing the change; nothing is persisted here.
package ops

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/eykd/shelfmark/internal/history"
	"github.com/eykd/shelfmark/internal/tree"
)

// MaxNameLength bounds node names, in runes.
const MaxNameLength = 200

// IDGenerator allocates node and history entry ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues UUIDv7 strings.
type UUIDGenerator struct{}

// NewID returns a fresh UUIDv7, falling back to v4 if the clock source fails.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SequentialIDs issues Prefix-1, Prefix-2, ... for reproducible output.
type SequentialIDs struct {
	Prefix string
	n      int
}

// NewID returns the next id in the sequence.
func (s *SequentialIDs) NewID() string {
	s.n++
	return fmt.Sprintf("%s-%d", s.Prefix, s.n)
}

// Engine applies mutations to forests of payload P.
type Engine[P any] struct {
	Kind       history.Kind
	MaxDepth   int
	Actor      string
	IDs        IDGenerator      // defaults to UUIDGenerator
	Now        func() time.Time // defaults to time.Now
	NewPayload func() P         // defaults to the zero value
}

// Result is the outcome of one operation. When Changed is false, Forest is
// the input forest and Entry is nil.
type Result[P any] struct {
	Forest  tree.Forest[P]
	Entry   *history.Entry
	Changed bool
}

func unchanged[P any](forest tree.Forest[P]) Result[P] {
	return Result[P]{Forest: forest}
}

// FormatTimestamp renders t as RFC3339 UTC with second precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func (e *Engine[P]) newID() string {
	if e.IDs == nil {
		return UUIDGenerator{}.NewID()
	}
	return e.IDs.NewID()
}

func (e *Engine[P]) timestamp() string {
	if e.Now == nil {
		return FormatTimestamp(time.Now())
	}
	return FormatTimestamp(e.Now())
}

func (e *Engine[P]) newPayload() P {
	if e.NewPayload == nil {
		var zero P
		return zero
	}
	return e.NewPayload()
}

// depthLimit is the deepest allowed depth; roots are at depth 0.
func (e *Engine[P]) depthLimit() int {
	return e.MaxDepth - 1
}

func (e *Engine[P]) entry(action history.Action, ts string, subject history.Subject, message string) *history.Entry {
	return &history.Entry{
		ID:        e.newID(),
		Timestamp: ts,
		Kind:      e.Kind,
		Action:    action,
		Actor:     e.Actor,
		Subject:   subject,
		Details:   history.Details{Message: message},
	}
}

func subjectOf[P any](n tree.FlatNode[P], path []string) history.Subject {
	return history.Subject{
		ID:       n.ID,
		Name:     n.Name,
		Path:     path,
		Metadata: n.Metadata,
	}
}

// ValidateName rejects empty names, names with control characters, and
// names longer than MaxNameLength runes.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", tree.ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name must be %d characters or fewer", tree.ErrInvalidName, MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: name contains a control character", tree.ErrInvalidName)
		}
	}
	return nil
}

func displayPath(path []string) string {
	return strings.Join(path, " > ")
}

func refOf[P any](n *tree.Node[P]) *history.NodeRef {
	if n == nil {
		return nil
	}
	return &history.NodeRef{ID: n.ID, Name: n.Name}
}
