package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eykd/shelfmark/internal/fileio"
)

// fileDocument is the on-disk shape of a JSON history file.
type fileDocument struct {
	History []Entry `json:"history"`
}

// FileLog keeps the history in a single JSON document, newest entry first.
type FileLog struct {
	Path string
}

// NewFileLog returns a log stored at path.
func NewFileLog(path string) *FileLog {
	return &FileLog{Path: path}
}

// Load reads the history. A missing file is an empty history.
func (l *FileLog) Load(_ context.Context) ([]Entry, error) {
	data, err := fileio.ReadIfExists(l.Path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	if len(data) == 0 {
		return []Entry{}, nil
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing history %s: %w", l.Path, err)
	}
	if doc.History == nil {
		doc.History = []Entry{}
	}
	return doc.History, nil
}

// Append prepends e and rewrites the file atomically.
func (l *FileLog) Append(ctx context.Context, e Entry) error {
	current, err := l.Load(ctx)
	if err != nil {
		return err
	}
	doc := fileDocument{History: make([]Entry, 0, len(current)+1)}
	doc.History = append(doc.History, e)
	doc.History = append(doc.History, current...)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := fileio.WriteAtomic(l.Path, ".history", append(data, '\n')); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}
