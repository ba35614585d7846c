package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteLog keeps the history in a SQLite table. Entries are stored as
// JSON alongside the columns used for filtering.
type SQLiteLog struct {
	db *sql.DB
}

// OpenSQLiteLog opens (creating if needed) the history database at path.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		ts TEXT NOT NULL,
		kind TEXT NOT NULL,
		action TEXT NOT NULL,
		actor TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		entry JSON NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_subject ON history(subject_id);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteLog{db: db}, nil
}

// Close releases the database.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

// Append inserts e.
func (l *SQLiteLog) Append(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO history (id, ts, kind, action, actor, subject_id, entry) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp, string(e.Kind), string(e.Action), e.Actor, e.Subject.ID, string(data))
	if err != nil {
		return fmt.Errorf("insert history entry %s: %w", e.ID, err)
	}
	return nil
}

// Load returns every entry, newest first.
func (l *SQLiteLog) Load(ctx context.Context) ([]Entry, error) {
	return l.query(ctx, `SELECT entry FROM history ORDER BY seq DESC`)
}

// ForSubject returns the entries about one node, newest first.
func (l *SQLiteLog) ForSubject(ctx context.Context, id string) ([]Entry, error) {
	return l.query(ctx, `SELECT entry FROM history WHERE subject_id = ? ORDER BY seq DESC`, id)
}

func (l *SQLiteLog) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
