package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fleetcheck/pkg/target"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every target's history in one database file.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create history db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite busy timeout: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS history (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id TEXT NOT NULL,
	name TEXT NOT NULL,
	checked_at TEXT NOT NULL,
	up INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS history_target ON history (target_id, seq);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, t target.Target, rec Record) error {
	up := 0
	if rec.Up {
		up = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (target_id, name, checked_at, up) VALUES (?, ?, ?, ?)`,
		string(t.ID), t.Name, rec.At.UTC().Format(time.RFC3339Nano), up)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Records(ctx context.Context, t target.Target) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT checked_at, up FROM history WHERE target_id = ? ORDER BY seq`, string(t.ID))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var ts string
		var up int
		if err := rows.Scan(&ts, &up); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			continue
		}
		records = append(records, Record{At: at, Up: up != 0})
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
