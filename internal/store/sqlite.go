// Package store persists reader state in SQLite: the reading plan and verse
// highlights.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS reading_plan (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	start_date    TEXT NOT NULL,
	duration_days INTEGER NOT NULL,
	current_index INTEGER NOT NULL,
	updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS highlights (
	book       TEXT NOT NULL,
	book_order INTEGER NOT NULL,
	chapter    INTEGER NOT NULL,
	verse      INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (book, chapter, verse)
);
CREATE INDEX IF NOT EXISTS idx_highlights_order ON highlights(book_order, chapter, verse);
`

// DB is an open reader database.
type DB struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path. Use ":memory:" for a
// throwaway database.
func Open(path string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer is all a single-user app needs, and it keeps :memory:
	// databases from splitting across connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug("Database opened", zap.String("path", path))
	return &DB{db: db, path: path, logger: logger}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// Path is the file the database was opened from.
func (d *DB) Path() string { return d.path }

// nullStringOr returns the string value if valid and non-empty, otherwise fallback.
func nullStringOr(s sql.NullString, fallback string) string {
	if s.Valid && s.String != "" {
		return s.String
	}
	return fallback
}

// nullInt64Or returns the int value, or fallback if the value is NULL.
func nullInt64Or(n sql.NullInt64, fallback int) int {
	if !n.Valid {
		return fallback
	}
	return int(n.Int64)
}
