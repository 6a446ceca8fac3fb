// Package storage persists reading history, saved pages, sessions and the
// navigation state between runs.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DBFile is the database file name inside the data directory.
const DBFile = "wikisurf.db"

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
	path string
}

// OpenDB opens (or creates) the database in the given data directory.
func OpenDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer; the history recorder and the prefetcher share it.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	db := &DB{conn: conn, path: dbPath}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// migrate creates the schema if it doesn't exist. Times are unix
// milliseconds.
func (db *DB) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		site       TEXT    NOT NULL,
		title      TEXT    NOT NULL,
		source     TEXT    NOT NULL DEFAULT '',
		visited_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS saved_pages (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		site     TEXT    NOT NULL,
		title    TEXT    NOT NULL,
		html     TEXT    NOT NULL,
		saved_at INTEGER NOT NULL,
		UNIQUE(site, title)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id               TEXT    PRIMARY KEY,
		started_at       INTEGER NOT NULL,
		last_at          INTEGER NOT NULL,
		page_views       INTEGER NOT NULL DEFAULT 0,
		back_presses     INTEGER NOT NULL DEFAULT 0,
		search_taps      INTEGER NOT NULL DEFAULT 0,
		featured_taps    INTEGER NOT NULL DEFAULT 0,
		sources          TEXT    NOT NULL DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_history_visited_at ON history(visited_at DESC);
	CREATE INDEX IF NOT EXISTS idx_history_title ON history(site, title);
	CREATE INDEX IF NOT EXISTS idx_saved_pages_saved_at ON saved_pages(saved_at DESC);
	`

	_, err := db.conn.ExecContext(ctx, schema)
	return err
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
