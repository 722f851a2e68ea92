// Package sqlite implements the session repository on SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/csvedit/internal/log"
	"github.com/zjrosen/csvedit/internal/sessions/domain"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	cursor_row INTEGER NOT NULL DEFAULT 0,
	cursor_col INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`

// DB owns the SQLite connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if needed) the database at path, applies pragmas and
// brings the schema up to date.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	log.Debug(log.CatStore, "Opening database", "path", path)
	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// dsn applies the pragmas to every pooled connection, not just the first.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(wal)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + filepath.ToSlash(path) + "?" + q.Encode()
}

func (db *DB) migrate() error {
	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}
	log.Info(log.CatStore, "Migrated database", "from", version, "to", schemaVersion)
	return nil
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// SessionRepository returns a repository sharing this connection.
func (db *DB) SessionRepository() domain.SessionRepository {
	return newSessionRepository(db.conn)
}
