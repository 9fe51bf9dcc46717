package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores blobs in a single kv table.
type SQLite struct {
	db       *sql.DB
	loadStmt *sql.Stmt
	saveStmt *sql.Stmt
}

// OpenSQLite opens (or creates) the database file at path and applies the
// schema.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB NOT NULL);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create kv table: %w", err)
	}

	s := &SQLite{db: db}
	if s.loadStmt, err = db.Prepare(`SELECT value FROM kv WHERE key = ?`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: prepare load: %w", err)
	}
	if s.saveStmt, err = db.Prepare(`INSERT INTO kv(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`); err != nil {
		s.loadStmt.Close()
		db.Close()
		return nil, fmt.Errorf("store: prepare save: %w", err)
	}
	return s, nil
}

func (s *SQLite) Load(key string) ([]byte, error) {
	var value []byte
	err := s.loadStmt.QueryRow(key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read key %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) Save(key string, data []byte) error {
	if _, err := s.saveStmt.Exec(key, data); err != nil {
		return fmt.Errorf("store: write key %s: %w", key, err)
	}
	return nil
}

// Close releases prepared statements and closes the database.
func (s *SQLite) Close() error {
	s.loadStmt.Close()
	s.saveStmt.Close()
	return s.db.Close()
}
