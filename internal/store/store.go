// Package store provides SQLite-backed persistence for qatrack.
//
// The store is a plain key-value table: each key holds one serialized blob.
// The module collection, the release label, and the theme flag are three
// independent keys.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fentz26/qatrack/internal/models"
	_ "modernc.org/sqlite"
)

// Well-known blob keys.
const (
	KeyModules        = "modules"
	KeyModulesCorrupt = "modules_corrupt"
	KeyRelease        = "release_name"
	KeyTheme          = "theme_dark"
)

// Store provides access to the qatrack SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Get returns the blob stored under key. The second return value reports
// whether the key was present.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query blob %q: %w", key, err)
	}
	return value, true, nil
}

// Put writes the blob stored under key, replacing any previous value.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO blobs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write blob %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM blobs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}

// Release returns the saved release label, or the default when none is set.
func (s *Store) Release() (string, error) {
	value, ok, err := s.Get(KeyRelease)
	if err != nil {
		return "", err
	}
	if !ok {
		return models.DefaultRelease, nil
	}
	return value, nil
}

// SetRelease persists the release label.
func (s *Store) SetRelease(name string) error {
	return s.Put(KeyRelease, name)
}

// Dark returns the persisted dark-theme flag. Absent means light.
func (s *Store) Dark() (bool, error) {
	value, ok, err := s.Get(KeyTheme)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return value == "true", nil
}

// SetDark persists the dark-theme flag as the string "true" or "false".
func (s *Store) SetDark(dark bool) error {
	return s.Put(KeyTheme, strconv.FormatBool(dark))
}
