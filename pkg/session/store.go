// Package session keeps the logged in user in a durable local slot so a
// later invocation can re-validate it against the server.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mergington/signupboard/pkg/board"
	_ "modernc.org/sqlite"
)

const currentUserKey = "currentUser"

// ErrCorruptSlot is returned by Load when the stored value cannot be decoded.
var ErrCorruptSlot = errors.New("stored session is corrupt")

type Store struct {
	sql  *sql.DB
	lock *storeLock
	path string
}

// Open opens (and creates if needed) the session database at path.
func Open(path string) (*Store, error) {
	absPath, err := AbsPath(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve session path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o700); err != nil {
		return nil, err
	}

	dsn := "file:" + absPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{sql: db, lock: newStoreLock(absPath), path: absPath}, nil
}

// Path returns the absolute database path.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}
	return s.sql.Close()
}

// Load returns the stored user, or nil when the slot is empty.
func (s *Store) Load(ctx context.Context) (*board.User, error) {
	var raw string
	err := s.sql.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", currentUserKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var u board.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Username == "" {
		return nil, ErrCorruptSlot
	}
	return &u, nil
}

// Save replaces the stored user.
func (s *Store) Save(ctx context.Context, u board.User) error {
	raw, err := json.Marshal(board.User{Username: u.Username, DisplayName: u.DisplayName})
	if err != nil {
		return err
	}
	return s.write(ctx, `INSERT INTO kv(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, currentUserKey, string(raw))
}

// Clear empties the slot.
func (s *Store) Clear(ctx context.Context) error {
	return s.write(ctx, "DELETE FROM kv WHERE key = ?", currentUserKey)
}

func (s *Store) write(ctx context.Context, query string, args ...interface{}) error {
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	_, err := s.sql.ExecContext(ctx, query, args...)
	return err
}
