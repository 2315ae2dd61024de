package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/pkg/filesystem"
	"github.com/doeshing/ytgenius/internal/ports"
)

const sqliteBusyTimeout = 5 * time.Second

// SQLiteStore persists the record list as one row of a key/value table.
type SQLiteStore struct {
	db   *sql.DB
	path string
	key  string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database, defaulting to ~/.ytgenius/history.db.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = filesystem.AppPath("history.db")
	}
	if path != ":memory:" {
		path = filesystem.ExpandPath(path)
		if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and writes serialised.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, path: path, key: domain.HistoryStorageKey}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// sqliteDSN adds a busy timeout so a second terminal writing the same
// database waits for the lock instead of failing with SQLITE_BUSY.
func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, sqliteBusyTimeout.Milliseconds())
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load implements ports.HistoryStorage.
func (s *SQLiteStore) Load() ([]domain.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return decodeRecords([]byte(value), s.path)
}

// Save implements ports.HistoryStorage.
func (s *SQLiteStore) Save(records []domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encodeRecords(records)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key,
		string(data),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ ports.HistoryStorage = (*SQLiteStore)(nil)
