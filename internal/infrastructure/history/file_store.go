package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/pkg/filesystem"
	"github.com/doeshing/ytgenius/internal/ports"
)

// FileStore keeps the record list as one JSON array in a single file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store at path, defaulting to ~/.ytgenius/history.json.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = filesystem.AppPath("history.json")
	}
	return &FileStore{path: filesystem.ExpandPath(path)}
}

// Load implements ports.HistoryStorage.
func (f *FileStore) Load() ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history %s: %w", f.path, err)
	}
	return decodeRecords(data, f.path)
}

// Save implements ports.HistoryStorage. The file is replaced atomically.
func (f *FileStore) Save(records []domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := encodeRecords(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Chmod(tmpName, domain.DataFilePermissions); err != nil {
		cleanup()
		return fmt.Errorf("chmod history: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func encodeRecords(records []domain.HistoryRecord) ([]byte, error) {
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return data, nil
}

func decodeRecords(data []byte, source string) ([]domain.HistoryRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var records []domain.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, source, err)
	}
	return records, nil
}

var _ ports.HistoryStorage = (*FileStore)(nil)
