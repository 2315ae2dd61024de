package history

import (
	"sync"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/ports"
)

// MemoryStore keeps the serialised record list in memory.
// Records still go through JSON so behaviour matches the durable backends.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreFrom seeds the store with raw bytes, corrupt or not.
func NewMemoryStoreFrom(raw []byte) *MemoryStore {
	return &MemoryStore{data: append([]byte(nil), raw...)}
}

// Load implements ports.HistoryStorage.
func (m *MemoryStore) Load() ([]domain.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeRecords(m.data, "memory")
}

// Save implements ports.HistoryStorage.
func (m *MemoryStore) Save(records []domain.HistoryRecord) error {
	data, err := encodeRecords(records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Raw returns a copy of the stored bytes.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// Saves counts completed Save calls.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

var _ ports.HistoryStorage = (*MemoryStore)(nil)
