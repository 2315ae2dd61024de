package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/ports"
)

func sampleRecords(n int) []domain.HistoryRecord {
	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC).UnixMilli()
	records := make([]domain.HistoryRecord, 0, n)
	for i := n - 1; i >= 0; i-- {
		id := base + int64(i)
		rec := domain.HistoryRecord{
			ID:        id,
			Prompt:    fmt.Sprintf("prompt %d", i),
			CreatedAt: time.UnixMilli(id).UTC(),
		}
		switch i % 3 {
		case 0:
			rec.TaskType = domain.TaskAudit
			rec.Result = domain.NewAuditPayload(domain.AuditResult{Score: i, MissingKeywords: domain.StringList{"go"}})
		case 1:
			rec.TaskType = domain.TaskScript
			rec.Result = domain.NewScriptPayload(domain.ScriptResult{Title: "t", ScriptBody: "# body"})
		default:
			rec.TaskType = domain.TaskMetadata
			rec.SubType = string(domain.MetadataTags)
			rec.Result = domain.NewTextPayload("a, b, c")
		}
		records = append(records, rec)
	}
	return records
}

type backend struct {
	name    string
	open    func(t *testing.T) ports.HistoryStorage
	corrupt func(t *testing.T) ports.HistoryStorage
}

func backends() []backend {
	return []backend{
		{
			name: "file",
			open: func(t *testing.T) ports.HistoryStorage {
				return NewFileStore(filepath.Join(t.TempDir(), "history.json"))
			},
			corrupt: func(t *testing.T) ports.HistoryStorage {
				path := filepath.Join(t.TempDir(), "history.json")
				require.NoError(t, os.WriteFile(path, []byte("[{not json"), 0o644))
				return NewFileStore(path)
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) ports.HistoryStorage {
				store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
				require.NoError(t, err)
				t.Cleanup(func() { _ = store.Close() })
				return store
			},
			corrupt: func(t *testing.T) ports.HistoryStorage {
				store, err := NewSQLiteStore(":memory:")
				require.NoError(t, err)
				t.Cleanup(func() { _ = store.Close() })
				_, err = store.db.Exec("INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)",
					domain.HistoryStorageKey, `{"id":`, "2024-06-10T00:00:00Z")
				require.NoError(t, err)
				return store
			},
		},
		{
			name: "memory",
			open: func(t *testing.T) ports.HistoryStorage {
				return NewMemoryStore()
			},
			corrupt: func(t *testing.T) ports.HistoryStorage {
				return NewMemoryStoreFrom([]byte("definitely not json"))
			},
		},
	}
}

func TestStorageEmptyLoad(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			records, err := b.open(t).Load()
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestStorageRoundTrip(t *testing.T) {
	want := sampleRecords(domain.HistoryCapacity)
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			store := b.open(t)
			require.NoError(t, store.Save(want))

			got, err := store.Load()
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestStorageOverwriteWithEmpty(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			store := b.open(t)
			require.NoError(t, store.Save(sampleRecords(3)))
			require.NoError(t, store.Save(nil))

			got, err := store.Load()
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestStorageCorruptData(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			_, err := b.corrupt(t).Load()
			require.ErrorIs(t, err, domain.ErrStorageCorrupt)
		})
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "nested", "history.json"))
	require.NoError(t, store.Save(sampleRecords(2)))
	require.NoError(t, store.Save(sampleRecords(1)))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "history.json", entries[0].Name())
}

func TestMemoryStoreWritesEmptyArray(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(nil))
	assert.Equal(t, "[]", string(store.Raw()))
	assert.Equal(t, 1, store.Saves())
}

func TestSQLiteStoreWaitsForLocks(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	var timeout int64
	require.NoError(t, store.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, sqliteBusyTimeout.Milliseconds(), timeout)

	second, err := NewSQLiteStore(store.Path())
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Save(sampleRecords(2)))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}
