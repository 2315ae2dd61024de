package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/infrastructure/history"
	"github.com/doeshing/ytgenius/internal/pkg/logger"
)

func TestOpenHistoryStorage(t *testing.T) {
	dir := t.TempDir()
	log := logger.Discard()

	t.Run("ephemeral wins over config", func(t *testing.T) {
		cfg := domain.Config{History: domain.HistorySettings{Backend: domain.HistoryBackendSQLite}}
		storage, target, closer := openHistoryStorage(cfg, true, log)
		assert.IsType(t, &history.MemoryStore{}, storage)
		assert.Equal(t, "memory", target)
		assert.Nil(t, closer)
	})

	t.Run("file backend", func(t *testing.T) {
		path := filepath.Join(dir, "history.json")
		cfg := domain.Config{History: domain.HistorySettings{Backend: domain.HistoryBackendFile, Path: path}}
		storage, target, _ := openHistoryStorage(cfg, false, log)
		assert.IsType(t, &history.FileStore{}, storage)
		assert.Equal(t, path, target)
	})

	t.Run("sqlite backend", func(t *testing.T) {
		path := filepath.Join(dir, "history.db")
		cfg := domain.Config{History: domain.HistorySettings{Backend: domain.HistoryBackendSQLite, Path: path}}
		storage, target, closer := openHistoryStorage(cfg, false, log)
		require.NotNil(t, closer)
		defer closer()
		assert.IsType(t, &history.SQLiteStore{}, storage)
		assert.Equal(t, path, target)
	})

	t.Run("unknown backend falls back to file", func(t *testing.T) {
		path := filepath.Join(dir, "other.json")
		cfg := domain.Config{History: domain.HistorySettings{Backend: "redis", Path: path}}
		storage, target, _ := openHistoryStorage(cfg, false, log)
		assert.IsType(t, &history.FileStore{}, storage)
		assert.Equal(t, path, target)
	})
}
