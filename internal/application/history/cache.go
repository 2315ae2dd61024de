// Package history implements the bounded local record of past generation requests.
package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/ports"
)

// Cache is an ordered, newest-first list of HistoryRecords capped at a fixed
// capacity. Every operation re-reads the persisted list, and every mutation
// writes the whole list back before returning.
type Cache struct {
	storage  ports.HistoryStorage
	logger   ports.Logger
	capacity int
	now      func() time.Time

	mu sync.Mutex
}

// Option customises a Cache.
type Option func(*Cache)

// WithCapacity overrides the record limit. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock sets the time source used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache builds a cache over storage.
func NewCache(storage ports.HistoryStorage, logger ports.Logger, opts ...Option) *Cache {
	c := &Cache{
		storage:  storage,
		logger:   logger,
		capacity: domain.HistoryCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capacity returns the maximum number of records kept.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Record stamps a new record for a successful request and appends it.
func (c *Cache) Record(task domain.TaskTag, subType, prompt string, payload domain.ResultPayload) (domain.HistoryRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.loadForUpdate()
	if err != nil {
		return domain.HistoryRecord{}, err
	}
	id := c.now().UnixMilli()
	if len(records) > 0 && id <= records[0].ID {
		id = records[0].ID + 1
	}
	rec := domain.HistoryRecord{
		ID:        id,
		TaskType:  task,
		SubType:   subType,
		Prompt:    prompt,
		Result:    payload,
		CreatedAt: time.UnixMilli(id).UTC(),
	}
	if err := c.insert(records, rec); err != nil {
		return domain.HistoryRecord{}, err
	}
	return rec, nil
}

// Append inserts rec at the front and evicts the oldest records beyond capacity.
// A record whose id is already present replaces the older copy.
func (c *Cache) Append(rec domain.HistoryRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	records, err := c.loadForUpdate()
	if err != nil {
		return err
	}
	return c.insert(records, rec)
}

func (c *Cache) insert(records []domain.HistoryRecord, rec domain.HistoryRecord) error {
	next := make([]domain.HistoryRecord, 0, len(records)+1)
	next = append(next, rec)
	for _, existing := range records {
		if existing.ID != rec.ID {
			next = append(next, existing)
		}
	}
	evicted := 0
	if len(next) > c.capacity {
		evicted = len(next) - c.capacity
		next = next[:c.capacity]
	}
	if err := c.save(next); err != nil {
		return err
	}
	if evicted > 0 {
		c.logger.Debug("history evicted oldest records", map[string]interface{}{"count": evicted})
	}
	return nil
}

// List returns all records, newest first. Missing or corrupt storage reads as empty.
func (c *Cache) List() []domain.HistoryRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Get returns the record with id.
func (c *Cache) Get(id int64) (domain.HistoryRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.load() {
		if rec.ID == id {
			return rec, true
		}
	}
	return domain.HistoryRecord{}, false
}

// Delete removes the record with id. Unknown ids are ignored.
func (c *Cache) Delete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.loadForUpdate()
	if err != nil {
		return err
	}
	next := make([]domain.HistoryRecord, 0, len(records))
	for _, rec := range records {
		if rec.ID != id {
			next = append(next, rec)
		}
	}
	if len(next) == len(records) {
		return nil
	}
	return c.save(next)
}

// Clear removes every record.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(nil)
}

// load is the lenient read used by queries: any failure reads as empty.
func (c *Cache) load() []domain.HistoryRecord {
	records, err := c.storage.Load()
	if err != nil {
		if errors.Is(err, domain.ErrStorageCorrupt) {
			c.logger.Warn("history storage corrupt, starting empty", map[string]interface{}{"error": err.Error()})
		} else {
			c.logger.Error("history storage unreadable", err, nil)
		}
		return []domain.HistoryRecord{}
	}
	return c.bound(records)
}

// loadForUpdate is the read behind mutations. Only corrupt data may be
// replaced; any other failure aborts before the list is written back.
func (c *Cache) loadForUpdate() ([]domain.HistoryRecord, error) {
	records, err := c.storage.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrStorageCorrupt) {
			return nil, fmt.Errorf("read history: %w", err)
		}
		c.logger.Warn("history storage corrupt, starting empty", map[string]interface{}{"error": err.Error()})
		return []domain.HistoryRecord{}, nil
	}
	return c.bound(records), nil
}

func (c *Cache) bound(records []domain.HistoryRecord) []domain.HistoryRecord {
	if len(records) > c.capacity {
		records = records[:c.capacity]
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records
}

func (c *Cache) save(records []domain.HistoryRecord) error {
	if err := c.storage.Save(records); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
