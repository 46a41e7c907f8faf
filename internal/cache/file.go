package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"synthkit/internal/logger"
	"synthkit/internal/models"
)

// maxWriteFailures is the number of consecutive disk-write failures after
// which the cache stops persisting and serves from memory only.
const maxWriteFailures = 3

// FileCache implements Service with one file per entry on durable storage,
// so cached values survive a process restart. An in-memory index guarded by
// a mutex fronts the files; file I/O happens outside the critical section.
type FileCache struct {
	dir          string
	writeTimeout time.Duration
	logger       logger.Service

	mutex         sync.Mutex
	index         map[string]*entryRecord
	writeFailures int
	degraded      bool
}

// entryRecord is the serialized form of a cache entry
type entryRecord struct {
	Key          string          `json:"key"`
	Payload      json.RawMessage `json:"payload"`
	CreatedAt    time.Time       `json:"created_at"`
	TTLSeconds   float64         `json:"ttl_seconds"`
	Hits         int64           `json:"hits"`
	LastAccessed time.Time       `json:"last_accessed"`
}

func (e *entryRecord) expiresAt() time.Time {
	return e.CreatedAt.Add(time.Duration(e.TTLSeconds * float64(time.Second)))
}

// NewFileCache creates a file-backed cache rooted at dir, loading any
// entries a previous process left behind
func NewFileCache(dir string, writeTimeout time.Duration, loggerService logger.Service) (Service, error) {
	return newFileCache(dir, writeTimeout, loggerService)
}

// newFileCache creates the concrete implementation
func newFileCache(dir string, writeTimeout time.Duration, loggerService logger.Service) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create cache directory: %v", models.ErrCachePersistence, err)
	}

	cache := &FileCache{
		dir:          dir,
		writeTimeout: writeTimeout,
		logger:       loggerService,
		index:        make(map[string]*entryRecord),
	}

	if err := cache.loadIndex(); err != nil {
		return nil, err
	}

	return cache, nil
}

// loadIndex reads all persisted entries into the in-memory index.
// Unparseable files are removed rather than failing startup.
func (f *FileCache) loadIndex() error {
	dirEntries, err := os.ReadDir(f.dir)
	if err != nil {
		return fmt.Errorf("%w: failed to read cache directory: %v", models.ErrCachePersistence, err)
	}

	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}

		// Temp files left behind by an interrupted or abandoned write
		if strings.HasSuffix(dirEntry.Name(), ".tmp") {
			_ = os.Remove(filepath.Join(f.dir, dirEntry.Name()))
			continue
		}

		if !strings.HasSuffix(dirEntry.Name(), ".json") {
			continue
		}

		path := filepath.Join(f.dir, dirEntry.Name())
		record, err := readEntryFile(path)
		if err != nil {
			f.logger.LogError(context.Background(), logger.OpCachePersist, dirEntry.Name(),
				"Removing unreadable cache entry", err, models.LogSeverityLow, nil)
			_ = os.Remove(path)
			continue
		}

		f.index[record.Key] = record
	}

	return nil
}

// Get retrieves a cached value for the given key. Values come back as the
// JSON encoding of what was stored.
func (f *FileCache) Get(ctx context.Context, key string) (interface{}, error) {
	f.mutex.Lock()
	record, exists := f.index[key]
	if exists && time.Now().After(record.expiresAt()) {
		delete(f.index, key)
		f.mutex.Unlock()

		f.removeEntryFile(ctx, key)
		return nil, models.ErrCacheMiss
	}
	if exists {
		record.Hits++
		record.LastAccessed = time.Now().UTC()
		payload := record.Payload
		f.mutex.Unlock()
		return string(payload), nil
	}
	f.mutex.Unlock()

	return nil, models.ErrCacheMiss
}

// Set stores a value with the specified TTL and persists it to disk.
// A failed disk write degrades to memory-only operation instead of
// failing the caller.
func (f *FileCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	now := time.Now().UTC()
	record := &entryRecord{
		Key:          key,
		Payload:      payload,
		CreatedAt:    now,
		TTLSeconds:   ttl.Seconds(),
		LastAccessed: now,
	}

	// Serialize before the record is shared through the index: once
	// indexed, concurrent Gets mutate its hit counters
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	f.mutex.Lock()
	f.index[key] = record
	degraded := f.degraded
	f.mutex.Unlock()

	if degraded {
		return nil
	}

	if err := f.persistEntry(key, data); err != nil {
		f.recordWriteFailure(ctx, key, err)
		return nil
	}

	f.mutex.Lock()
	f.writeFailures = 0
	f.mutex.Unlock()

	return nil
}

// Delete removes an entry from the cache and from disk
func (f *FileCache) Delete(ctx context.Context, key string) error {
	f.mutex.Lock()
	delete(f.index, key)
	f.mutex.Unlock()

	f.removeEntryFile(ctx, key)
	return nil
}

// DeletePattern removes all entries whose key contains substring
func (f *FileCache) DeletePattern(ctx context.Context, substring string) (int, error) {
	f.mutex.Lock()
	var matched []string
	for key := range f.index {
		if strings.Contains(key, substring) {
			matched = append(matched, key)
			delete(f.index, key)
		}
	}
	f.mutex.Unlock()

	for _, key := range matched {
		f.removeEntryFile(ctx, key)
	}

	return len(matched), nil
}

// PurgeExpired removes all expired entries and reports how many were removed
func (f *FileCache) PurgeExpired(ctx context.Context) (int, error) {
	now := time.Now()

	f.mutex.Lock()
	var expired []string
	for key, record := range f.index {
		if now.After(record.expiresAt()) {
			expired = append(expired, key)
			delete(f.index, key)
		}
	}
	f.mutex.Unlock()

	for _, key := range expired {
		f.removeEntryFile(ctx, key)
	}

	return len(expired), nil
}

// Size returns the current number of indexed entries (for monitoring)
func (f *FileCache) Size() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.index)
}

// Degraded reports whether the cache has given up on disk persistence
func (f *FileCache) Degraded() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.degraded
}

// persistEntry writes the serialized entry to a uniquely named temp file and
// renames it into place, bounded by the configured write timeout. A write
// that outlives the timeout is abandoned: its temp file is discarded and the
// rename suppressed, so a slow write can never resurrect an entry that was
// deleted in the meantime.
func (f *FileCache) persistEntry(key string, data []byte) error {
	done := make(chan error, 1)
	abandoned := new(bool) // guarded by f.mutex

	go func() {
		tmpFile, err := os.CreateTemp(f.dir, "write-*.tmp")
		if err != nil {
			done <- err
			return
		}
		tmpPath := tmpFile.Name()

		_, writeErr := tmpFile.Write(data)
		closeErr := tmpFile.Close()
		if writeErr != nil || closeErr != nil {
			_ = os.Remove(tmpPath)
			if writeErr != nil {
				done <- writeErr
			} else {
				done <- closeErr
			}
			return
		}

		// The rename and the abandoned check share the cache mutex so a
		// timed-out caller can't observe the entry landing afterwards
		f.mutex.Lock()
		if *abandoned {
			f.mutex.Unlock()
			_ = os.Remove(tmpPath)
			return
		}
		renameErr := os.Rename(tmpPath, f.entryPath(key))
		f.mutex.Unlock()

		if renameErr != nil {
			_ = os.Remove(tmpPath)
		}
		done <- renameErr
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrCachePersistence, err)
		}
		return nil
	case <-time.After(f.writeTimeout):
		f.mutex.Lock()
		*abandoned = true
		f.mutex.Unlock()
		return fmt.Errorf("%w: disk write timed out after %v", models.ErrCachePersistence, f.writeTimeout)
	}
}

// recordWriteFailure counts consecutive persistence failures and flips the
// cache into memory-only mode once the threshold is reached
func (f *FileCache) recordWriteFailure(ctx context.Context, key string, err error) {
	f.mutex.Lock()
	f.writeFailures++
	justDegraded := false
	if f.writeFailures >= maxWriteFailures && !f.degraded {
		f.degraded = true
		justDegraded = true
	}
	f.mutex.Unlock()

	f.logger.LogError(ctx, logger.OpCachePersist, key,
		"Failed to persist cache entry, serving from memory", err, models.LogSeverityLow, nil)

	if justDegraded {
		f.logger.LogError(ctx, logger.OpCachePersist, "",
			"Repeated disk failures, cache degraded to memory-only operation", err,
			models.LogSeverityHigh, map[string]interface{}{
				"consecutive_failures": maxWriteFailures,
			})
	}
}

// removeEntryFile deletes the entry's backing file, if any
func (f *FileCache) removeEntryFile(ctx context.Context, key string) {
	if err := os.Remove(f.entryPath(key)); err != nil && !os.IsNotExist(err) {
		f.logger.LogError(ctx, logger.OpCacheEvict, key,
			"Failed to remove cache entry file", err, models.LogSeverityLow, nil)
	}
}

// entryPath maps a cache key to its file, named by the key's hash so
// arbitrary keys stay filesystem-safe
func (f *FileCache) entryPath(key string) string {
	digest := sha256.Sum256([]byte(key))
	return filepath.Join(f.dir, hex.EncodeToString(digest[:])+".json")
}

// readEntryFile parses one persisted entry
func readEntryFile(path string) (*entryRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCachePersistence, err)
	}

	var record entryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCacheCorrupted, err)
	}
	if record.Key == "" {
		return nil, fmt.Errorf("%w: entry has no key", models.ErrCacheCorrupted)
	}

	return &record, nil
}
