// Package embedcache provides a content-addressed, disk-persisted cache of
// embedding vectors. Keys are content hashes of normalised text, so
// identical passages from different documents share one entry and a cached
// corpus survives process restarts without re-embedding.
package embedcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/chunker"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

// Cache is a pure memoisation table for embedding vectors. Entries are
// never evicted; the table only grows during normal operation. Safe for
// concurrent use.
type Cache struct {
	mu      sync.RWMutex
	path    string
	entries map[string][]float32
}

// New creates a cache persisted at path. The file is not read until Load
// is called.
func New(path string) *Cache {
	return &Cache{
		path:    path,
		entries: make(map[string][]float32),
	}
}

// Key returns the cache key for text: the SHA-256 hex digest of its
// whitespace-normalised form.
func Key(text string) string {
	sum := sha256.Sum256([]byte(chunker.NormalizeWhitespace(text)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector for text, if present.
func (c *Cache) Get(text string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.entries[Key(text)]
	return vec, ok
}

// Put stores a vector for text. Empty vectors are rejected: the cache must
// never memoise a partial or failed embedding.
func (c *Cache) Put(text string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key(text)] = vec
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Load reads the persisted cache file. A missing file is not an error; a
// corrupt file is logged and ignored, leaving the cache empty. Loading is
// never fatal so a damaged cache can only cost re-embedding work.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		logger.Warn("Embedding cache unreadable, starting empty: %v", err)
		return nil
	}

	entries := make(map[string][]float32)
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("Embedding cache corrupt, starting empty: %v", err)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	logger.Debug("Embedding cache loaded: %d entries", len(entries))
	return nil
}

// Persist writes the cache to disk crash-safely: the full table is written
// to a temporary file in the same directory and atomically renamed over the
// existing cache file, so a crash mid-write never corrupts the on-disk
// cache.
func (c *Cache) Persist() error {
	c.mu.RLock()
	data, err := json.Marshal(c.entries)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", domain.ErrCacheIO, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create cache dir: %v", domain.ErrCacheIO, err)
	}

	tmp, err := os.CreateTemp(dir, ".embedcache-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrCacheIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp file: %v", domain.ErrCacheIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %v", domain.ErrCacheIO, err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename: %v", domain.ErrCacheIO, err)
	}

	logger.Debug("Embedding cache persisted: %d entries", c.Len())
	return nil
}
