package sync

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"

	"github.com/docpush/docpush/internal/utils"
	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

const DefaultCacheFile = ".docpush-cache.json"

var ErrCacheLocked = errors.New("cache locked by another docpush process")

// CacheEntry links a local path to its last-synced state. An entry
// exists iff a prior run created the corresponding remote node. Folder
// entries are keyed by their dir path and carry an empty fingerprint.
type CacheEntry struct {
	Fingerprint string `json:"fingerprint"`
	NodeID      string `json:"doc_id"`
	ParentID    string `json:"parent_id"`
}

// IsFolder reports whether the entry tracks a remote folder.
func (e *CacheEntry) IsFolder() bool {
	return e.Fingerprint == ""
}

// Cache persists the path -> CacheEntry mapping across runs. The
// reconciler is its only writer; the on-disk JSON file is the sole
// persisted state of the tool.
type Cache struct {
	path      string
	entries   map[string]*CacheEntry
	corrupted bool
	flock     *flock.Flock
}

func NewCache(path string) *Cache {
	return &Cache{
		path:    path,
		entries: make(map[string]*CacheEntry),
		flock:   flock.New(path + ".lock"),
	}
}

// Lock guards the cache file against a concurrent docpush run on the
// same root.
func (c *Cache) Lock() error {
	locked, err := c.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock cache: %w", err)
	}
	if !locked {
		return ErrCacheLocked
	}
	return nil
}

func (c *Cache) Unlock() error {
	return c.flock.Unlock()
}

// Load reads the mapping from disk. A missing file is an empty mapping.
// A malformed file is recovered by resetting to an empty mapping: the
// run proceeds without duplicate-prevention (every local path will look
// like a Create even if its remote document exists), which is the
// documented self-healing trade-off.
func (c *Cache) Load() error {
	c.corrupted = false
	c.entries = make(map[string]*CacheEntry)

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache %s: %w", c.path, err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		slog.Warn("cache corrupted, starting from an empty cache; remote duplicates are possible this run",
			"path", c.path, "error", err)
		c.corrupted = true
		c.entries = make(map[string]*CacheEntry)
	}
	return nil
}

// Corrupted reports whether the last Load recovered from a malformed file.
func (c *Cache) Corrupted() bool {
	return c.corrupted
}

// Save writes the full mapping atomically (temp file + rename), so a
// crash mid-run never tears the previous valid state.
func (c *Cache) Save() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := utils.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("save cache %s: %w", c.path, err)
	}
	return nil
}

// Reset clears the in-memory mapping and removes the on-disk file.
func (c *Cache) Reset() error {
	c.entries = make(map[string]*CacheEntry)
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reset cache %s: %w", c.path, err)
	}
	return nil
}

func (c *Cache) Get(path string) (*CacheEntry, bool) {
	e, ok := c.entries[path]
	return e, ok
}

func (c *Cache) Set(path string, entry *CacheEntry) {
	c.entries[path] = entry
}

func (c *Cache) Delete(path string) {
	delete(c.entries, path)
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the mapping for the diff engine.
func (c *Cache) Entries() map[string]*CacheEntry {
	return maps.Clone(c.entries)
}
