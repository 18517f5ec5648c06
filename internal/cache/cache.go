// Package cache implements the two-tier cache backing the Tug CLI: a fast
// in-process memory tier in front of a persisted SQLite tier, each with its
// own TTL per entry.
//
// The read path never returns an error. Any disk-tier failure degrades to a
// cache miss (Get) or a skipped write (Set) and is logged; a cache must not
// be able to break the feature it accelerates. Before Initialize succeeds,
// the disk tier no-ops and the cache runs memory-only.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tugapp/tug-cli/internal/logging"
)

// TieredCache is the two-tier cache. Values are stored JSON-serialized in
// both tiers; concurrent readers and writers are safe, with last-write-wins
// semantics on a contended key.
type TieredCache struct {
	mem  *MemoryTier
	path string
	log  *logging.Logger

	mu   sync.Mutex // guards disk during Initialize/Close
	disk *SQLiteTier
}

// New creates a cache whose disk tier will live at path. The disk tier is
// not opened until Initialize is called.
func New(path string, log *logging.Logger) *TieredCache {
	if log == nil {
		log = logging.Nop()
	}
	return &TieredCache{
		mem:  NewMemoryTier(),
		path: path,
		log:  log,
	}
}

// Initialize opens the disk tier. It is idempotent and safe to call more
// than once; a failure leaves the cache memory-only and is not fatal.
func (c *TieredCache) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disk != nil {
		return nil
	}
	disk, err := NewSQLiteTier(c.path)
	if err != nil {
		c.log.Warn("disk cache unavailable, running memory-only", "path", c.path, "error", err)
		return err
	}
	c.disk = disk
	c.log.Debug("disk cache ready", "path", c.path)
	return nil
}

func (c *TieredCache) diskTier() *SQLiteTier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disk
}

// Get returns the serialized payload for key. The memory tier is consulted
// first; on a miss the disk tier is checked and a hit is promoted back into
// memory with its original memory TTL.
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if payload, ok := c.mem.Get(key); ok {
		c.log.Debug("cache hit (memory)", "key", key)
		return payload, true
	}

	disk := c.diskTier()
	if disk == nil {
		return nil, false
	}

	payload, memTTL, ok, err := disk.Get(ctx, key)
	if err != nil {
		c.log.Warn("disk cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	c.mem.Set(key, payload, memTTL)
	c.log.Debug("cache hit (disk, promoted)", "key", key)
	return payload, true
}

// Set writes value to both tiers, overwriting any prior entry. The value is
// JSON-serialized once; a disk write failure is logged and swallowed.
func (c *TieredCache) Set(ctx context.Context, key string, value any, memTTL, diskTTL time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache set skipped, value not serializable", "key", key, "error", err)
		return
	}

	c.mem.Set(key, payload, memTTL)

	if disk := c.diskTier(); disk != nil {
		if err := disk.Set(ctx, key, payload, memTTL, diskTTL); err != nil {
			c.log.Warn("disk cache write failed", "key", key, "error", err)
		}
	}
}

// ClearPrefix removes every entry in both tiers whose key starts with
// prefix. This is the invalidation primitive used after mutations.
func (c *TieredCache) ClearPrefix(ctx context.Context, prefix string) {
	c.mem.DeletePrefix(prefix)
	if disk := c.diskTier(); disk != nil {
		if err := disk.DeletePrefix(ctx, prefix); err != nil {
			c.log.Warn("disk cache prefix clear failed", "prefix", prefix, "error", err)
		}
	}
}

// ClearAll empties both tiers.
func (c *TieredCache) ClearAll(ctx context.Context) {
	c.mem.Clear()
	if disk := c.diskTier(); disk != nil {
		if err := disk.Clear(ctx); err != nil {
			c.log.Warn("disk cache clear failed", "error", err)
		}
	}
}

// Close releases the disk tier, if open.
func (c *TieredCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disk == nil {
		return nil
	}
	err := c.disk.Close()
	c.disk = nil
	return err
}

// Fetch reads key from the cache and unmarshals it into T. A deserialization
// failure is treated as a miss; the stale entry will be overwritten by the
// next Set.
func Fetch[T any](ctx context.Context, c *TieredCache, key string) (T, bool) {
	var out T
	payload, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		c.log.Warn("cache entry undecodable, treating as miss", "key", key, "error", err)
		return out, false
	}
	return out, true
}
