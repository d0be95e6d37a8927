// Package cache stores prior analysis results keyed by scope and content
// hashes. Entries are held in process memory; a miss or corrupt entry
// always degrades to normal re-analysis, never to an error.
package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vestigehq/vestige/pkg/models"
	"github.com/zeebo/blake3"
)

// HashFile computes a BLAKE3 hash of a file's contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Key derives a cache key from the analysis scope identifier and the
// content hashes of every file in scope. Any content change anywhere in
// the set yields a different key.
func Key(scopeID string, hashes map[string]string) string {
	paths := make([]string, 0, len(hashes))
	for p := range hashes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := xxhash.New()
	h.WriteString(scopeID)
	for _, p := range paths {
		h.WriteString("\x00")
		h.WriteString(p)
		h.WriteString(":")
		h.WriteString(hashes[p])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Entry is one stored result plus the file hashes it was computed from.
// An entry is valid only while every stored hash still matches the file's
// current hash and the TTL has not elapsed.
type Entry struct {
	Key          string
	Result       *models.WorkspaceAnalysisResult
	StoredHashes map[string]string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// ResultCache is a TTL'd in-memory store of analysis results.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration
	hits    atomic.Uint64
	misses  atomic.Uint64

	// hashFn revalidates stored hashes on Get; injectable for tests.
	hashFn func(path string) (string, error)
	// now is injectable for TTL tests.
	now func() time.Time
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		hashFn:  HashFile,
		now:     time.Now,
	}
}

// Get returns the stored result for key if the entry is fresh and every
// file it covers still hashes to its stored value. Expired or stale
// entries are evicted and count as misses.
func (c *ResultCache) Get(key string) (*models.WorkspaceAnalysisResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if c.now().After(entry.ExpiresAt) || !c.hashesValid(entry) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return entry.Result, true
}

func (c *ResultCache) hashesValid(entry *Entry) bool {
	for path, stored := range entry.StoredHashes {
		current, err := c.hashFn(path)
		if err != nil || current != stored {
			return false
		}
	}
	return true
}

// Set stores a result under key together with the content hashes of the
// files it covers.
func (c *ResultCache) Set(key string, result *models.WorkspaceAnalysisResult, hashes map[string]string) {
	stored := make(map[string]string, len(hashes))
	for p, h := range hashes {
		stored[p] = h
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &Entry{
		Key:          key,
		Result:       result,
		StoredHashes: stored,
		CreatedAt:    now,
		ExpiresAt:    now.Add(c.ttl),
	}
}

// Invalidate removes every entry whose stored file set intersects the
// given paths, for files changed outside the normal analysis flow.
func (c *ResultCache) Invalidate(paths []string) {
	changed := make(map[string]bool, len(paths))
	for _, p := range paths {
		changed[p] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		for p := range entry.StoredHashes {
			if changed[p] {
				delete(c.entries, key)
				break
			}
		}
	}
}

// Stats snapshots hit/miss counters.
func (c *ResultCache) Stats() models.CacheStats {
	c.mu.RLock()
	total := len(c.entries)
	c.mu.RUnlock()

	hits := int64(c.hits.Load())
	misses := int64(c.misses.Load())
	stats := models.CacheStats{
		Hits:         hits,
		Misses:       misses,
		TotalEntries: total,
	}
	if hits+misses > 0 {
		stats.HitRate = float64(hits) / float64(hits+misses)
	}
	return stats
}
