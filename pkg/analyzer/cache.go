package analyzer

import (
	"fmt"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/parser"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

// DefaultCacheSize is the entry limit used by the CLI and server.
const DefaultCacheSize = 1024

// Key identifies the analysis of a statement against a schema. Statements
// that differ only in surrounding whitespace or a trailing semicolon share
// a key.
func Key(query string, s *schema.Schema) string {
	q := xxh3.Hash([]byte(parser.TrimTerminator(query)))
	return fmt.Sprintf("%016x%016x", q, s.Fingerprint())
}

// Cache is a bounded in-memory result cache. When full, the oldest entry
// is evicted. Results are copied on the way in and out, so callers may
// modify what they get. A nil *Cache is a valid, always-empty cache.
type Cache struct {
	mu      sync.Mutex
	limit   int
	entries map[string]*core.Result
	order   []string
	hits    uint64
	misses  uint64
}

// NewCache creates a cache holding at most limit results. A limit of zero
// or less means unbounded.
func NewCache(limit int) *Cache {
	return &Cache{
		limit:   limit,
		entries: make(map[string]*core.Result),
	}
}

// Get returns a copy of the cached result for key.
func (c *Cache) Get(key string) (*core.Result, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return r.Clone(), true
}

// Put stores a copy of r under key.
func (c *Cache) Put(key string, r *core.Result) {
	if c == nil || r == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = r.Clone()

	for c.limit > 0 && len(c.order) > c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
