package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pitabwire/lingua/culture"
)

// DefaultCapacity bounds the number of resolved resources kept per engine.
const DefaultCapacity = 4096

// Key identifies a resolved resource by the exact triple that produced it.
type Key struct {
	BasePath string
	Culture  culture.Tag
	Name     string
}

// CultureKey is the key recording whether a culture has any resources under
// basePath. Resource names are never empty, so it cannot collide with them.
func CultureKey(basePath string, tag culture.Tag) Key {
	return Key{BasePath: basePath, Culture: tag}
}

// State describes the outcome of a cache lookup.
type State int

const (
	// Miss means nothing is known about the key.
	Miss State = iota
	// Hit means a resolved entry is cached.
	Hit
	// Absent means the provider was asked and had nothing for the key.
	Absent
)

func (s State) String() string {
	switch s {
	case Hit:
		return "hit"
	case Absent:
		return "absent"
	default:
		return "miss"
	}
}

// ResourceCache maps resource keys to resolved entries. Every InvalidateAll
// advances a generation counter; writers that resolved against an older
// generation are refused so no entry survives the invalidation it raced with.
type ResourceCache struct {
	mu         sync.RWMutex
	generation uint64
	// a nil entry records a known absence
	entries *lru.Cache[Key, *Entry]
}

// NewResourceCache creates a cache holding at most capacity keys.
// Non-positive capacities use DefaultCapacity.
func NewResourceCache(capacity int) *ResourceCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	entries, err := lru.New[Key, *Entry](capacity)
	if err != nil {
		// lru.New only fails for non-positive sizes, which are excluded above.
		panic(err)
	}

	return &ResourceCache{entries: entries}
}

// Generation returns the current invalidation generation.
func (c *ResourceCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Get looks key up in the current generation.
func (c *ResourceCache) Get(key Key) (*Entry, State) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookup(key)
}

// Lookup is Get restricted to generation; lookups against a stale generation
// always miss.
func (c *ResourceCache) Lookup(generation uint64, key Key) (*Entry, State) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if generation != c.generation {
		return nil, Miss
	}
	return c.lookup(key)
}

func (c *ResourceCache) lookup(key Key) (*Entry, State) {
	entry, ok := c.entries.Get(key)
	switch {
	case !ok:
		return nil, Miss
	case entry == nil:
		return nil, Absent
	default:
		return entry, Hit
	}
}

// Put inserts or overwrites the entry for key.
func (c *ResourceCache) Put(key Key, entry *Entry) {
	if entry == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, entry)
}

// PutAbsent records that the provider holds nothing for key.
func (c *ResourceCache) PutAbsent(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, nil)
}

// Commit stores the outcome of one resolution atomically: every key in absent
// is recorded as missing and, when entry is non-nil, it is stored under hit.
// Nothing is written if the cache was invalidated after generation was read.
// The returned entry is the one callers should use: an entry committed earlier
// for the same key wins so that its decoded values stay shared.
func (c *ResourceCache) Commit(generation uint64, absent []Key, hit Key, entry *Entry) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return entry, false
	}

	for _, key := range absent {
		c.entries.Add(key, nil)
	}

	if entry == nil {
		return nil, true
	}

	if existing, ok := c.entries.Peek(hit); ok && existing != nil {
		return existing, true
	}

	c.entries.Add(hit, entry)
	return entry, true
}

// InvalidateAll drops every entry and returns the new generation.
func (c *ResourceCache) InvalidateAll() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Purge()
	c.generation++
	return c.generation
}

// Len returns the number of cached keys, absences included.
func (c *ResourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries.Len()
}
