package musictext

import (
	"container/list"
	"sync"

	"github.com/zeebo/blake3"
)

// CacheStats counts lookups since the cache was created.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

type cacheEntry struct {
	key [32]byte
	doc *Document
}

// Cache memoizes Process results by the blake3 digest of the raw input.
// Documents it returns are shared between callers and must not be modified.
// Failed inputs are not cached.
type Cache struct {
	pipeline *Pipeline
	maxSize  int

	mu        sync.Mutex
	entries   map[[32]byte]*list.Element
	evictList *list.List
	stats     CacheStats
}

// NewCache wraps p with an LRU of at most maxSize documents. A nil p uses
// the default pipeline; maxSize <= 0 means unbounded.
func NewCache(p *Pipeline, maxSize int) *Cache {
	if p == nil {
		p = defaultPipeline
	}
	if maxSize < 0 {
		maxSize = 0
	}
	return &Cache{
		pipeline:  p,
		maxSize:   maxSize,
		entries:   make(map[[32]byte]*list.Element),
		evictList: list.New(),
	}
}

func (c *Cache) Process(input string) (*Document, error) {
	key := blake3.Sum256([]byte(input))
	if doc, ok := c.get(key); ok {
		return doc, nil
	}
	doc, err := c.pipeline.Process(input)
	if err != nil {
		return nil, err
	}
	return c.put(key, doc), nil
}

func (c *Cache) get(key [32]byte) (*Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.evictList.MoveToFront(ent)
	c.stats.Hits++
	return ent.Value.(*cacheEntry).doc, true
}

// put stores doc unless another goroutine got there first, and returns the
// stored document.
func (c *Cache) put(key [32]byte, doc *Document) *Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(ent)
		return ent.Value.(*cacheEntry).doc
	}
	c.entries[key] = c.evictList.PushFront(&cacheEntry{key: key, doc: doc})
	if c.maxSize > 0 && c.evictList.Len() > c.maxSize {
		if old := c.evictList.Back(); old != nil {
			c.evictList.Remove(old)
			delete(c.entries, old.Value.(*cacheEntry).key)
			c.stats.Evictions++
		}
	}
	return doc
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Clear drops every entry. Statistics are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[[32]byte]*list.Element)
	c.evictList.Init()
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.maxSize
	return s
}
