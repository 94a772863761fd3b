package directory

import (
	"container/list"
	"sync"
)

// resultCache is an LRU of search results keyed by candidate set and
// folded query. It is safe for concurrent use.
type resultCache struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	lru     *list.List
}

type cacheEntry struct {
	key     string
	matches []Match
}

func newResultCache(maxSize int) *resultCache {
	if maxSize <= 0 {
		maxSize = 128
	}
	return &resultCache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// get returns a copy of the cached matches so callers may truncate or
// reorder them freely.
func (c *resultCache) get(key string) ([]Match, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)

	entry := elem.Value.(*cacheEntry) //nolint:errcheck // list only holds *cacheEntry
	out := make([]Match, len(entry.matches))
	copy(out, entry.matches)
	return out, true
}

func (c *resultCache) put(key string, matches []Match) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]Match, len(matches))
	copy(stored, matches)

	if elem, ok := c.items[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).matches = stored //nolint:errcheck // list only holds *cacheEntry
		return
	}

	for c.lru.Len() >= c.maxSize {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.lru.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key) //nolint:errcheck // list only holds *cacheEntry
	}

	c.items[key] = c.lru.PushFront(&cacheEntry{key: key, matches: stored})
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
