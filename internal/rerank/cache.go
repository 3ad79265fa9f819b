package rerank

import (
	"container/list"
	"sync"
)

// AnalysisCache is an LRU cache for analysis results keyed by item and query.
// Image analysis is by far the most expensive step, and repeated queries over
// a static corpus hit the same top candidates.
type AnalysisCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value Analysis
}

// NewAnalysisCache creates a cache holding up to capacity entries.
func NewAnalysisCache(capacity int) *AnalysisCache {
	return &AnalysisCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func cacheKey(itemID, query string) string {
	return itemID + "\x00" + query
}

// Get returns the cached analysis for the item/query pair if present.
// It takes the write lock: a hit moves the entry to the front of the LRU
// list, which mutates the list even on the read path.
func (c *AnalysisCache) Get(itemID, query string) (Analysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[cacheKey(itemID, query)]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return Analysis{}, false
}

// Set stores the analysis, evicting the oldest entry if at capacity.
func (c *AnalysisCache) Set(itemID, query string, value Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(itemID, query)
	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	entry := &cacheEntry{key: key, value: value}
	elem := c.lru.PushFront(entry)
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}
