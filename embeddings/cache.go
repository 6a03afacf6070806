package embeddings

import (
	"container/list"
	"context"
	"strings"
	"sync"
)

// QueryCache is an LRU of query vectors keyed by trimmed query text.
type QueryCache struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key string
	vec []float32
}

// NewQueryCache creates a cache; a non-positive capacity returns nil, which caches nothing.
func NewQueryCache(capacity int) *QueryCache {
	if capacity <= 0 {
		return nil
	}
	return &QueryCache{
		cap:   capacity,
		ll:    list.New(),
		items: make(map[string]*list.Element, capacity),
	}
}

// Get returns a copy of the cached vector.
func (c *QueryCache) Get(key string) ([]float32, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return Clone(el.Value.(*cacheEntry).vec), true
	}
	return nil, false
}

// Add stores vec under key, evicting the least recently used entry when full.
func (c *QueryCache) Add(key string, vec []float32) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).vec = Clone(vec)
		c.ll.MoveToFront(el)
		return
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, vec: Clone(vec)})
	if c.ll.Len() > c.cap {
		if back := c.ll.Back(); back != nil {
			c.ll.Remove(back)
			delete(c.items, back.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *QueryCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

type cachedEmbedder struct {
	Embedder
	cache *QueryCache
}

// WithQueryCache memoizes EmbedQuery results of e. Document embedding is not cached.
func WithQueryCache(e Embedder, capacity int) Embedder {
	cache := NewQueryCache(capacity)
	if cache == nil {
		return e
	}
	return &cachedEmbedder{Embedder: e, cache: cache}
}

// Model delegates to the wrapped embedder.
func (c *cachedEmbedder) Model() string {
	return ModelName(c.Embedder, "")
}

func (c *cachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := strings.TrimSpace(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}
	vec, err := c.Embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	return Clone(vec), nil
}
