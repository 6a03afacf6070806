package cache

import (
	"encoding/json"
	"sync"
)

// Map is a concurrency-safe map that serializes to a flat JSON object.
type Map[K comparable, V any] struct {
	data map[K]V
	mu   sync.RWMutex
}

// NewMap creates an empty map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{data: make(map[K]V)}
}

// Get returns the value for key.
func (c *Map[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores value under key.
func (c *Map[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Delete removes key.
func (c *Map[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Snapshot returns a copy of the entries.
func (c *Map[K, V]) Snapshot() map[K]V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[K]V, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// Replace swaps all entries for entries.
func (c *Map[K, V]) Replace(entries map[K]V) {
	next := make(map[K]V, len(entries))
	for k, v := range entries {
		next[k] = v
	}
	c.mu.Lock()
	c.data = next
	c.mu.Unlock()
}

// Data returns the entries as JSON.
func (c *Map[K, V]) Data() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return json.MarshalIndent(c.data, "", "  ")
}

// Load replaces the entries with the JSON object in data.
func (c *Map[K, V]) Load(data []byte) error {
	next := make(map[K]V)
	if err := json.Unmarshal(data, &next); err != nil {
		return err
	}
	c.mu.Lock()
	c.data = next
	c.mu.Unlock()
	return nil
}

// Size returns the number of entries.
func (c *Map[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
