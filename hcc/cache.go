package hcc

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"
)

// entityCache memoizes recognizer output. Once full, the oldest key is evicted.
type entityCache struct {
	mu    sync.RWMutex
	m     map[string][]Entity
	order []string
	limit int
}

func newEntityCache(limit int) *entityCache {
	return &entityCache{m: make(map[string][]Entity), limit: limit}
}

func (c *entityCache) get(key string) ([]Entity, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	if !ok {
		return nil, false
	}
	return append([]Entity(nil), v...), true
}

func (c *entityCache) put(key string, v []Entity) {
	if c == nil || c.limit <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[key]; !ok {
		c.order = append(c.order, key)
	}
	c.m[key] = append([]Entity(nil), v...)
	for len(c.order) > c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.m, oldest)
	}
}

func (c *entityCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func cacheKey(text, model string) string {
	h := sha1.Sum([]byte(model + "|" + text))
	return hex.EncodeToString(h[:])
}
