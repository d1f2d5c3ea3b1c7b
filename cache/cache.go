// Package cache holds translations already obtained during this session.
// Keys are exact source strings — no normalization, no fuzzy matching, no
// size bound, and nothing survives the process.
//
// The cache is valid for exactly one target language. The caller clears it
// when the target language selection changes; the cache does not detect
// language changes itself.
package cache

import "sync"

// Cache is a session-lifetime source text → translated text store.
type Cache struct {
	mu sync.Mutex
	m  map[string]string
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{m: make(map[string]string)}
}

// Get returns the cached translation for text, if present.
func (c *Cache) Get(text string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[text]
	return v, ok
}

// Set records a successful translation.
func (c *Cache) Set(text, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[text] = translated
}

// Clear drops every entry. Called when the target language changes.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]string)
}

// Len returns the number of cached translations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
