package similarity

import (
	"strconv"
	"strings"
	"sync"
)

// Cache memoizes (frame, text) similarity scores for the lifetime of one
// search session. Keys normalize the text so trivially different spellings
// of the same event description share an entry. Goroutine-safe.
type Cache struct {
	mu sync.RWMutex
	m  map[string]float64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{m: make(map[string]float64)}
}

// normalize lowercases and collapses whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func key(frameID int64, text string) string {
	return strconv.FormatInt(frameID, 10) + "\x00" + normalize(text)
}

// Get returns the cached score for (frameID, text), if present.
func (c *Cache) Get(frameID int64, text string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key(frameID, text)]
	return v, ok
}

// Put stores a score for (frameID, text).
func (c *Cache) Put(frameID int64, text string, score float64) {
	c.mu.Lock()
	c.m[key(frameID, text)] = score
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
