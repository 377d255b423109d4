package cache

import "time"

// SetNowFunc replaces the cache clock.
func (c *Cache) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// BumpGeneration invalidates any in-flight fetch for key, as a newer fetch
// taking over the key would.
func (c *Cache) BumpGeneration(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen[key]++
}
