package datacache

import (
	"github.com/jpipkit/jpip-base/eviction"
)

// SetEvictionPolicy switches the eviction policy and budget, then evicts
// whatever the new budget doesn't fit.
func (c *Cache) SetEvictionPolicy(policy eviction.Policy, maxBytes uint64) {
	c.evict.SetPolicy(policy, maxBytes)
	if policy != eviction.None && c.evict.Len() == 0 {
		// order was lost while nothing was tracked, rebuild it by id
		c.mu.RLock()
		for _, id := range c.precinctIDs() {
			c.evict.Touch(id, lockedLen(c.precincts[id]))
		}
		c.mu.RUnlock()
	}
	c.Manage()
}

// EvictionPolicy returns the current policy and budget.
func (c *Cache) EvictionPolicy() (eviction.Policy, uint64) {
	return c.evict.Policy()
}

// Manage evicts precincts while the cache is over budget and returns the
// evicted ids.
func (c *Cache) Manage() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evict.Manage(func(id uint64) uint64 {
		p, ok := c.precincts[id]
		if !ok {
			return 0
		}
		delete(c.precincts, id)
		return lockedLen(p)
	})
}

// TakeRemoved returns the precincts evicted since the previous call, so the
// server can be told to forget them.
func (c *Cache) TakeRemoved() []uint64 {
	return c.evict.TakeRemoved()
}
