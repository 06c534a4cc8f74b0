package simplewlru

import (
	"container/list"
)

// Cache is a non-thread safe weighted recency list. It keeps the order and
// the weights of its keys, the values live elsewhere. Entries are never
// evicted implicitly: the owner decides when to Shrink.
type Cache struct {
	weight    uint64
	evictList *list.List
	items     map[uint64]*list.Element
}

// entry is used to hold a key in the evictList
type entry struct {
	key    uint64
	weight uint64
}

// New creates an empty list.
func New() *Cache {
	return &Cache{
		evictList: list.New(),
		items:     make(map[uint64]*list.Element),
	}
}

// Purge is used to completely clear the list.
func (c *Cache) Purge() {
	c.items = make(map[uint64]*list.Element)
	c.evictList.Init()
	c.weight = 0
}

// Add inserts a key as the newest entry, or moves an existing key to the
// newest position and replaces its weight.
func (c *Cache) Add(key uint64, weight uint64) {
	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		existing := ent.Value.(*entry)
		c.weight -= existing.weight
		c.weight += weight
		existing.weight = weight
		return
	}
	c.items[key] = c.evictList.PushFront(&entry{key, weight})
	c.weight += weight
}

// SetWeight changes the weight of a key without updating its recent-ness.
func (c *Cache) SetWeight(key uint64, weight uint64) bool {
	if ent, ok := c.items[key]; ok {
		existing := ent.Value.(*entry)
		c.weight -= existing.weight
		c.weight += weight
		existing.weight = weight
		return true
	}
	return false
}

// Remove removes the provided key from the list, returning if the
// key was contained.
func (c *Cache) Remove(key uint64) (present bool) {
	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
		return true
	}
	return false
}

// Len returns the number of entries in the list.
func (c *Cache) Len() int {
	return c.evictList.Len()
}

// Weight returns the total weight of entries in the list.
func (c *Cache) Weight() uint64 {
	return c.weight
}

// Shrink removes the oldest entries while the total weight exceeds maxWeight
// and more than minLen entries remain. Returns the removed keys, oldest first.
func (c *Cache) Shrink(maxWeight uint64, minLen int) (evicted []uint64) {
	for c.weight > maxWeight && c.Len() > minLen {
		ent := c.evictList.Back()
		c.removeElement(ent)
		evicted = append(evicted, ent.Value.(*entry).key)
	}
	return evicted
}

// removeElement is used to remove a given list element from the list
func (c *Cache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.key)
	c.weight -= kv.weight
}
