package datacache

import (
	"github.com/jpipkit/jpip-base/cachemodel"
	"github.com/jpipkit/jpip-base/databin"
)

var _ cachemodel.Inventory = (*Cache)(nil)

func (c *Cache) state(class databin.Class, id uint64) cachemodel.BinState {
	var st cachemodel.BinState
	c.withBin(class, id, func(b bin) {
		st.Length = b.Len()
		st.Complete = b.Complete()
	})
	return st
}

// MainHeaderState implements cachemodel.Inventory.
func (c *Cache) MainHeaderState() cachemodel.BinState {
	return c.state(databin.ClassMainHeader, 0)
}

// TileHeaderIDs implements cachemodel.Inventory.
func (c *Cache) TileHeaderIDs() []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return sortedIDs(c.tileHeaders)
}

// TileHeaderState implements cachemodel.Inventory.
func (c *Cache) TileHeaderState(id uint64) cachemodel.BinState {
	return c.state(databin.ClassTileHeader, id)
}

// PrecinctState implements cachemodel.Inventory.
func (c *Cache) PrecinctState(id uint64) cachemodel.BinState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.precincts[id]
	if !ok {
		return cachemodel.BinState{}
	}
	p.Lock()
	defer p.Unlock()
	return cachemodel.BinState{
		Length:   p.Len(),
		Complete: p.Complete(),
		Layers:   p.CompletedLayers(c.geo.NumLayers()),
	}
}
