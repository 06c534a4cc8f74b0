package geometry

import (
	lru "github.com/hashicorp/golang-lru"
)

// Cached memoizes the viewport to precinct resolution of a codestream.
type Cached struct {
	Codestream
	relevant *lru.Cache
}

// NewCached wraps cs with a cache of the last size viewports.
func NewCached(cs Codestream, size int) *Cached {
	if size < 1 {
		size = 1
	}
	c := &Cached{Codestream: cs}
	c.relevant, _ = lru.New(size)
	return c
}

func (c *Cached) RelevantPrecincts(vp Viewport) ([]uint64, error) {
	if c.relevant == nil {
		return c.Codestream.RelevantPrecincts(vp)
	}
	if ids, ok := c.relevant.Get(vp); ok {
		return append([]uint64(nil), ids.([]uint64)...), nil
	}
	ids, err := c.Codestream.RelevantPrecincts(vp)
	if err != nil {
		return nil, err
	}
	c.relevant.Add(vp, append([]uint64(nil), ids...))
	return ids, nil
}

// Purge drops the memoized viewports.
func (c *Cached) Purge() {
	if c.relevant != nil {
		c.relevant.Purge()
	}
}
