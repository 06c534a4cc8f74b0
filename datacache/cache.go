// Package datacache is the client data-bin cache: it stores the data-bins
// received for one codestream, answers completeness queries and evicts
// precincts once over budget.
//
// Locking: the cache lock guards the bin maps, every bin has its own lock.
// Ingest and reads hold the cache read lock plus the bin lock, so unrelated
// bins are accessed concurrently. Eviction and snapshot loading hold the
// cache write lock.
package datacache

import (
	"math"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/jpipkit/jpip-base/databin"
	"github.com/jpipkit/jpip-base/eviction"
	"github.com/jpipkit/jpip-base/geometry"
	"github.com/jpipkit/jpip-base/wire"
)

// ErrNotCached is returned when reading a data-bin the cache doesn't hold.
var ErrNotCached = errors.New("data-bin not cached")

// Cache holds the data-bins of one codestream.
type Cache struct {
	mu sync.RWMutex

	geo geometry.Codestream

	mainHeader  *databin.Bin
	tileHeaders map[uint64]*databin.Bin
	precincts   map[uint64]*databin.Precinct
	metadata    map[uint64]*databin.Bin

	evict *eviction.Manager

	log log.Logger
}

// bin is what the cache reads from data-bins of any class.
type bin interface {
	Lock()
	Unlock()
	Len() uint64
	Complete() bool
	Bytes() []byte
	ReadAt(offset uint64, n int) ([]byte, error)
}

// New creates an empty cache of the codestream.
func New(geo geometry.Codestream, cfg Config) *Cache {
	return &Cache{
		geo:         geo,
		mainHeader:  databin.NewBin(databin.ID{Class: databin.ClassMainHeader}),
		tileHeaders: make(map[uint64]*databin.Bin),
		precincts:   make(map[uint64]*databin.Precinct),
		metadata:    make(map[uint64]*databin.Bin),
		evict:       eviction.New(cfg.Eviction, cfg.MaxBytes),
		log:         log.New("module", "datacache"),
	}
}

// Ingest stores the body of one message in its data-bin. Messages are routed
// by base class, extended precincts record their Aux as a layer checkpoint.
// A rejected message leaves the cache unchanged.
func (c *Cache) Ingest(msg *wire.Message) error {
	if msg.EOR {
		return nil
	}
	switch msg.Class.Base() {
	case databin.ClassPrecinct:
		return c.ingestPrecinct(msg)
	case databin.ClassTileHeader:
		if msg.InClassID != 0 {
			// single tile codestreams only
			c.log.Warn("Ignoring header of a tile other than 0", "tile", msg.InClassID)
			return nil
		}
		return c.ingestBin(c.tileHeaders, msg)
	case databin.ClassMainHeader:
		c.mu.RLock()
		defer c.mu.RUnlock()
		return addSegment(c.mainHeader, msg)
	case databin.ClassMetadata:
		return c.ingestBin(c.metadata, msg)
	}
	// tile data-bins are never stored
	return nil
}

func addSegment(b *databin.Bin, msg *wire.Message) error {
	b.Lock()
	defer b.Unlock()
	return b.AddSegment(msg.Body, msg.Offset, msg.Last)
}

func (c *Cache) ingestPrecinct(msg *wire.Message) error {
	var layer uint32
	if msg.Class.HasAux() {
		if msg.Aux > math.MaxUint32 {
			return errors.Wrapf(databin.ErrCheckpointRange, "aux %d", msg.Aux)
		}
		layer = uint32(msg.Aux)
	}
	id := msg.InClassID

	p := c.rlockPrecinct(id)
	p.Lock()
	err := p.AddSegment(msg.Body, msg.Offset, msg.Last, layer)
	size := p.Len()
	p.Unlock()
	if err != nil {
		c.mu.RUnlock()
		c.dropEmptyPrecinct(id, p)
		return errors.Wrapf(err, "precinct %d", id)
	}
	c.evict.Touch(id, size)
	c.mu.RUnlock()

	if c.evict.OverBudget() {
		c.Manage()
	}
	return nil
}

func (c *Cache) ingestBin(bins map[uint64]*databin.Bin, msg *wire.Message) error {
	b := c.rlockBin(bins, msg.ID())
	defer c.mu.RUnlock()
	if err := addSegment(b, msg); err != nil {
		return errors.Wrap(err, msg.ID().String())
	}
	return nil
}

// rlockPrecinct returns the precinct, creating it if needed, with the cache
// read lock held.
func (c *Cache) rlockPrecinct(id uint64) *databin.Precinct {
	for {
		c.mu.RLock()
		if p, ok := c.precincts[id]; ok {
			return p
		}
		c.mu.RUnlock()

		c.mu.Lock()
		if _, ok := c.precincts[id]; !ok {
			c.precincts[id] = databin.NewPrecinct(id)
		}
		c.mu.Unlock()
	}
}

// dropEmptyPrecinct removes a precinct created for a rejected segment, unless
// another ingest has filled it meanwhile.
func (c *Cache) dropEmptyPrecinct(id uint64, p *databin.Precinct) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.precincts[id] != p {
		return
	}
	p.Lock()
	empty := p.Len() == 0 && !p.Complete()
	p.Unlock()
	if empty {
		delete(c.precincts, id)
		c.evict.Forget(id)
	}
}

// rlockBin is rlockPrecinct for the other classes. The maps are never
// replaced, only emptied.
func (c *Cache) rlockBin(bins map[uint64]*databin.Bin, id databin.ID) *databin.Bin {
	for {
		c.mu.RLock()
		if b, ok := bins[id.InClassID]; ok {
			return b
		}
		c.mu.RUnlock()

		c.mu.Lock()
		if _, ok := bins[id.InClassID]; !ok {
			bins[id.InClassID] = databin.NewBin(id)
		}
		c.mu.Unlock()
	}
}

// lookup finds a data-bin, the caller holds the cache read lock.
func (c *Cache) lookup(class databin.Class, id uint64) (bin, bool) {
	switch class.Base() {
	case databin.ClassMainHeader:
		return c.mainHeader, id == 0
	case databin.ClassTileHeader:
		b, ok := c.tileHeaders[id]
		return b, ok
	case databin.ClassPrecinct:
		p, ok := c.precincts[id]
		return p, ok
	case databin.ClassMetadata:
		b, ok := c.metadata[id]
		return b, ok
	}
	return nil, false
}

// withBin calls fn with the data-bin locked. Returns false if it is not cached.
func (c *Cache) withBin(class databin.Class, id uint64, fn func(b bin)) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.lookup(class, id)
	if !ok {
		return false
	}
	b.Lock()
	defer b.Unlock()
	fn(b)
	return true
}

// IsComplete reports whether the last byte of the data-bin has been received.
func (c *Cache) IsComplete(class databin.Class, id uint64) bool {
	var complete bool
	c.withBin(class, id, func(b bin) {
		complete = b.Complete()
	})
	return complete
}

// Length is the number of contiguous bytes held of the data-bin.
func (c *Cache) Length(class databin.Class, id uint64) uint64 {
	var n uint64
	c.withBin(class, id, func(b bin) {
		n = b.Len()
	})
	return n
}

// Get returns a copy of the data-bin content.
func (c *Cache) Get(class databin.Class, id uint64) ([]byte, bool) {
	var data []byte
	ok := c.withBin(class, id, func(b bin) {
		data = b.Bytes()
	})
	return data, ok
}

// ReadPrecinctBytes copies n bytes of a precinct from the offset.
func (c *Cache) ReadPrecinctBytes(id uint64, offset uint64, n int) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if !c.withBin(databin.ClassPrecinct, id, func(b bin) {
		data, err = b.ReadAt(offset, n)
	}) {
		return nil, errors.Wrapf(ErrNotCached, "precinct %d", id)
	}
	return data, err
}

// CompletedLayers is the number of quality layers held of a precinct.
func (c *Cache) CompletedLayers(id uint64) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.precincts[id]
	if !ok {
		return 0
	}
	p.Lock()
	defer p.Unlock()
	return p.CompletedLayers(c.geo.NumLayers())
}

// IsViewportCached reports whether everything the viewport needs is held:
// the complete main header and the wanted layers of every relevant precinct.
// A viewport requesting no pixels is always cached.
func (c *Cache) IsViewportCached(vp geometry.Viewport) (bool, error) {
	if vp.Empty() {
		return true, nil
	}
	if !c.IsComplete(databin.ClassMainHeader, 0) {
		return false, nil
	}
	ids, err := c.geo.RelevantPrecincts(vp)
	if err != nil {
		return false, err
	}
	want := vp.WantedLayers(c.geo.NumLayers())
	for _, id := range ids {
		if c.CompletedLayers(id) < want {
			return false, nil
		}
	}
	return true, nil
}

// Size is the number of bytes held in all data-bins.
func (c *Cache) Size() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	size := lockedLen(c.mainHeader)
	for _, b := range c.tileHeaders {
		size += lockedLen(b)
	}
	for _, p := range c.precincts {
		size += lockedLen(p)
	}
	for _, b := range c.metadata {
		size += lockedLen(b)
	}
	return size
}

func lockedLen(b bin) uint64 {
	b.Lock()
	defer b.Unlock()
	return b.Len()
}

// PrecinctIDs lists the cached precincts, ascending.
func (c *Cache) PrecinctIDs() []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.precinctIDs()
}

func (c *Cache) precinctIDs() []uint64 {
	ids := make([]uint64, 0, len(c.precincts))
	for id := range c.precincts {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []uint64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Clear drops every data-bin.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clear()
	c.evict.Reset()
}

func (c *Cache) clear() {
	c.mainHeader.Lock()
	c.mainHeader.Clear()
	c.mainHeader.Unlock()
	for id := range c.tileHeaders {
		delete(c.tileHeaders, id)
	}
	for id := range c.precincts {
		delete(c.precincts, id)
	}
	for id := range c.metadata {
		delete(c.metadata, id)
	}
}
