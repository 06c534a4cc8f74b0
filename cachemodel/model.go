// Package cachemodel keeps the cache model: a ledger of the data-bin content
// a peer is believed to hold, updated from local ingest or from the cache
// descriptors a peer sends, and turned back into descriptors on request.
package cachemodel

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/jpipkit/jpip-base/databin"
	"github.com/jpipkit/jpip-base/geometry"
)

// ErrBadDescriptor is returned for a descriptor the model cannot resolve.
var ErrBadDescriptor = errors.New("unsupported cache model descriptor")

// Model is the cache model of one codestream. It is safe for concurrent use,
// an Update is applied atomically.
type Model struct {
	mu  sync.RWMutex
	geo geometry.Codestream

	mainHeader  uint64
	tileHeaders map[uint64]Quantity
	precincts   map[uint64]Quantity
}

// New creates an empty model over the codestream geometry.
func New(geo geometry.Codestream) *Model {
	return &Model{
		geo:         geo,
		tileHeaders: make(map[uint64]Quantity),
		precincts:   make(map[uint64]Quantity),
	}
}

// Reset forgets everything.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mainHeader = 0
	m.tileHeaders = make(map[uint64]Quantity)
	m.precincts = make(map[uint64]Quantity)
}

type op struct {
	class    databin.Class
	id       uint64
	q        Quantity
	additive bool
}

// Update applies the elements in order. Implicit descriptors are resolved to
// precincts first, a descriptor that fails to resolve rejects the whole
// update and leaves the model unchanged.
func (m *Model) Update(elems ...Element) error {
	var ops []op
	for _, e := range elems {
		var err error
		if ops, err = m.resolve(ops, e); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range ops {
		m.apply(o)
	}
	return nil
}

func (m *Model) resolve(ops []op, e Element) ([]op, error) {
	switch d := e.Descriptor.(type) {
	case Explicit:
		if !d.Class.Valid() {
			return ops, errors.Wrapf(ErrBadDescriptor, "class %d", d.Class)
		}
		return append(ops, op{d.Class.Base(), d.InClassID, wholeIfUnknown(d.Quantity), e.Additive}), nil
	case Implicit:
		q := wholeIfUnknown(d.Layers)
		err := m.eachPrecinct(d, func(id uint64) {
			ops = append(ops, op{databin.ClassPrecinct, id, q, e.Additive})
		})
		return ops, err
	}
	return ops, errors.Wrapf(ErrBadDescriptor, "%T", e.Descriptor)
}

func wholeIfUnknown(q Quantity) Quantity {
	if !q.IsKnown() {
		return WildcardQuantity
	}
	return q
}

func (m *Model) eachPrecinct(d Implicit, fn func(id uint64)) error {
	t0, t1, ok := d.Tiles.bounds(m.geo.NumTiles())
	if !ok {
		return nil
	}
	for t := t0; t <= t1; t++ {
		c0, c1, ok := d.Components.bounds(m.geo.NumComponents())
		if !ok {
			continue
		}
		for c := c0; c <= c1; c++ {
			r0, r1, ok := d.Resolutions.bounds(m.geo.NumResolutions(t, c))
			if !ok {
				continue
			}
			for r := r0; r <= r1; r++ {
				p0, p1, ok := d.Precincts.bounds(m.geo.NumPrecincts(t, c, r))
				if !ok {
					continue
				}
				for p := p0; p <= p1; p++ {
					id, err := m.geo.PrecinctID(geometry.Position{Tile: t, Component: c, Resolution: r, Precinct: p})
					if err != nil {
						return errors.Wrap(err, d.String())
					}
					fn(id)
				}
			}
		}
	}
	return nil
}

func (m *Model) apply(o op) {
	switch o.class {
	case databin.ClassPrecinct:
		merge(m.precincts, o)
	case databin.ClassTileHeader:
		// tile headers are not layered
		if o.q.Kind == Layers {
			return
		}
		if o.additive && o.q.Kind == Wildcard {
			if n := m.geo.TileHeaderLength(uint32(o.id)); n > 0 {
				o.q = BytesOf(uint64(n))
			}
		}
		merge(m.tileHeaders, o)
	case databin.ClassMainHeader:
		if !o.additive {
			m.mainHeader = 0
			return
		}
		full := uint64(m.geo.MainHeaderLength())
		n := full
		if o.q.Kind == Bytes && (o.q.N < full || full == 0) {
			// a zero length is not parsed yet
			n = o.q.N
		}
		if n > m.mainHeader {
			m.mainHeader = n
		}
	}
	// tiles and metadata are not modelled
}

func merge(set map[uint64]Quantity, o op) {
	cur := set[o.id]
	var next Quantity
	if o.additive {
		next = cur.add(o.q)
	} else {
		next = cur.sub(o.q)
	}
	if next.IsKnown() {
		set[o.id] = next
	} else {
		delete(set, o.id)
	}
}

// Precinct returns what is known about a precinct.
func (m *Model) Precinct(id uint64) Quantity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.precincts[id]
}

// TileHeader returns what is known about a tile header.
func (m *Model) TileHeader(id uint64) Quantity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.tileHeaders[id]
}

// MainHeader returns the number of main header bytes held.
func (m *Model) MainHeader() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.mainHeader
}

// Generate lists the model content relevant to the viewport. The model is
// read under one lock, the result is a consistent snapshot.
func (m *Model) Generate(vp geometry.Viewport, form Form, qualifier Qualifier) ([]Element, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Generate(modelInventory{m}, m.geo, vp, form, qualifier)
}

var _ Inventory = (*Model)(nil)

func (m *Model) MainHeaderState() BinState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return modelInventory{m}.MainHeaderState()
}

func (m *Model) TileHeaderIDs() []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return modelInventory{m}.TileHeaderIDs()
}

func (m *Model) TileHeaderState(id uint64) BinState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return modelInventory{m}.TileHeaderState(id)
}

func (m *Model) PrecinctState(id uint64) BinState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return modelInventory{m}.PrecinctState(id)
}

// modelInventory reads the model without locking, the caller holds the lock.
type modelInventory struct {
	m *Model
}

func (v modelInventory) MainHeaderState() BinState {
	full := uint64(v.m.geo.MainHeaderLength())
	return BinState{
		Length:   v.m.mainHeader,
		Complete: v.m.mainHeader > 0 && v.m.mainHeader >= full,
	}
}

func (v modelInventory) TileHeaderIDs() []uint64 {
	ids := make([]uint64, 0, len(v.m.tileHeaders))
	for id := range v.m.tileHeaders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (v modelInventory) TileHeaderState(id uint64) BinState {
	q := v.m.tileHeaders[id]
	full := uint64(v.m.geo.TileHeaderLength(uint32(id)))
	switch q.Kind {
	case Bytes:
		return BinState{Length: q.N, Complete: full > 0 && q.N >= full}
	case Wildcard:
		return BinState{Length: full, Complete: true}
	}
	return BinState{}
}

func (v modelInventory) PrecinctState(id uint64) BinState {
	q := v.m.precincts[id]
	numLayers := v.m.geo.NumLayers()
	switch q.Kind {
	case Layers:
		if q.N >= uint64(numLayers) {
			return BinState{Layers: numLayers, Complete: true}
		}
		return BinState{Layers: uint32(q.N)}
	case Bytes:
		return BinState{Length: q.N}
	case Wildcard:
		return BinState{Layers: numLayers, Complete: true}
	}
	return BinState{}
}
