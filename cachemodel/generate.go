package cachemodel

import (
	"sort"

	"github.com/jpipkit/jpip-base/databin"
	"github.com/jpipkit/jpip-base/geometry"
)

// BinState is what an inventory holds of one data-bin.
type BinState struct {
	Length   uint64
	Complete bool
	// Layers is the number of complete quality layers, precincts only.
	Layers uint32
}

func (s BinState) empty() bool {
	return s.Length == 0 && !s.Complete && s.Layers == 0
}

// Inventory is a source of held content descriptors are generated from:
// the data-bin cache on a client, the cache model on a server.
type Inventory interface {
	MainHeaderState() BinState
	TileHeaderIDs() []uint64
	TileHeaderState(id uint64) BinState
	PrecinctState(id uint64) BinState
}

// Form selects how precincts are listed.
type Form uint8

const (
	// FormExplicit lists every precinct by its in-class id.
	FormExplicit Form = iota
	// FormImplicit lists precincts by tile, component, resolution and
	// precinct ranges.
	FormImplicit
)

// Qualifier selects the quantity reported for each bin.
type Qualifier uint8

const (
	QualifyLayers Qualifier = iota
	QualifyBytes
	QualifyWildcard
	// QualifyIndexRange is reported as layers in the explicit form.
	QualifyIndexRange
)

// Generate describes the inventory content a viewport needs: the main
// header, the known tile headers and the relevant precincts. Precincts
// nothing is held of are skipped. The implicit form reports layers only,
// adjacent precincts holding the same layers are merged into one range.
func Generate(inv Inventory, geo geometry.Codestream, vp geometry.Viewport, form Form, qualifier Qualifier) ([]Element, error) {
	var elems []Element
	additive := func(d Descriptor) {
		elems = append(elems, Element{Descriptor: d, Additive: true})
	}

	if q, ok := headerQuantity(inv.MainHeaderState(), qualifier); ok {
		additive(Explicit{Class: databin.ClassMainHeader, Quantity: q})
	}
	for _, id := range inv.TileHeaderIDs() {
		if q, ok := headerQuantity(inv.TileHeaderState(id), qualifier); ok {
			additive(Explicit{Class: databin.ClassTileHeader, InClassID: id, Quantity: q})
		}
	}

	ids, err := geo.RelevantPrecincts(vp)
	if err != nil {
		return nil, err
	}
	if form == FormExplicit {
		for _, id := range ids {
			if q, ok := precinctQuantity(inv.PrecinctState(id), qualifier); ok {
				additive(Explicit{Class: databin.ClassPrecinct, InClassID: id, Quantity: q})
			}
		}
		return elems, nil
	}

	runs, err := implicitRuns(inv, geo, ids, qualifier)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		additive(r)
	}
	return elems, nil
}

// headerQuantity announces a partial header by its byte count, so the server
// resumes it instead of resending it.
func headerQuantity(st BinState, qualifier Qualifier) (Quantity, bool) {
	switch {
	case st.Complete && qualifier != QualifyBytes:
		return WildcardQuantity, true
	case st.Length > 0:
		return BytesOf(st.Length), true
	case st.Complete:
		return WildcardQuantity, true
	}
	return Quantity{}, false
}

func precinctQuantity(st BinState, qualifier Qualifier) (Quantity, bool) {
	if st.empty() {
		return Quantity{}, false
	}
	switch qualifier {
	case QualifyWildcard:
		if st.Complete {
			return WildcardQuantity, true
		}
		if st.Length > 0 {
			return BytesOf(st.Length), true
		}
	case QualifyBytes:
		if st.Length > 0 {
			return BytesOf(st.Length), true
		}
	default:
		if st.Layers > 0 {
			return LayersOf(uint64(st.Layers)), true
		}
	}
	return Quantity{}, false
}

type positioned struct {
	pos geometry.Position
	q   Quantity
}

func implicitRuns(inv Inventory, geo geometry.Codestream, ids []uint64, qualifier Qualifier) ([]Implicit, error) {
	var held []positioned
	for _, id := range ids {
		st := inv.PrecinctState(id)
		var q Quantity
		switch {
		case st.Complete && qualifier == QualifyWildcard:
			q = WildcardQuantity
		case st.Layers > 0:
			q = LayersOf(uint64(st.Layers))
		default:
			continue
		}
		pos, err := geo.Position(id)
		if err != nil {
			return nil, err
		}
		held = append(held, positioned{pos, q})
	}
	sort.Slice(held, func(i, j int) bool {
		a, b := held[i].pos, held[j].pos
		if a.Tile != b.Tile {
			return a.Tile < b.Tile
		}
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		if a.Resolution != b.Resolution {
			return a.Resolution < b.Resolution
		}
		return a.Precinct < b.Precinct
	})

	var runs []Implicit
	for i, h := range held {
		if i > 0 {
			prev := held[i-1]
			last := &runs[len(runs)-1]
			if prev.pos.Tile == h.pos.Tile && prev.pos.Component == h.pos.Component &&
				prev.pos.Resolution == h.pos.Resolution && prev.pos.Precinct+1 == h.pos.Precinct &&
				prev.q == h.q {
				last.Precincts.Last = int64(h.pos.Precinct)
				continue
			}
		}
		runs = append(runs, Implicit{
			Tiles:       Single(h.pos.Tile),
			Components:  Single(h.pos.Component),
			Resolutions: Single(h.pos.Resolution),
			Precincts:   Single(h.pos.Precinct),
			Layers:      h.q,
		})
	}
	return runs, nil
}
