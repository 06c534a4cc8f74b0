package cachemodel

import (
	"fmt"
	"strings"

	"github.com/jpipkit/jpip-base/databin"
)

// Descriptor is either an Explicit or an Implicit cache model entry.
type Descriptor interface {
	fmt.Stringer
	descriptor()
}

// Explicit names one data-bin.
type Explicit struct {
	Class     databin.Class
	InClassID uint64
	// Quantity held. Unknown means the whole bin, as a bare bin name does.
	Quantity Quantity
}

// Range is an inclusive index range, Last < 0 leaves it open.
type Range struct {
	First int64
	Last  int64
}

// All is the open range of every index.
var All = Range{0, -1}

// Single is the range of the single index i.
func Single(i uint32) Range {
	return Range{int64(i), int64(i)}
}

// bounds clips the range to [0, n).
func (r Range) bounds(n uint32) (uint32, uint32, bool) {
	first, last := r.First, r.Last
	if first < 0 {
		first = 0
	}
	if last < 0 || last >= int64(n) {
		last = int64(n) - 1
	}
	if first > last {
		return 0, 0, false
	}
	return uint32(first), uint32(last), true
}

func (r Range) String() string {
	switch {
	case r.Last < 0:
		return fmt.Sprintf("%d-", r.First)
	case r.First == r.Last:
		return fmt.Sprintf("%d", r.First)
	}
	return fmt.Sprintf("%d-%d", r.First, r.Last)
}

// Implicit names every precinct in a tile, component, resolution and
// precinct index range.
type Implicit struct {
	Tiles       Range
	Components  Range
	Resolutions Range
	Precincts   Range
	Layers      Quantity
}

func (Explicit) descriptor() {}
func (Implicit) descriptor() {}

func (e Explicit) String() string {
	var prefix string
	switch e.Class.Base() {
	case databin.ClassPrecinct:
		prefix = "P"
	case databin.ClassTileHeader:
		prefix = "H"
	case databin.ClassTile:
		prefix = "T"
	case databin.ClassMainHeader:
		return "Hm" + suffix(e.Quantity)
	case databin.ClassMetadata:
		prefix = "M"
	}
	return fmt.Sprintf("%s%d%s", prefix, e.InClassID, suffix(e.Quantity))
}

func (i Implicit) String() string {
	return fmt.Sprintf("t%s,c%s,r%s,p%s%s", i.Tiles, i.Components, i.Resolutions, i.Precincts, suffix(i.Layers))
}

func suffix(q Quantity) string {
	if !q.IsKnown() {
		return ""
	}
	return ":" + q.String()
}

// Element is a descriptor with its sign.
type Element struct {
	Descriptor Descriptor
	// Additive elements report held content, subtractive ones report content not held.
	Additive bool
}

func (e Element) String() string {
	if e.Additive {
		return e.Descriptor.String()
	}
	return "-" + e.Descriptor.String()
}

// FormatElements joins the elements the way they are listed in a request.
func FormatElements(elems []Element) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return strings.Join(parts, ",")
}

// Removal lists subtractive wildcards for evicted precincts, telling the
// peer they are no longer held.
func Removal(ids []uint64) []Element {
	elems := make([]Element, len(ids))
	for i, id := range ids {
		elems[i] = Element{
			Descriptor: Explicit{Class: databin.ClassPrecinct, InClassID: id, Quantity: WildcardQuantity},
		}
	}
	return elems
}
