package databin

import (
	"fmt"

	"github.com/jpipkit/jpip-base/common/bigendian"
)

// Class is a JPIP data-bin class identifier as carried on the wire.
// Odd classes are the "extended" forms which carry an Aux value.
type Class uint8

const (
	ClassPrecinct    Class = 0
	ClassExtPrecinct Class = 1
	ClassTileHeader  Class = 2
	ClassTile        Class = 4 // reserved, never stored
	ClassExtTile     Class = 5 // reserved, never stored
	ClassMainHeader  Class = 6
	ClassMetadata    Class = 8

	// MaxClass is the highest class identifier a message may carry.
	MaxClass = ClassMetadata
)

// Valid reports whether the class identifier is in the wire range.
func (c Class) Valid() bool {
	return c <= MaxClass
}

// Base maps a class to the storage class it shares with its extended form.
func (c Class) Base() Class {
	return c &^ 1
}

// HasAux reports whether messages of the class carry the Aux field.
func (c Class) HasAux() bool {
	return c&1 == 1
}

func (c Class) String() string {
	switch c {
	case ClassPrecinct:
		return "precinct"
	case ClassExtPrecinct:
		return "ext-precinct"
	case ClassTileHeader:
		return "tile-header"
	case ClassTile:
		return "tile"
	case ClassExtTile:
		return "ext-tile"
	case ClassMainHeader:
		return "main-header"
	case ClassMetadata:
		return "metadata"
	}
	return fmt.Sprintf("class-%d", uint8(c))
}

// ID addresses one data-bin. The main header always has InClassID 0.
type ID struct {
	Class     Class
	InClassID uint64
}

// Bytes is the db key form of the ID: base class byte followed by the big-endian in-class id.
func (id ID) Bytes() []byte {
	return bigendian.AppendUint64([]byte{byte(id.Class.Base())}, id.InClassID)
}

func (id ID) String() string {
	return fmt.Sprintf("%s:%d", id.Class.Base(), id.InClassID)
}
