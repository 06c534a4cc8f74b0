// Package geometry describes the codestream structure the cache needs to
// answer viewport queries: which precincts a window of interest touches and
// where a precinct sits in the tile/component/resolution hierarchy.
package geometry

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoPrecinct is returned for an in-class id the codestream has no precinct for.
	ErrNoPrecinct = errors.New("no such precinct")
	// ErrBadPosition is returned for a position outside the codestream.
	ErrBadPosition = errors.New("position outside the codestream")
)

// Position locates a precinct. Precinct is the index inside its resolution, raster order.
type Position struct {
	Tile       uint32
	Component  uint32
	Resolution uint32
	Precinct   uint32
}

// Viewport is a window of interest: a region of a frame size, plus the
// number of quality layers wanted. Layers 0 means all of them.
type Viewport struct {
	FrameW, FrameH   uint32
	OffX, OffY       uint32
	RegionW, RegionH uint32
	Layers           uint32
}

// Empty reports whether the viewport requests no pixels.
func (vp Viewport) Empty() bool {
	return vp.FrameW == 0 || vp.FrameH == 0 || vp.RegionW == 0 || vp.RegionH == 0 ||
		vp.OffX >= vp.FrameW || vp.OffY >= vp.FrameH
}

// WantedLayers resolves Layers 0 against the codestream layer count.
func (vp Viewport) WantedLayers(numLayers uint32) uint32 {
	if vp.Layers == 0 || vp.Layers > numLayers {
		return numLayers
	}
	return vp.Layers
}

//go:generate go run github.com/golang/mock/mockgen -package=geometry -destination=mock.go github.com/jpipkit/jpip-base/geometry Codestream

// Codestream is the geometry provider of one JPEG 2000 codestream.
type Codestream interface {
	// RelevantPrecincts lists the in-class ids of the precincts the viewport intersects, ascending.
	RelevantPrecincts(vp Viewport) ([]uint64, error)
	Position(inClassID uint64) (Position, error)
	PrecinctID(pos Position) (uint64, error)

	MainHeaderLength() uint32
	TileHeaderLength(tile uint32) uint32

	NumLayers() uint32
	NumTiles() uint32
	NumComponents() uint32
	NumResolutions(tile, comp uint32) uint32
	NumPrecincts(tile, comp, res uint32) uint32
}
