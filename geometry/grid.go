package geometry

import (
	"sort"

	"github.com/pkg/errors"
)

// Grid is a single-tile codestream with one precinct size for every
// resolution and component. It is enough for the cache itself and for tests,
// real codestreams are parsed by the enclosing application.
type Grid struct {
	Width, Height uint32
	Components    uint32
	// Levels is the number of wavelet decomposition levels, resolutions are 0..Levels.
	Levels uint32
	// PrecinctSize is the precinct side in samples of its own resolution, non-zero.
	PrecinctSize uint32
	Layers       uint32

	MainHeader uint32
	TileHeader uint32
}

var _ Codestream = (*Grid)(nil)

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// resSize is the size of resolution res.
func (g *Grid) resSize(res uint32) (uint32, uint32) {
	shift := g.Levels - res
	d := uint32(1) << shift
	return ceilDiv(g.Width, d), ceilDiv(g.Height, d)
}

// precincts is the number of precinct columns and rows of resolution res.
func (g *Grid) precincts(res uint32) (uint32, uint32) {
	w, h := g.resSize(res)
	cols, rows := ceilDiv(w, g.PrecinctSize), ceilDiv(h, g.PrecinctSize)
	if cols == 0 {
		cols = 1
	}
	if rows == 0 {
		rows = 1
	}
	return cols, rows
}

func (g *Grid) NumLayers() uint32 {
	return g.Layers
}

func (g *Grid) NumTiles() uint32 {
	return 1
}

func (g *Grid) NumComponents() uint32 {
	return g.Components
}

func (g *Grid) NumResolutions(tile, comp uint32) uint32 {
	return g.Levels + 1
}

func (g *Grid) NumPrecincts(tile, comp, res uint32) uint32 {
	if res > g.Levels {
		return 0
	}
	cols, rows := g.precincts(res)
	return cols * rows
}

func (g *Grid) MainHeaderLength() uint32 {
	return g.MainHeader
}

func (g *Grid) TileHeaderLength(tile uint32) uint32 {
	if tile != 0 {
		return 0
	}
	return g.TileHeader
}

// PrecinctID numbers precincts as JPIP does: I = t + (c + s*C)*T, where s is
// the sequence number of the precinct inside its tile-component, counted over
// all the resolutions from the lowest one.
func (g *Grid) PrecinctID(pos Position) (uint64, error) {
	if pos.Tile != 0 || pos.Component >= g.Components || pos.Resolution > g.Levels ||
		pos.Precinct >= g.NumPrecincts(0, pos.Component, pos.Resolution) {
		return 0, errors.Wrapf(ErrBadPosition, "%+v", pos)
	}
	s := uint64(pos.Precinct)
	for r := uint32(0); r < pos.Resolution; r++ {
		s += uint64(g.NumPrecincts(0, pos.Component, r))
	}
	t, numTiles := uint64(pos.Tile), uint64(g.NumTiles())
	return t + (uint64(pos.Component)+s*uint64(g.Components))*numTiles, nil
}

func (g *Grid) Position(inClassID uint64) (Position, error) {
	if g.Components == 0 {
		return Position{}, errors.Wrapf(ErrNoPrecinct, "%d", inClassID)
	}
	rest := inClassID / uint64(g.NumTiles())
	pos := Position{
		Tile:      uint32(inClassID % uint64(g.NumTiles())),
		Component: uint32(rest % uint64(g.Components)),
	}
	s := rest / uint64(g.Components)
	for r := uint32(0); r <= g.Levels; r++ {
		n := uint64(g.NumPrecincts(pos.Tile, pos.Component, r))
		if s < n {
			pos.Resolution = r
			pos.Precinct = uint32(s)
			return pos, nil
		}
		s -= n
	}
	return Position{}, errors.Wrapf(ErrNoPrecinct, "%d", inClassID)
}

// resolutionFor picks the lowest resolution at least as large as the frame,
// the highest one if none is.
func (g *Grid) resolutionFor(frameW, frameH uint32) uint32 {
	for r := uint32(0); r < g.Levels; r++ {
		w, h := g.resSize(r)
		if w >= frameW && h >= frameH {
			return r
		}
	}
	return g.Levels
}

func (g *Grid) RelevantPrecincts(vp Viewport) ([]uint64, error) {
	if vp.Empty() {
		return nil, nil
	}
	top := g.resolutionFor(vp.FrameW, vp.FrameH)
	w, h := g.resSize(top)

	// region in the samples of the top resolution
	x0 := uint64(vp.OffX) * uint64(w) / uint64(vp.FrameW)
	y0 := uint64(vp.OffY) * uint64(h) / uint64(vp.FrameH)
	x1 := ((uint64(vp.OffX)+uint64(vp.RegionW))*uint64(w) + uint64(vp.FrameW) - 1) / uint64(vp.FrameW)
	y1 := ((uint64(vp.OffY)+uint64(vp.RegionH))*uint64(h) + uint64(vp.FrameH) - 1) / uint64(vp.FrameH)
	if x1 > uint64(w) {
		x1 = uint64(w)
	}
	if y1 > uint64(h) {
		y1 = uint64(h)
	}

	var ids []uint64
	for r := uint32(0); r <= top; r++ {
		shift := top - r
		d := uint64(1) << shift
		cols, _ := g.precincts(r)
		px0, px1 := x0/d/uint64(g.PrecinctSize), ((x1+d-1)/d-1)/uint64(g.PrecinctSize)
		py0, py1 := y0/d/uint64(g.PrecinctSize), ((y1+d-1)/d-1)/uint64(g.PrecinctSize)
		for c := uint32(0); c < g.Components; c++ {
			for py := py0; py <= py1; py++ {
				for px := px0; px <= px1; px++ {
					id, err := g.PrecinctID(Position{
						Component:  c,
						Resolution: r,
						Precinct:   uint32(py*uint64(cols) + px),
					})
					if err != nil {
						return nil, err
					}
					ids = append(ids, id)
				}
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
