package databin

import (
	"github.com/jpipkit/jpip-base/stream"
)

// Precinct is a precinct data-bin. On top of the byte stream it keeps the
// checkpoints mapping completed quality layers to byte lengths, which come
// from the Aux field of extended precinct messages.
type Precinct struct {
	Bin
	layers checkpoints
}

// NewPrecinct creates an empty precinct data-bin.
func NewPrecinct(inClassID uint64) *Precinct {
	return &Precinct{
		Bin: Bin{
			id:   ID{ClassPrecinct, inClassID},
			data: stream.New(),
		},
		layers: newCheckpoints(),
	}
}

// AddSegment merges a segment and, when completedLayer is non-zero, records
// that the bytes up to the segment end hold completedLayer layers.
// The checkpoint is validated first, a rejected segment changes nothing.
func (p *Precinct) AddSegment(data []byte, offset uint64, last bool, completedLayer uint32) error {
	end := offset + uint64(len(data))
	if completedLayer > 0 {
		if err := p.layers.check(completedLayer, end); err != nil {
			return err
		}
	}
	if err := p.Bin.AddSegment(data, offset, last); err != nil {
		return err
	}
	if completedLayer > 0 {
		return p.layers.record(completedLayer, end)
	}
	return nil
}

// RecordCheckpoint notes that cumLen bytes hold the given number of layers.
// Skipped layers are interpolated, already known layers are left intact.
func (p *Precinct) RecordCheckpoint(layer uint32, cumLen uint32) error {
	return p.layers.record(layer, uint64(cumLen))
}

// LayerForOffset returns the greatest layer fully held by the first off bytes.
func (p *Precinct) LayerForOffset(off uint64) uint32 {
	return p.layers.layerFor(off)
}

// OffsetForLayer returns the byte length at which the given layer is complete.
func (p *Precinct) OffsetForLayer(layer uint32) uint32 {
	return p.layers.offsetFor(layer)
}

// PacketLength is the estimated byte size of the given layer's packet.
func (p *Precinct) PacketLength(layer uint32) uint32 {
	return p.layers.offsetFor(layer+1) - p.layers.offsetFor(layer)
}

// CompletedLayers is the number of quality layers fully held. A complete
// precinct holds all numLayers layers.
func (p *Precinct) CompletedLayers(numLayers uint32) uint32 {
	if p.complete {
		if numLayers == 0 {
			return p.layers.last().Layer
		}
		return numLayers
	}
	return p.layers.layerFor(p.Len())
}

// Checkpoints lists the layer index in layer order.
func (p *Precinct) Checkpoints() []Checkpoint {
	return p.layers.list()
}

// Clear drops the content and the layer index.
func (p *Precinct) Clear() {
	p.Bin.Clear()
	p.layers.clear()
}

// Restore replaces content and layer index, used when loading a snapshot.
func (p *Precinct) Restore(data []byte, complete bool, cps []Checkpoint) error {
	p.Clear()
	for _, cp := range cps {
		if err := p.layers.record(cp.Layer, uint64(cp.Length)); err != nil {
			p.layers.clear()
			return err
		}
	}
	p.Bin.Restore(data, complete)
	return nil
}
