package databin

import (
	"math"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"
)

// Checkpoint states that Length bytes of a precinct hold Layer complete quality layers.
type Checkpoint struct {
	Layer  uint32
	Length uint32
}

// checkpoints is the layer index of a precinct, ordered by layer.
// Both layers and lengths are non-decreasing, and every layer from 1 up to the
// last one is present: layers the server skipped are synthesized on insert.
type checkpoints struct {
	tree *rbt.Tree // layer -> cumulative length
}

func newCheckpoints() checkpoints {
	return checkpoints{
		tree: rbt.NewWith(utils.UInt32Comparator),
	}
}

func (c *checkpoints) last() Checkpoint {
	node := c.tree.Right()
	if node == nil {
		return Checkpoint{}
	}
	return Checkpoint{node.Key.(uint32), node.Value.(uint32)}
}

// interpolate estimates the length of layer ly on the line between two checkpoints.
// The slope is floored before it is applied, peers compute the same offsets.
func interpolate(lo, hi Checkpoint, ly uint32) uint32 {
	if hi.Layer == lo.Layer {
		return lo.Length
	}
	step := (uint64(hi.Length) - uint64(lo.Length)) / uint64(hi.Layer-lo.Layer)
	return lo.Length + uint32(step*uint64(ly-lo.Layer))
}

// check validates a checkpoint without recording it.
func (c *checkpoints) check(layer uint32, cumLen uint64) error {
	if cumLen > math.MaxUint32 {
		return errors.Wrapf(ErrCheckpointRange, "layer %d at %d bytes", layer, cumLen)
	}
	last := c.last()
	if layer > last.Layer && uint32(cumLen) < last.Length {
		return errors.Wrapf(ErrLayerRegression, "layer %d at %d bytes, layer %d at %d bytes", layer, cumLen, last.Layer, last.Length)
	}
	return nil
}

func (c *checkpoints) record(layer uint32, cumLen uint64) error {
	if err := c.check(layer, cumLen); err != nil {
		return err
	}
	last := c.last()
	if layer <= last.Layer {
		return nil
	}
	next := Checkpoint{layer, uint32(cumLen)}
	for ly := last.Layer + 1; ly < layer; ly++ {
		c.tree.Put(ly, interpolate(last, next, ly))
	}
	c.tree.Put(layer, next.Length)
	return nil
}

// layerFor returns the greatest layer fully covered by the first off bytes.
func (c *checkpoints) layerFor(off uint64) uint32 {
	if off == 0 {
		return 0
	}
	var layer uint32
	it := c.tree.Iterator()
	for it.Next() {
		if uint64(it.Value().(uint32)) > off {
			break
		}
		layer = it.Key().(uint32)
	}
	return layer
}

// offsetFor returns the byte length holding the given number of layers.
// Layer 1 starts the precinct, its offset is 0 by definition.
func (c *checkpoints) offsetFor(layer uint32) uint32 {
	if layer <= 1 {
		return 0
	}
	if length, ok := c.tree.Get(layer); ok {
		return length.(uint32)
	}
	lo := Checkpoint{}
	if node, ok := c.tree.Floor(layer); ok {
		lo = Checkpoint{node.Key.(uint32), node.Value.(uint32)}
	}
	node, ok := c.tree.Ceiling(layer)
	if !ok {
		// nothing is known past the last checkpoint
		return lo.Length
	}
	return interpolate(lo, Checkpoint{node.Key.(uint32), node.Value.(uint32)}, layer)
}

func (c *checkpoints) list() []Checkpoint {
	res := make([]Checkpoint, 0, c.tree.Size())
	it := c.tree.Iterator()
	for it.Next() {
		res = append(res, Checkpoint{it.Key().(uint32), it.Value().(uint32)})
	}
	return res
}

func (c *checkpoints) clear() {
	c.tree.Clear()
}
