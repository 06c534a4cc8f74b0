package databin

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jpipkit/jpip-base/stream"
)

func TestPrecinctInterpolation(t *testing.T) {
	require := require.New(t)

	p := NewPrecinct(3)
	require.NoError(p.RecordCheckpoint(5, 100))
	require.NoError(p.RecordCheckpoint(10, 200))

	require.Equal(uint32(0), p.OffsetForLayer(1))
	require.Equal(uint32(100), p.OffsetForLayer(5))
	require.Equal(uint32(140), p.OffsetForLayer(7))
	require.Equal(uint32(200), p.OffsetForLayer(10))
	// nothing known past the last checkpoint
	require.Equal(uint32(200), p.OffsetForLayer(12))

	// layers 1..4 are synthesized from the origin
	require.Equal(uint32(40), p.OffsetForLayer(2))
	require.Equal(uint32(20), p.PacketLength(5))
	require.Len(p.Checkpoints(), 10)
}

func TestPrecinctMonotonicOffsets(t *testing.T) {
	require := require.New(t)

	p := NewPrecinct(0)
	require.NoError(p.RecordCheckpoint(2, 17))
	require.NoError(p.RecordCheckpoint(9, 301))
	require.NoError(p.RecordCheckpoint(13, 302))

	prev := uint32(0)
	for ly := uint32(1); ly <= 16; ly++ {
		off := p.OffsetForLayer(ly)
		require.GreaterOrEqual(off, prev, "layer %d", ly)
		prev = off
	}
}

func TestPrecinctLayerForOffset(t *testing.T) {
	require := require.New(t)

	p := NewPrecinct(1)
	require.Equal(uint32(0), p.LayerForOffset(50))

	require.NoError(p.RecordCheckpoint(1, 10))
	require.NoError(p.RecordCheckpoint(3, 30))

	require.Equal(uint32(0), p.LayerForOffset(0))
	require.Equal(uint32(0), p.LayerForOffset(9))
	require.Equal(uint32(1), p.LayerForOffset(10))
	require.Equal(uint32(2), p.LayerForOffset(25))
	require.Equal(uint32(3), p.LayerForOffset(1000))
}

func TestPrecinctCheckpointRejects(t *testing.T) {
	require := require.New(t)

	p := NewPrecinct(1)
	require.NoError(p.AddSegment(make([]byte, 40), 0, false, 2))

	// lower length for a higher layer
	err := p.AddSegment(nil, 10, false, 4)
	require.True(errors.Is(err, ErrLayerRegression))
	require.True(errors.Is(err, stream.ErrLogic))
	require.Equal(uint64(40), p.Len())
	require.Len(p.Checkpoints(), 2)

	// a known layer is left intact
	require.NoError(p.RecordCheckpoint(2, 90))
	require.Equal(uint32(40), p.OffsetForLayer(2))
}

func TestPrecinctSegments(t *testing.T) {
	require := require.New(t)

	p := NewPrecinct(7)
	require.Equal(ID{ClassPrecinct, 7}, p.ID())

	// a hole leaves both the stream and the layer index untouched
	err := p.AddSegment([]byte{1, 2}, 5, false, 1)
	require.True(errors.Is(err, stream.ErrHole))
	require.Zero(p.Len())
	require.Empty(p.Checkpoints())

	require.NoError(p.AddSegment([]byte{1, 2, 3, 4}, 0, false, 1))
	require.NoError(p.AddSegment([]byte{3, 4, 5, 6}, 2, false, 2))
	require.Equal([]byte{1, 2, 3, 4, 5, 6}, p.Bytes())
	require.Equal(uint32(2), p.CompletedLayers(5))
	require.False(p.Complete())

	require.NoError(p.AddSegment([]byte{7}, 6, true, 0))
	require.True(p.Complete())
	require.Equal(uint32(5), p.CompletedLayers(5))

	cps := p.Checkpoints()
	data := p.Bytes()
	p.Clear()
	require.Zero(p.Len())
	require.Empty(p.Checkpoints())
	require.False(p.Complete())

	require.NoError(p.Restore(data, true, cps))
	require.Equal(data, p.Bytes())
	require.Equal(cps, p.Checkpoints())
	require.True(p.Complete())
}
