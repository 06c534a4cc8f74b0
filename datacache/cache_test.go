package datacache

import (
	"bytes"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jpipkit/jpip-base/databin"
	"github.com/jpipkit/jpip-base/eviction"
	"github.com/jpipkit/jpip-base/geometry"
	"github.com/jpipkit/jpip-base/stream"
	"github.com/jpipkit/jpip-base/wire"
)

func testGeometry(t *testing.T, relevant []uint64, layers uint32) *geometry.MockCodestream {
	ctrl := gomock.NewController(t)
	geo := geometry.NewMockCodestream(ctrl)
	geo.EXPECT().RelevantPrecincts(gomock.Any()).Return(relevant, nil).AnyTimes()
	geo.EXPECT().NumLayers().Return(layers).AnyTimes()
	return geo
}

func noEviction() Config {
	cfg := LiteConfig()
	cfg.Eviction = eviction.None
	return cfg
}

func seg(class databin.Class, id uint64, offset uint64, body []byte, last bool) *wire.Message {
	return &wire.Message{
		Class:     class,
		InClassID: id,
		Offset:    offset,
		Last:      last,
		Body:      body,
	}
}

func TestCacheRouting(t *testing.T) {
	require := require.New(t)
	c := New(testGeometry(t, nil, 1), noEviction())

	require.NoError(c.Ingest(seg(databin.ClassMainHeader, 0, 0, []byte{0xff, 0x4f}, false)))
	require.NoError(c.Ingest(seg(databin.ClassMainHeader, 0, 2, []byte{0xff, 0x51}, true)))
	require.NoError(c.Ingest(seg(databin.ClassTileHeader, 0, 0, []byte{1, 2, 3}, true)))
	require.NoError(c.Ingest(seg(databin.ClassTileHeader, 3, 0, []byte{1, 2, 3}, true)))
	require.NoError(c.Ingest(seg(databin.ClassMetadata, 7, 0, []byte("jp2h"), false)))
	require.NoError(c.Ingest(seg(databin.ClassTile, 0, 0, []byte{9}, true)))
	require.NoError(c.Ingest(&wire.Message{EOR: true}))

	require.True(c.IsComplete(databin.ClassMainHeader, 0))
	data, ok := c.Get(databin.ClassMainHeader, 0)
	require.True(ok)
	require.Equal([]byte{0xff, 0x4f, 0xff, 0x51}, data)

	require.True(c.IsComplete(databin.ClassTileHeader, 0))
	require.Equal([]uint64{0}, c.TileHeaderIDs())
	_, ok = c.Get(databin.ClassTileHeader, 3)
	require.False(ok)

	require.False(c.IsComplete(databin.ClassMetadata, 7))
	require.Equal(uint64(4), c.Length(databin.ClassMetadata, 7))

	_, ok = c.Get(databin.ClassTile, 0)
	require.False(ok)
	require.Equal(uint64(11), c.Size())
}

func TestCacheRejectsHole(t *testing.T) {
	require := require.New(t)
	c := New(testGeometry(t, nil, 1), noEviction())

	// precinct 0, offset 5, length 2, body AA BB into an empty cache
	dec := wire.NewDecoder(bytes.NewReader([]byte{0x20, 0x05, 0x02, 0xAA, 0xBB}))
	msg, err := dec.Next()
	require.NoError(err)

	err = c.Ingest(msg)
	require.True(errors.Is(err, stream.ErrHole))
	require.True(errors.Is(err, stream.ErrLogic))
	require.Equal(uint64(0), c.Length(databin.ClassPrecinct, 0))
	require.Empty(c.PrecinctIDs())
	_, ok := c.Get(databin.ClassPrecinct, 0)
	require.False(ok)

	require.NoError(c.Ingest(seg(databin.ClassPrecinct, 0, 0, []byte{1, 2, 3, 4, 5}, false)))
	require.NoError(c.Ingest(msg))
	data, err := c.ReadPrecinctBytes(0, 3, 4)
	require.NoError(err)
	require.Equal([]byte{4, 5, 0xAA, 0xBB}, data)

	_, err = c.ReadPrecinctBytes(9, 0, 1)
	require.True(errors.Is(err, ErrNotCached))
}

func TestCacheLayerCheckpoints(t *testing.T) {
	require := require.New(t)
	c := New(testGeometry(t, nil, 3), noEviction())

	ext := func(offset uint64, n int, layer uint64, last bool) *wire.Message {
		m := seg(databin.ClassExtPrecinct, 2, offset, bytes.Repeat([]byte{0x11}, n), last)
		m.Aux = layer
		return m
	}
	require.NoError(c.Ingest(ext(0, 10, 1, false)))
	require.Equal(uint32(1), c.CompletedLayers(2))
	require.NoError(c.Ingest(ext(10, 20, 2, false)))
	require.Equal(uint32(2), c.CompletedLayers(2))

	st := c.PrecinctState(2)
	require.Equal(uint64(30), st.Length)
	require.False(st.Complete)
	require.Equal(uint32(2), st.Layers)

	err := c.Ingest(ext(30, 1, 1<<32, false))
	require.True(errors.Is(err, databin.ErrCheckpointRange))
	require.Equal(uint64(30), c.Length(databin.ClassPrecinct, 2))

	// a plain precinct message completes the bin
	require.NoError(c.Ingest(seg(databin.ClassPrecinct, 2, 30, []byte{0x22}, true)))
	require.Equal(uint32(3), c.CompletedLayers(2))
	require.Equal(uint32(0), c.CompletedLayers(5))
}

func TestCacheViewport(t *testing.T) {
	require := require.New(t)
	c := New(testGeometry(t, []uint64{1, 2}, 2), noEviction())
	vp := geometry.Viewport{FrameW: 64, FrameH: 64, RegionW: 64, RegionH: 64}

	ok, err := c.IsViewportCached(geometry.Viewport{})
	require.NoError(err)
	require.True(ok)

	ok, err = c.IsViewportCached(vp)
	require.NoError(err)
	require.False(ok)

	require.NoError(c.Ingest(seg(databin.ClassMainHeader, 0, 0, []byte{0xff}, true)))
	require.NoError(c.Ingest(seg(databin.ClassPrecinct, 1, 0, []byte{1}, true)))
	ok, err = c.IsViewportCached(vp)
	require.NoError(err)
	require.False(ok)

	m := seg(databin.ClassExtPrecinct, 2, 0, []byte{1, 2}, false)
	m.Aux = 1
	require.NoError(c.Ingest(m))

	vp.Layers = 1
	ok, err = c.IsViewportCached(vp)
	require.NoError(err)
	require.True(ok)

	vp.Layers = 0
	ok, err = c.IsViewportCached(vp)
	require.NoError(err)
	require.False(ok)
}

func TestCacheEviction(t *testing.T) {
	require := require.New(t)
	cfg := LiteConfig()
	cfg.MaxBytes = 25
	c := New(testGeometry(t, nil, 1), cfg)

	body := bytes.Repeat([]byte{7}, 10)
	for id := uint64(1); id <= 3; id++ {
		require.NoError(c.Ingest(seg(databin.ClassPrecinct, id, 0, body, false)))
	}
	require.Equal([]uint64{1}, c.TakeRemoved())
	require.Empty(c.TakeRemoved())
	require.Equal([]uint64{2, 3}, c.PrecinctIDs())

	// touching 2 makes 3 the least recently used
	require.NoError(c.Ingest(seg(databin.ClassPrecinct, 2, 10, []byte{1}, false)))
	require.NoError(c.Ingest(seg(databin.ClassPrecinct, 4, 0, body, false)))
	require.Equal([]uint64{3}, c.TakeRemoved())

	// headers are never evicted
	require.NoError(c.Ingest(seg(databin.ClassMainHeader, 0, 0, bytes.Repeat([]byte{1}, 100), true)))
	require.True(c.IsComplete(databin.ClassMainHeader, 0))
	require.Empty(c.TakeRemoved())
}

func TestCacheRejectedPrecinctNotTracked(t *testing.T) {
	require := require.New(t)
	cfg := LiteConfig()
	cfg.MaxBytes = 25
	c := New(testGeometry(t, nil, 1), cfg)

	require.NoError(c.Ingest(seg(databin.ClassPrecinct, 1, 0, []byte{1, 2, 3}, false)))
	err := c.Ingest(seg(databin.ClassPrecinct, 2, 4, []byte{1}, false))
	require.True(errors.Is(err, stream.ErrHole))

	require.Equal([]uint64{1}, c.PrecinctIDs())
	require.Equal(1, c.evict.Len())
	require.Equal(uint64(3), c.evict.Size())

	// a rejected segment keeps a non-empty precinct
	err = c.Ingest(seg(databin.ClassPrecinct, 1, 9, []byte{1}, false))
	require.True(errors.Is(err, stream.ErrHole))
	require.Equal([]uint64{1}, c.PrecinctIDs())
	require.Equal(uint64(3), c.Length(databin.ClassPrecinct, 1))
}

func TestCacheSetEvictionPolicy(t *testing.T) {
	require := require.New(t)
	c := New(testGeometry(t, nil, 1), noEviction())

	body := bytes.Repeat([]byte{7}, 10)
	for id := uint64(3); id >= 1; id-- {
		require.NoError(c.Ingest(seg(databin.ClassPrecinct, id, 0, body, false)))
	}
	require.Empty(c.TakeRemoved())

	c.SetEvictionPolicy(eviction.FIFO, 10)
	policy, max := c.EvictionPolicy()
	require.Equal(eviction.FIFO, policy)
	require.Equal(uint64(10), max)
	require.Equal([]uint64{1, 2}, c.TakeRemoved())
	require.Equal([]uint64{3}, c.PrecinctIDs())
}

func TestCacheClear(t *testing.T) {
	require := require.New(t)
	c := New(testGeometry(t, nil, 1), LiteConfig())

	require.NoError(c.Ingest(seg(databin.ClassMainHeader, 0, 0, []byte{1}, true)))
	require.NoError(c.Ingest(seg(databin.ClassPrecinct, 1, 0, []byte{1}, true)))
	c.Clear()

	require.False(c.IsComplete(databin.ClassMainHeader, 0))
	require.Empty(c.PrecinctIDs())
	require.Equal(uint64(0), c.Size())
	require.NoError(c.Ingest(seg(databin.ClassPrecinct, 1, 0, []byte{1}, true)))
	require.True(c.IsComplete(databin.ClassPrecinct, 1))
}
