package datacache

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/status-im/keycard-go/hexutils"
	"github.com/stretchr/testify/require"

	"github.com/jpipkit/jpip-base/databin"
	"github.com/jpipkit/jpip-base/kvdb"
	"github.com/jpipkit/jpip-base/kvdb/leveldb"
	"github.com/jpipkit/jpip-base/kvdb/memorydb"
)

func fillCache(t *testing.T, c *Cache) {
	msgs := []struct {
		class  databin.Class
		id     uint64
		offset uint64
		body   string
		last   bool
		aux    uint64
	}{
		{databin.ClassMainHeader, 0, 0, "FF4FFF51", true, 0},
		{databin.ClassTileHeader, 0, 0, "FF90000A", false, 0},
		{databin.ClassExtPrecinct, 1, 0, "0102030405", false, 1},
		{databin.ClassExtPrecinct, 1, 5, "060708", false, 3},
		{databin.ClassPrecinct, 4, 0, "AABB", true, 0},
		{databin.ClassMetadata, 2, 0, "6A703268", true, 0},
	}
	for _, m := range msgs {
		msg := seg(m.class, m.id, m.offset, hexutils.HexToBytes(m.body), m.last)
		msg.Aux = m.aux
		require.NoError(t, c.Ingest(msg))
	}
}

func snapshotStores(t *testing.T) map[string]kvdb.Store {
	dir, err := ioutil.TempDir("", "snapshot-test")
	require.NoError(t, err)
	ldb, err := leveldb.New(dir, 0, 0, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ldb.Close()
		_ = os.RemoveAll(dir)
	})
	return map[string]kvdb.Store{
		"memory":  memorydb.New(),
		"leveldb": ldb,
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for name, db := range snapshotStores(t) {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			src := New(testGeometry(t, nil, 4), noEviction())
			fillCache(t, src)
			require.NoError(src.SaveSnapshot(db))

			dst := New(testGeometry(t, nil, 4), noEviction())
			require.NoError(dst.Ingest(seg(databin.ClassPrecinct, 9, 0, []byte{1}, false)))
			require.NoError(dst.LoadSnapshot(db))

			require.Equal(src.Size(), dst.Size())
			require.Equal(src.PrecinctIDs(), dst.PrecinctIDs())
			require.Equal(src.TileHeaderIDs(), dst.TileHeaderIDs())
			for _, class := range []databin.Class{databin.ClassMainHeader, databin.ClassTileHeader, databin.ClassMetadata} {
				for _, id := range []uint64{0, 2} {
					a, aok := src.Get(class, id)
					b, bok := dst.Get(class, id)
					require.Equal(aok, bok, "%s %d", class, id)
					require.Equal(a, b, "%s %d", class, id)
					require.Equal(src.IsComplete(class, id), dst.IsComplete(class, id))
				}
			}
			for _, id := range src.PrecinctIDs() {
				require.Equal(src.PrecinctState(id), dst.PrecinctState(id))
			}
			require.Equal(uint32(3), dst.CompletedLayers(1))
			require.Equal(uint32(4), dst.CompletedLayers(4))

			// a second save replaces the first one
			src.Clear()
			require.NoError(src.SaveSnapshot(db))
			require.NoError(dst.LoadSnapshot(db))
			require.Equal(uint64(0), dst.Size())
		})
	}
}

func TestSnapshotCorrupted(t *testing.T) {
	require := require.New(t)
	db := memorydb.New()

	src := New(testGeometry(t, nil, 4), noEviction())
	fillCache(t, src)
	require.NoError(src.SaveSnapshot(db))

	tables, err := openTables(db)
	require.NoError(err)
	require.NoError(tables.Precincts.Put(hexutils.HexToBytes("0000000000000001"), []byte{0xff}))

	dst := New(testGeometry(t, nil, 4), noEviction())
	require.NoError(dst.Ingest(seg(databin.ClassPrecinct, 9, 0, []byte{1}, false)))
	require.Error(dst.LoadSnapshot(db))
	require.Equal([]uint64{9}, dst.PrecinctIDs())
	require.Equal(uint64(1), dst.Size())
}

var errWrite = errors.New("write failed")

// failingStore refuses batch writes.
type failingStore struct {
	kvdb.Store
}

type failingBatch struct {
	kvdb.Batch
}

func (s failingStore) NewBatch() kvdb.Batch {
	return failingBatch{s.Store.NewBatch()}
}

func (b failingBatch) Write() error {
	return errWrite
}

func TestSnapshotFailedSaveKeepsPrevious(t *testing.T) {
	require := require.New(t)
	db := memorydb.New()

	src := New(testGeometry(t, nil, 4), noEviction())
	fillCache(t, src)
	require.NoError(src.SaveSnapshot(db))
	saved := db.Len()

	src.Clear()
	require.NoError(src.Ingest(seg(databin.ClassPrecinct, 9, 0, []byte{1}, false)))
	err := src.SaveSnapshot(failingStore{db})
	require.True(errors.Is(err, errWrite))
	require.Equal(saved, db.Len())

	dst := New(testGeometry(t, nil, 4), noEviction())
	require.NoError(dst.LoadSnapshot(db))
	require.Equal([]uint64{1, 4}, dst.PrecinctIDs())
}
