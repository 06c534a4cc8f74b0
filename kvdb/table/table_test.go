package table

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/status-im/keycard-go/hexutils"
	"github.com/stretchr/testify/require"

	"github.com/jpipkit/jpip-base/kvdb"
	"github.com/jpipkit/jpip-base/kvdb/leveldb"
	"github.com/jpipkit/jpip-base/kvdb/memorydb"
	"github.com/jpipkit/jpip-base/kvdb/pebble"
)

func tempDir(t *testing.T, name string) (string, func()) {
	dir, err := ioutil.TempDir("", "table-test-"+name)
	require.NoError(t, err)
	return dir, func() {
		_ = os.RemoveAll(dir)
	}
}

// testStores opens an empty store per backend.
func testStores(t *testing.T) map[string]kvdb.DropableStore {
	ldir, ldrop := tempDir(t, "leveldb")
	ldb, err := leveldb.New(ldir, 0, 0, nil, ldrop)
	require.NoError(t, err)

	pdir, pdrop := tempDir(t, "pebble")
	pdb, err := pebble.New(pdir, 0, 0, nil, pdrop)
	require.NoError(t, err)

	stores := map[string]kvdb.DropableStore{
		"memory":  memorydb.New(),
		"leveldb": ldb,
		"pebble":  pdb,
	}
	t.Cleanup(func() {
		for _, db := range stores {
			_ = db.Close()
			db.Drop()
		}
	})
	return stores
}

func collect(it kvdb.Iterator) map[string][]byte {
	defer it.Release()
	res := map[string][]byte{}
	for it.Next() {
		res[string(it.Key())] = append([]byte{}, it.Value()...)
	}
	return res
}

func TestTable(t *testing.T) {
	for name, db := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			a := New(db, []byte("a"))
			b := New(db, []byte("b"))
			nested := a.NewTable([]byte("x"))

			require.NoError(a.Put([]byte("01"), []byte{1}))
			require.NoError(a.Put([]byte("02"), []byte{2}))
			require.NoError(a.Put([]byte("10"), []byte{3}))
			require.NoError(b.Put([]byte("01"), []byte{4}))
			require.NoError(nested.Put([]byte("1"), []byte{5}))

			v, err := a.Get([]byte("01"))
			require.NoError(err)
			require.Equal([]byte{1}, v)
			v, err = b.Get([]byte("01"))
			require.NoError(err)
			require.Equal([]byte{4}, v)
			v, err = b.Get([]byte("02"))
			require.NoError(err)
			require.Nil(v)

			ok, err := nested.Has([]byte("1"))
			require.NoError(err)
			require.True(ok)
			ok, err = db.Has([]byte("ax1"))
			require.NoError(err)
			require.True(ok)

			require.Equal(map[string][]byte{"01": {1}, "02": {2}}, collect(a.NewIterator([]byte("0"), nil)))
			require.Equal(map[string][]byte{"02": {2}}, collect(a.NewIterator([]byte("0"), []byte("2"))))
			require.Equal(map[string][]byte{"01": {4}}, collect(b.NewIterator(nil, nil)))
			require.Len(collect(a.NewIterator(nil, nil)), 4)

			require.NoError(a.Compact(nil, nil))
			require.NoError(a.Delete([]byte("10")))
			require.Len(collect(a.NewIterator([]byte("1"), nil)), 0)

			require.NoError(a.Clear())
			require.Empty(collect(a.NewIterator(nil, nil)))
			require.Len(collect(b.NewIterator(nil, nil)), 1)

			require.Equal(kvdb.ErrUnsupportedOp, a.Close())
		})
	}
}

func TestTableBatch(t *testing.T) {
	for name, db := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			tbl := New(db, []byte("t"))
			batch := tbl.NewBatch()
			require.NoError(batch.Put([]byte("k1"), []byte("v1")))
			require.NoError(batch.Put([]byte("k2"), []byte("v2")))
			require.NoError(batch.Delete([]byte("k1")))
			require.Equal(5, batch.ValueSize())

			v, err := tbl.Get([]byte("k2"))
			require.NoError(err)
			require.Nil(v)

			require.NoError(batch.Write())
			require.Equal(map[string][]byte{"k2": []byte("v2")}, collect(tbl.NewIterator(nil, nil)))

			replay := memorydb.New()
			require.NoError(batch.Replay(replay))
			ok, err := replay.Has([]byte("k2"))
			require.NoError(err)
			require.True(ok)
			ok, err = replay.Has([]byte("k1"))
			require.NoError(err)
			require.False(ok)

			batch.Reset()
			require.Zero(batch.ValueSize())
		})
	}
}

func TestIncPrefix(t *testing.T) {
	require.Nil(t, incPrefix(hexutils.HexToBytes("ff")))
	require.Equal(t, hexutils.HexToBytes("ff"), incPrefix(hexutils.HexToBytes("fe")))
	require.Equal(t, hexutils.HexToBytes("0100"), incPrefix(hexutils.HexToBytes("00ff")))
	require.Nil(t, incPrefix(nil))
}
