package devnulldb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDevNull(t *testing.T) {
	require := require.New(t)
	db := New()

	require.NoError(db.Put([]byte{1}, []byte{2}))
	batch := db.NewBatch()
	require.NoError(batch.Put([]byte{3}, []byte{4}))
	require.Equal(2, batch.ValueSize())
	require.NoError(batch.Write())

	v, err := db.Get([]byte{1})
	require.NoError(err)
	require.Nil(v)
	ok, err := db.Has([]byte{3})
	require.NoError(err)
	require.False(ok)

	it := db.NewIterator(nil, nil)
	require.False(it.Next())
	require.NoError(it.Error())
	it.Release()

	require.NoError(db.Close())
	db.Drop()
}
