package simplewlru

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheOrder(t *testing.T) {
	require := require.New(t)

	c := New()
	c.Add(1, 10)
	c.Add(2, 20)
	c.Add(3, 30)
	require.Equal(uint64(60), c.Weight())
	require.Equal(3, c.Len())

	// re-adding moves to the newest position, SetWeight doesn't
	c.Add(1, 10)
	require.True(c.SetWeight(2, 5))
	require.False(c.SetWeight(4, 5))
	require.Equal(uint64(45), c.Weight())

	require.True(c.Remove(3))
	require.False(c.Remove(3))
	require.Equal(uint64(15), c.Weight())
	require.Equal([]uint64{2, 1}, c.Shrink(0, 0))

	c.Add(5, 50)
	c.Purge()
	require.Zero(c.Len())
	require.Zero(c.Weight())
	require.Empty(c.Shrink(0, 0))
}

func TestCacheShrink(t *testing.T) {
	require := require.New(t)

	c := New()
	for i := uint64(1); i <= 5; i++ {
		c.Add(i, i*10)
	}

	require.Empty(c.Shrink(150, 1))
	require.Equal([]uint64{1, 2, 3}, c.Shrink(90, 1))
	require.Equal(uint64(90), c.Weight())

	// the last entry stays whatever its weight
	require.Equal([]uint64{4}, c.Shrink(0, 1))
	require.Equal(1, c.Len())
	require.Equal([]uint64{5}, c.Shrink(0, 0))
}
