package datasemaphore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDataSemaphore(t *testing.T) {
	require := require.New(t)

	var warned bool
	s := New(Metric{Num: 2, Size: 100}, func(received Metric, processing Metric, releasing Metric) {
		warned = true
	})

	require.True(s.Acquire(Metric{1, 60}, time.Second))
	// a negative timeout doesn't wait
	require.False(s.Acquire(Metric{1, 60}, -time.Second))
	require.False(s.Acquire(Metric{1, 200}, time.Second))
	require.Equal(Metric{1, 60}, s.Processing())

	acquired := make(chan bool)
	go func() {
		acquired <- s.Acquire(Metric{1, 60}, time.Minute)
	}()
	s.Release(Metric{1, 60})
	require.True(<-acquired)
	require.Equal(Metric{1, 60}, s.Processing())

	s.Release(Metric{5, 60})
	require.True(warned)
	require.Equal(Metric{}, s.Processing())

	s.Terminate()
	require.False(s.Acquire(Metric{1, 1}, time.Minute))
}
