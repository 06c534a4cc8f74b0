package workers

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkersKeepKeyOrder(t *testing.T) {
	require := require.New(t)

	var wg sync.WaitGroup
	quit := make(chan struct{})
	w := New(&wg, quit, 4, 8)
	w.Start()

	var (
		mu   sync.Mutex
		seen = map[uint64][]int{}
		done sync.WaitGroup
	)
	for i := 0; i < 100; i++ {
		key, i := uint64(i%7), i
		done.Add(1)
		require.NoError(w.Enqueue(key, func() {
			defer done.Done()
			mu.Lock()
			seen[key] = append(seen[key], i)
			mu.Unlock()
		}))
	}
	done.Wait()

	for key, order := range seen {
		for j := 1; j < len(order); j++ {
			require.Less(order[j-1], order[j], key)
		}
	}
	require.Len(seen, 7)

	close(quit)
	wg.Wait()
	require.Error(w.Enqueue(0, func() {}))
}

func TestWorkersTasksCount(t *testing.T) {
	require := require.New(t)

	var wg sync.WaitGroup
	quit := make(chan struct{})
	w := New(&wg, quit, 2, 4)
	// not started, tasks stay queued
	var done sync.WaitGroup
	for i := 0; i < 6; i++ {
		done.Add(1)
		require.NoError(w.Enqueue(uint64(i), done.Done))
	}
	require.Equal(6, w.TasksCount())

	w.Start()
	done.Wait()
	require.Zero(w.TasksCount())
	close(quit)
	wg.Wait()
}
