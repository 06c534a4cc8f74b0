package workers

import (
	"errors"
	"sync"
)

var (
	errTerminated = errors.New("terminated")
)

// Workers runs tasks on a fixed set of goroutines. Tasks enqueued with the
// same key run on the same goroutine, in the order they were enqueued.
type Workers struct {
	quit   chan struct{}
	wg     *sync.WaitGroup
	shards []chan func()
}

// New creates n workers, each with a queue of maxTasks.
func New(wg *sync.WaitGroup, quit chan struct{}, n int, maxTasks int) *Workers {
	if n < 1 {
		n = 1
	}
	w := &Workers{
		quit:   quit,
		wg:     wg,
		shards: make([]chan func(), n),
	}
	for i := range w.shards {
		w.shards[i] = make(chan func(), maxTasks)
	}
	return w
}

// Start launches the worker goroutines.
func (w *Workers) Start() {
	for _, tasks := range w.shards {
		w.wg.Add(1)
		go func(tasks chan func()) {
			defer w.wg.Done()
			worker(tasks, w.quit)
		}(tasks)
	}
}

// Enqueue blocks until the task is queued on the worker of key, or quit is closed.
func (w *Workers) Enqueue(key uint64, fn func()) error {
	select {
	case w.shards[key%uint64(len(w.shards))] <- fn:
		return nil
	case <-w.quit:
		return errTerminated
	}
}

// TasksCount is the number of queued tasks.
func (w *Workers) TasksCount() int {
	n := 0
	for _, tasks := range w.shards {
		n += len(tasks)
	}
	return n
}

func worker(tasksC <-chan func(), quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case job := <-tasksC:
			job()
		}
	}
}
