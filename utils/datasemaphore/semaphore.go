package datasemaphore

import (
	"sync"
	"time"
)

// Metric is a weight: a number of items and their total size in bytes.
type Metric struct {
	Num  uint64
	Size uint64
}

// DataSemaphore bounds the number and the size of items in flight.
type DataSemaphore struct {
	processing    Metric
	maxProcessing Metric

	mu   sync.Mutex
	cond *sync.Cond

	warning func(received Metric, processing Metric, releasing Metric)
}

// New creates a semaphore; warning is called on releasing more than acquired.
func New(maxProcessing Metric, warning func(received Metric, processing Metric, releasing Metric)) *DataSemaphore {
	s := &DataSemaphore{
		maxProcessing: maxProcessing,
		warning:       warning,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Acquire waits until weight fits. It gives up on a weight larger than the
// maximum, on termination, or if still waiting past the timeout once woken.
func (s *DataSemaphore) Acquire(weight Metric, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.tryAcquire(weight) {
		if weight.Size > s.maxProcessing.Size || weight.Num > s.maxProcessing.Num || time.Now().After(deadline) {
			return false
		}
		s.cond.Wait()
	}
	return true
}

func (s *DataSemaphore) tryAcquire(metric Metric) bool {
	tmp := s.processing
	tmp.Num += metric.Num
	tmp.Size += metric.Size
	if tmp.Num > s.maxProcessing.Num || tmp.Size > s.maxProcessing.Size {
		return false
	}
	s.processing = tmp
	return true
}

func (s *DataSemaphore) Release(weight Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing.Num < weight.Num || s.processing.Size < weight.Size {
		if s.warning != nil {
			s.warning(s.processing, s.processing, weight)
		}
		s.processing = Metric{}
	} else {
		s.processing.Num -= weight.Num
		s.processing.Size -= weight.Size
	}
	s.cond.Broadcast()
}

// Terminate makes every pending and future Acquire fail.
func (s *DataSemaphore) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxProcessing = Metric{}
	s.cond.Broadcast()
}

// Processing is the weight acquired and not released yet.
func (s *DataSemaphore) Processing() Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}
