// Package eviction decides which precinct data-bins to drop once the cache
// outgrows its byte budget.
package eviction

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/jpipkit/jpip-base/utils/simplewlru"
)

// Policy selects the eviction order.
type Policy uint8

const (
	// None never evicts.
	None Policy = iota
	// LRU evicts the least recently touched bin first.
	LRU
	// FIFO evicts the first inserted bin first, touches don't reorder.
	FIFO
)

func (p Policy) String() string {
	switch p {
	case None:
		return "none"
	case LRU:
		return "lru"
	case FIFO:
		return "fifo"
	}
	return fmt.Sprintf("policy-%d", uint8(p))
}

// Manager tracks the byte size and the eviction order of data-bins.
// It is safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	policy   Policy
	maxBytes uint64
	order    *simplewlru.Cache
	removed  []uint64

	log log.Logger
}

// New creates a manager. maxBytes is the budget, ignored by the None policy.
func New(policy Policy, maxBytes uint64) *Manager {
	return &Manager{
		policy:   policy,
		maxBytes: maxBytes,
		order:    simplewlru.New(),
		log:      log.New("module", "eviction"),
	}
}

// SetPolicy switches the policy and the budget. Tracked sizes are kept,
// switching to None forgets the order.
func (m *Manager) SetPolicy(policy Policy, maxBytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.policy, m.maxBytes = policy, maxBytes
	if policy == None {
		m.order.Purge()
	}
}

// Policy returns the current policy and budget.
func (m *Manager) Policy() (Policy, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.policy, m.maxBytes
}

// Touch records an access to the bin together with its current size.
func (m *Manager) Touch(id uint64, size uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.policy {
	case LRU:
		m.order.Add(id, size)
	case FIFO:
		if !m.order.SetWeight(id, size) {
			m.order.Add(id, size)
		}
	}
}

// Forget stops tracking a bin which was removed by other means.
func (m *Manager) Forget(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order.Remove(id)
}

// Size is the total tracked size in bytes.
func (m *Manager) Size() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.order.Weight()
}

// Len is the number of tracked bins.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.order.Len()
}

// OverBudget reports whether Manage would evict something.
func (m *Manager) OverBudget() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.policy != None && m.order.Weight() > m.maxBytes && m.order.Len() > 1
}

// Manage evicts bins in policy order while the budget is exceeded. The last
// remaining bin is never evicted. remove drops the bin content and returns
// the bytes freed. Evicted ids are returned and kept for TakeRemoved.
func (m *Manager) Manage(remove func(id uint64) uint64) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.policy == None {
		return nil
	}
	evicted := m.order.Shrink(m.maxBytes, 1)
	if len(evicted) == 0 {
		return nil
	}
	freed := uint64(0)
	for _, id := range evicted {
		freed += remove(id)
	}
	m.removed = append(m.removed, evicted...)
	m.log.Debug("Evicted data-bins", "policy", m.policy, "bins", len(evicted), "freed", freed, "size", m.order.Weight())
	return evicted
}

// TakeRemoved returns the ids evicted since the previous call.
func (m *Manager) TakeRemoved() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.removed
	m.removed = nil
	return removed
}

// Reset forgets every tracked bin and the removed list.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order.Purge()
	m.removed = nil
}
