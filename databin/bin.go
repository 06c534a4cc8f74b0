package databin

import (
	"sync"

	"github.com/jpipkit/jpip-base/stream"
)

// Bin is a generic data-bin: a gap-free stream plus the completeness flag.
// Main header, tile header and metadata bins are plain Bins.
//
// Bin methods are not synchronized. Callers hold the bin lock (Lock/Unlock)
// for the duration of a segment add or a read, so unrelated bins can be
// mutated concurrently.
type Bin struct {
	mu sync.Mutex

	id       ID
	data     *stream.Stream
	complete bool
}

// NewBin creates an empty data-bin.
func NewBin(id ID) *Bin {
	return &Bin{
		id:   id,
		data: stream.New(),
	}
}

// Lock acquires the bin lock.
func (b *Bin) Lock() {
	b.mu.Lock()
}

// Unlock releases the bin lock.
func (b *Bin) Unlock() {
	b.mu.Unlock()
}

// ID of the data-bin.
func (b *Bin) ID() ID {
	return b.id
}

// AddSegment merges a segment into the bin. The bin becomes complete once a
// segment flagged as holding the last byte has been accepted.
func (b *Bin) AddSegment(data []byte, offset uint64, last bool) error {
	if err := b.data.AddAt(data, offset); err != nil {
		return err
	}
	if last {
		b.complete = true
	}
	return nil
}

// Complete reports whether the last byte of the bin has been received.
func (b *Bin) Complete() bool {
	return b.complete
}

// Len is the number of contiguous bytes held, counted from offset 0.
func (b *Bin) Len() uint64 {
	return b.data.Len()
}

// ReadAt copies n bytes from the absolute offset.
func (b *Bin) ReadAt(offset uint64, n int) ([]byte, error) {
	return b.data.ReadAt(offset, n)
}

// Bytes returns a copy of the whole bin content.
func (b *Bin) Bytes() []byte {
	return b.data.Bytes()
}

// Stream exposes the underlying stream for sequential decoding.
func (b *Bin) Stream() *stream.Stream {
	return b.data
}

// Clear drops the bin content and the completeness flag.
func (b *Bin) Clear() {
	b.data.Reset()
	b.complete = false
}

// Restore replaces the bin content, used when loading a snapshot.
func (b *Bin) Restore(data []byte, complete bool) {
	b.data.Reset()
	b.data.Append(data)
	b.complete = complete
}
