// Package stream implements the gap-free byte-range stream every data-bin is
// stored in. Segments arrive tagged with an absolute offset and are merged
// into one logical stream [0, Len()) that never has holes.
package stream

import (
	"io"
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrLogic is the root of errors caused by a caller or peer breaking a
	// stream invariant. Such errors never leave the stream half-mutated.
	ErrLogic = errors.New("jpip logic error")
	// ErrHole is returned when a segment would leave a gap in the stream.
	ErrHole = errors.WithMessage(ErrLogic, "segment starts beyond the stream length")
	// ErrEndOfStream is returned when a read or a seek passes the stream end.
	ErrEndOfStream = errors.New("end of stream")
)

// Stream is an append-only, randomly seekable buffer made of owned chunks.
// It is not safe for concurrent use; data-bins serialize access with their own lock.
type Stream struct {
	chunks [][]byte
	starts []uint64 // absolute offset of every chunk
	length uint64

	chunk int    // chunk under the cursor
	off   int    // offset inside that chunk
	pos   uint64 // absolute cursor position, always <= length
}

// New returns an empty stream.
func New() *Stream {
	return &Stream{}
}

// Len is the logical length of the stream.
func (s *Stream) Len() uint64 {
	return s.length
}

// Pos is the absolute read position.
func (s *Stream) Pos() uint64 {
	return s.pos
}

// Remaining is the number of bytes between the cursor and the stream end.
func (s *Stream) Remaining() uint64 {
	return s.length - s.pos
}

// Append adds data to the tail of the stream.
func (s *Stream) Append(data []byte) {
	if len(data) == 0 {
		return
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	s.chunks = append(s.chunks, chunk)
	s.starts = append(s.starts, s.length)
	s.length += uint64(len(data))
}

// AddAt merges a segment that starts at the absolute offset into the stream.
// Bytes that the stream already holds are dropped, only the novel suffix is
// appended. A segment starting past Len() is rejected with ErrHole.
func (s *Stream) AddAt(data []byte, offset uint64) error {
	if offset > s.length {
		return errors.Wrapf(ErrHole, "offset %d, stream length %d", offset, s.length)
	}
	end := offset + uint64(len(data))
	if end <= s.length {
		return nil
	}
	s.Append(data[s.length-offset:])
	return nil
}

// Seek moves the cursor to the absolute position.
func (s *Stream) Seek(pos uint64) error {
	if pos > s.length {
		return errors.Wrapf(ErrEndOfStream, "seek to %d, stream length %d", pos, s.length)
	}
	s.setPos(pos)
	return nil
}

// Skip advances the cursor by n bytes.
func (s *Stream) Skip(n uint64) error {
	if n > s.Remaining() {
		return errors.Wrapf(ErrEndOfStream, "skip %d, remaining %d", n, s.Remaining())
	}
	s.setPos(s.pos + n)
	return nil
}

// ReadFull fills buf entirely or fails without moving the cursor.
func (s *Stream) ReadFull(buf []byte) error {
	if uint64(len(buf)) > s.Remaining() {
		return errors.Wrapf(ErrEndOfStream, "read %d, remaining %d", len(buf), s.Remaining())
	}
	s.read(buf)
	return nil
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.Remaining() == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > s.Remaining() {
		p = p[:s.Remaining()]
	}
	s.read(p)
	return len(p), nil
}

// ReadByte implements io.ByteReader.
func (s *Stream) ReadByte() (byte, error) {
	if s.Remaining() == 0 {
		return 0, io.EOF
	}
	var b [1]byte
	s.read(b[:])
	return b[0], nil
}

// ReadAt copies n bytes starting at the absolute offset, leaving the cursor alone.
func (s *Stream) ReadAt(offset uint64, n int) ([]byte, error) {
	if offset > s.length || uint64(n) > s.length-offset {
		return nil, errors.Wrapf(ErrEndOfStream, "read %d at %d, stream length %d", n, offset, s.length)
	}
	saved := s.pos
	s.setPos(offset)
	res := make([]byte, n)
	s.read(res)
	s.setPos(saved)
	return res, nil
}

// Bytes returns a contiguous copy of the whole stream.
func (s *Stream) Bytes() []byte {
	res := make([]byte, 0, s.length)
	for _, c := range s.chunks {
		res = append(res, c...)
	}
	return res
}

// Chunks is the number of raw chunks backing the stream.
func (s *Stream) Chunks() int {
	return len(s.chunks)
}

// Reset drops all the data and rewinds the cursor.
func (s *Stream) Reset() {
	s.chunks = nil
	s.starts = nil
	s.length = 0
	s.chunk, s.off, s.pos = 0, 0, 0
}

func (s *Stream) setPos(pos uint64) {
	s.pos = pos
	if pos == s.length {
		s.chunk, s.off = len(s.chunks), 0
		return
	}
	// last chunk starting at or before pos
	i := sort.Search(len(s.starts), func(i int) bool { return s.starts[i] > pos }) - 1
	s.chunk = i
	s.off = int(pos - s.starts[i])
}

// read copies len(buf) bytes from the cursor; the caller checks bounds.
func (s *Stream) read(buf []byte) {
	for n := 0; n < len(buf); {
		c := s.chunks[s.chunk]
		copied := copy(buf[n:], c[s.off:])
		n += copied
		s.off += copied
		s.pos += uint64(copied)
		if s.off == len(c) {
			s.chunk++
			s.off = 0
		}
	}
}
