package wire

import (
	"io"

	"github.com/pkg/errors"
)

const (
	// maxVBASBytes is the longest VBAS accepted, 63 value bits.
	maxVBASBytes = 9
	// MaxVBAS is the greatest value a standalone VBAS carries.
	MaxVBAS = 1<<63 - 1

	vbasMore = 0x80
	vbasMask = 0x7f
)

// ReadVBAS reads one big-endian variable-length byte-aligned integer.
// It returns io.EOF if the source is exhausted before the first byte and
// io.ErrUnexpectedEOF if it is exhausted in the middle of the value.
func ReadVBAS(r io.ByteReader) (uint64, error) {
	var v uint64
	for i := 0; i < maxVBASBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v = v<<7 | uint64(b&vbasMask)
		if b&vbasMore == 0 {
			return v, nil
		}
	}
	return 0, ErrVBASOverflow
}

// VBASLen is the encoded size of v.
func VBASLen(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

// AppendVBAS appends the encoded v to dst.
func AppendVBAS(dst []byte, v uint64) ([]byte, error) {
	if v > MaxVBAS {
		return dst, errors.Wrapf(ErrVBASRange, "%d", v)
	}
	for i := VBASLen(v) - 1; i > 0; i-- {
		dst = append(dst, byte(v>>(7*uint(i)))&vbasMask|vbasMore)
	}
	return append(dst, byte(v)&vbasMask), nil
}
