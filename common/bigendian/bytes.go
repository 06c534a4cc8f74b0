package bigendian

import (
	"encoding/binary"
	"errors"
)

var errShortKey = errors.New("bigendian: key is too short")

// Uint64ToBytes converts uint64 to bytes.
func Uint64ToBytes(n uint64) []byte {
	var res [8]byte
	binary.BigEndian.PutUint64(res[:], n)
	return res[:]
}

// AppendUint64 appends the big-endian form of n to dst.
func AppendUint64(dst []byte, n uint64) []byte {
	var res [8]byte
	binary.BigEndian.PutUint64(res[:], n)
	return append(dst, res[:]...)
}

// BytesToUint64 converts uint64 from bytes.
func BytesToUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// ParseUint64 is BytesToUint64 for untrusted input, e.g. keys read back from a db.
func ParseUint64(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, errShortKey
	}
	return binary.BigEndian.Uint64(b), nil
}

// Uint32ToBytes converts uint32 to bytes.
func Uint32ToBytes(n uint32) []byte {
	var res [4]byte
	binary.BigEndian.PutUint32(res[:], n)
	return res[:]
}

// BytesToUint32 converts uint32 from bytes.
func BytesToUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
