// Package binary provides bounds-checked binary reading over in-memory
// payloads, with the byte order chosen at runtime.
package binary

import (
	"encoding/binary"

	"github.com/simonhull/mediameta/internal/types"
)

// Byte orders re-exported so callers don't need to import encoding/binary
// alongside this package.
var (
	BigEndian    binary.ByteOrder = binary.BigEndian
	LittleEndian binary.ByteOrder = binary.LittleEndian
)

// Slice returns data[off:off+n], failing with *types.OutOfBoundsError
// instead of panicking when the range runs past the payload.
func Slice(data []byte, off, n int, what string) ([]byte, error) {
	if off < 0 || n < 0 || off > len(data) || n > len(data)-off {
		return nil, &types.OutOfBoundsError{
			What:   what,
			Offset: int64(off),
			Length: n,
			Size:   int64(len(data)),
		}
	}
	return data[off : off+n], nil
}

// Read reads a numeric value of type T at the given offset using the
// supplied byte order.
func Read[T uint8 | uint16 | uint32 | uint64](data []byte, off int, what string, order binary.ByteOrder) (T, error) {
	var zero T
	var size int
	switch any(zero).(type) {
	case uint8:
		size = 1
	case uint16:
		size = 2
	case uint32:
		size = 4
	case uint64:
		size = 8
	}

	buf, err := Slice(data, off, size, what)
	if err != nil {
		return zero, err
	}

	var val T
	switch any(zero).(type) {
	case uint8:
		val = T(buf[0])
	case uint16:
		val = T(order.Uint16(buf))
	case uint32:
		val = T(order.Uint32(buf))
	case uint64:
		val = T(order.Uint64(buf))
	}
	return val, nil
}

// ReadBE reads a big-endian value. ISOBMFF box fields are always big-endian.
func ReadBE[T uint8 | uint16 | uint32 | uint64](data []byte, off int, what string) (T, error) {
	return Read[T](data, off, what, binary.BigEndian)
}
