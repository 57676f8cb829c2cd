package exif

import (
	"encoding/binary"
	"math"
	"strings"
	"time"

	bin "github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/types"
)

// Origin names the IFD an entry was read from. Tag ids overlap between the
// primary and GPS namespaces; the origin keeps them apart.
type Origin int

const (
	OriginPrimary Origin = iota
	OriginExif
	OriginGPS
	OriginInterop
	OriginMakerNote
)

func (o Origin) String() string {
	switch o {
	case OriginPrimary:
		return "IFD0"
	case OriginExif:
		return "ExifIFD"
	case OriginGPS:
		return "GPS"
	case OriginInterop:
		return "Interop"
	case OriginMakerNote:
		return "MakerNote"
	default:
		return "IFD?"
	}
}

// ParsedEntry is one IFD entry as read from its 12-byte record. The entry
// itself is immutable; its value is resolved lazily on first access, and a
// resolution failure is attached to this entry alone.
type ParsedEntry struct {
	origin   Origin
	tag      ExifTag
	dataType DataType
	count    uint32
	raw      [4]byte // inline value or offset into the payload

	data  []byte // the whole TIFF payload the offsets refer to
	order binary.ByteOrder

	resolved bool
	value    EntryValue
	err      error
}

// Origin returns the IFD the entry belongs to.
func (e *ParsedEntry) Origin() Origin { return e.origin }

// Tag returns the entry's tag id.
func (e *ParsedEntry) Tag() ExifTag { return e.tag }

// TagName returns the display name of the tag within its owning IFD.
func (e *ParsedEntry) TagName() string { return e.tag.nameIn(e.origin) }

// DataType returns the declared TIFF data type.
func (e *ParsedEntry) DataType() DataType { return e.dataType }

// Count returns the declared component count.
func (e *ParsedEntry) Count() uint32 { return e.count }

// Value resolves and returns the entry's decoded value. Resolution runs
// once; the outcome (value or error) is cached on the entry.
func (e *ParsedEntry) Value() (EntryValue, error) {
	if !e.resolved {
		e.value, e.err = e.resolve()
		e.resolved = true
	}
	return e.value, e.err
}

// inlineOffset returns the 4-byte field decoded as an offset.
func (e *ParsedEntry) inlineOffset() uint32 {
	return e.order.Uint32(e.raw[:])
}

func (e *ParsedEntry) resolve() (EntryValue, error) {
	size := e.dataType.Size()
	if size == 0 {
		return EntryValue{}, &types.UnsupportedValueTypeError{DataType: uint16(e.dataType)}
	}

	total := uint64(size) * uint64(e.count)
	if total > uint64(len(e.data)) {
		return EntryValue{}, &types.CorruptedDataError{
			Reason: "entry value larger than metadata payload",
		}
	}

	// The 4-byte field holds the value inline when it fits, otherwise an
	// offset to where the value lives.
	var raw []byte
	if total <= 4 {
		raw = e.raw[:total]
	} else {
		off := e.inlineOffset()
		var err error
		raw, err = bin.Slice(e.data, int(off), int(total), "entry value")
		if err != nil {
			return EntryValue{}, &types.CorruptedDataError{
				Offset: int64(off),
				Reason: "entry value offset out of range",
			}
		}
	}

	return decodeValue(e.tag, e.dataType, e.count, raw, e.order)
}

// decodeValue applies data type x count x byte order to the raw value
// bytes. Exhaustive over the TIFF 6.0 type set.
func decodeValue(tag ExifTag, typ DataType, count uint32, raw []byte, order binary.ByteOrder) (EntryValue, error) {
	n := int(count)
	switch typ {
	case TypeASCII:
		s := strings.TrimRight(string(raw), "\x00")
		if tag.isDateTag() {
			if t, err := time.Parse("2006:01:02 15:04:05", s); err == nil {
				return NewTimeValue(t.UTC()), nil
			}
		}
		return EntryValue{typ: typ, v: s}, nil

	case TypeUndefined:
		return EntryValue{typ: typ, v: raw}, nil

	case TypeByte:
		if n == 1 {
			return EntryValue{typ: typ, v: uint64(raw[0])}, nil
		}
		vals := make([]uint64, n)
		for i := range vals {
			vals[i] = uint64(raw[i])
		}
		return EntryValue{typ: typ, v: vals}, nil

	case TypeSByte:
		if n == 1 {
			return EntryValue{typ: typ, v: int64(int8(raw[0]))}, nil
		}
		vals := make([]int64, n)
		for i := range vals {
			vals[i] = int64(int8(raw[i]))
		}
		return EntryValue{typ: typ, v: vals}, nil

	case TypeShort:
		if n == 1 {
			return EntryValue{typ: typ, v: uint64(order.Uint16(raw))}, nil
		}
		vals := make([]uint64, n)
		for i := range vals {
			vals[i] = uint64(order.Uint16(raw[i*2:]))
		}
		return EntryValue{typ: typ, v: vals}, nil

	case TypeSShort:
		if n == 1 {
			return EntryValue{typ: typ, v: int64(int16(order.Uint16(raw)))}, nil
		}
		vals := make([]int64, n)
		for i := range vals {
			vals[i] = int64(int16(order.Uint16(raw[i*2:])))
		}
		return EntryValue{typ: typ, v: vals}, nil

	case TypeLong:
		if n == 1 {
			return EntryValue{typ: typ, v: uint64(order.Uint32(raw))}, nil
		}
		vals := make([]uint64, n)
		for i := range vals {
			vals[i] = uint64(order.Uint32(raw[i*4:]))
		}
		return EntryValue{typ: typ, v: vals}, nil

	case TypeSLong:
		if n == 1 {
			return EntryValue{typ: typ, v: int64(int32(order.Uint32(raw)))}, nil
		}
		vals := make([]int64, n)
		for i := range vals {
			vals[i] = int64(int32(order.Uint32(raw[i*4:])))
		}
		return EntryValue{typ: typ, v: vals}, nil

	case TypeRational:
		if n == 1 {
			return EntryValue{typ: typ, v: readRational(raw, order)}, nil
		}
		vals := make([]Rational, n)
		for i := range vals {
			vals[i] = readRational(raw[i*8:], order)
		}
		return EntryValue{typ: typ, v: vals}, nil

	case TypeSRational:
		if n == 1 {
			return EntryValue{typ: typ, v: readSRational(raw, order)}, nil
		}
		vals := make([]SRational, n)
		for i := range vals {
			vals[i] = readSRational(raw[i*8:], order)
		}
		return EntryValue{typ: typ, v: vals}, nil

	case TypeFloat:
		if n == 1 {
			return EntryValue{typ: typ, v: float64(math.Float32frombits(order.Uint32(raw)))}, nil
		}
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = float64(math.Float32frombits(order.Uint32(raw[i*4:])))
		}
		return EntryValue{typ: typ, v: vals}, nil

	case TypeDouble:
		if n == 1 {
			return EntryValue{typ: typ, v: math.Float64frombits(order.Uint64(raw))}, nil
		}
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
		}
		return EntryValue{typ: typ, v: vals}, nil

	default:
		return EntryValue{}, &types.UnsupportedValueTypeError{DataType: uint16(typ)}
	}
}

func readRational(raw []byte, order binary.ByteOrder) Rational {
	return Rational{Num: order.Uint32(raw), Den: order.Uint32(raw[4:])}
}

func readSRational(raw []byte, order binary.ByteOrder) SRational {
	return SRational{Num: int32(order.Uint32(raw)), Den: int32(order.Uint32(raw[4:]))}
}
