package exif

import (
	"encoding/binary"

	"github.com/simonhull/mediameta/internal/types"
)

// entryRecordLen is the fixed size of one IFD entry record: tag id (2),
// data type (2), count (4), value/offset field (4).
const entryRecordLen = 12

// ifdCursor tracks the decoder's position inside one IFD.
type ifdCursor struct {
	origin Origin
	offset uint32 // IFD start (entry count field)
	count  int
	index  int
	pos    uint32 // offset of the next entry record
}

// Iter lazily walks the IFD entries of one TIFF-structured payload.
//
// Iteration is a cursor state machine: entries are emitted without
// resolving their values, sub-IFD pointers (Exif, GPS, Interop) push a new
// cursor onto an explicit stack, and every visited IFD offset is recorded
// so cyclic or adversarial offset graphs terminate with a corrupt-data
// error instead of looping.
//
// Use it scanner-style:
//
//	for it.Next() {
//		e := it.Entry()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
//
// Entries already yielded stay valid after a later structural failure.
type Iter struct {
	data    []byte
	order   binary.ByteOrder
	subIFDs bool

	stack   []ifdCursor
	visited map[uint32]bool
	cur     *ifdCursor
	entry   *ParsedEntry
	err     error
}

// NewIter prepares iteration over payload, whose first bytes must be a
// TIFF header (byte-order marker, magic 42, first-IFD offset).
//
// The payload must stay immutable for the lifetime of the iterator and of
// every entry it yields; the iterator borrows rather than copies.
func NewIter(payload []byte) (*Iter, error) {
	return newIter(payload, true)
}

// NewIterFlat is NewIter without sub-IFD descent.
func NewIterFlat(payload []byte) (*Iter, error) {
	return newIter(payload, false)
}

func newIter(payload []byte, subIFDs bool) (*Iter, error) {
	if len(payload) < 8 {
		return nil, &types.CorruptedDataError{Reason: "truncated TIFF header"}
	}

	var order binary.ByteOrder
	switch {
	case payload[0] == 'I' && payload[1] == 'I' && payload[2] == 0x2A && payload[3] == 0x00:
		order = binary.LittleEndian
	case payload[0] == 'M' && payload[1] == 'M' && payload[2] == 0x00 && payload[3] == 0x2A:
		order = binary.BigEndian
	default:
		return nil, &types.CorruptedDataError{Reason: "missing TIFF byte-order marker"}
	}

	it := &Iter{
		data:    payload,
		order:   order,
		subIFDs: subIFDs,
		visited: make(map[uint32]bool),
	}
	first := order.Uint32(payload[4:8])
	it.stack = append(it.stack, ifdCursor{origin: OriginPrimary, offset: first})
	return it, nil
}

// ByteOrder returns the payload's declared byte order.
func (it *Iter) ByteOrder() binary.ByteOrder {
	return it.order
}

// Next advances to the next entry. It returns false when iteration is done
// or a structural error occurred; check Err afterwards.
func (it *Iter) Next() bool {
	if it.err != nil {
		return false
	}
	for {
		if it.cur == nil {
			if len(it.stack) == 0 {
				return false
			}
			next := it.stack[len(it.stack)-1]
			it.stack = it.stack[:len(it.stack)-1]
			if !it.enterIFD(next) {
				return false
			}
		}

		cur := it.cur
		if cur.index < cur.count {
			e, ok := it.readEntry(cur)
			if !ok {
				return false
			}
			cur.index++
			cur.pos += entryRecordLen
			it.entry = e
			return true
		}

		// End of this IFD: follow the trailing next-IFD offset, then pick
		// up whatever sub-IFDs were queued.
		if !it.leaveIFD(cur) {
			return false
		}
		it.cur = nil
	}
}

// enterIFD validates and opens the IFD at c.offset.
func (it *Iter) enterIFD(c ifdCursor) bool {
	if it.visited[c.offset] {
		it.err = &types.CorruptedDataError{
			Offset: int64(c.offset),
			Reason: "cyclic IFD offset graph",
		}
		return false
	}
	it.visited[c.offset] = true

	if int(c.offset)+2 > len(it.data) {
		it.err = &types.CorruptedDataError{
			Offset: int64(c.offset),
			Reason: "IFD offset out of range",
		}
		return false
	}
	c.count = int(it.order.Uint16(it.data[c.offset:]))
	c.pos = c.offset + 2
	it.cur = &c
	return true
}

// readEntry decodes the 12-byte record at cur.pos and queues sub-IFD
// descent for the pointer tags.
func (it *Iter) readEntry(cur *ifdCursor) (*ParsedEntry, bool) {
	if int(cur.pos)+entryRecordLen > len(it.data) {
		it.err = &types.CorruptedDataError{
			Offset: int64(cur.pos),
			Reason: "IFD entry record out of range",
		}
		return nil, false
	}
	rec := it.data[cur.pos:]

	e := &ParsedEntry{
		origin:   cur.origin,
		tag:      ExifTag(it.order.Uint16(rec)),
		dataType: DataType(it.order.Uint16(rec[2:])),
		count:    it.order.Uint32(rec[4:]),
		data:     it.data,
		order:    it.order,
	}
	copy(e.raw[:], rec[8:12])

	if it.subIFDs && cur.origin != OriginGPS {
		if origin, ok := subIFDOrigin(e.tag); ok {
			// A zero pointer means "no such IFD", same as the zero
			// next-IFD offset; only non-null pointers are followed.
			if off := e.inlineOffset(); off != 0 {
				it.stack = append(it.stack, ifdCursor{origin: origin, offset: off})
			}
		}
	}
	return e, true
}

// leaveIFD reads the trailing 4-byte next-IFD offset (0 = end of chain).
func (it *Iter) leaveIFD(cur *ifdCursor) bool {
	if int(cur.pos)+4 > len(it.data) {
		it.err = &types.CorruptedDataError{
			Offset: int64(cur.pos),
			Reason: "next-IFD offset out of range",
		}
		return false
	}
	if next := it.order.Uint32(it.data[cur.pos:]); next != 0 {
		it.stack = append(it.stack, ifdCursor{origin: cur.origin, offset: next})
	}
	return true
}

// subIFDOrigin maps pointer tags to the origin of the IFD they reference.
func subIFDOrigin(tag ExifTag) (Origin, bool) {
	switch tag {
	case TagExifOffset:
		return OriginExif, true
	case TagGPSInfo:
		return OriginGPS, true
	case TagInteropOffset:
		return OriginInterop, true
	default:
		return 0, false
	}
}

// Entry returns the entry produced by the last successful Next.
func (it *Iter) Entry() *ParsedEntry {
	return it.entry
}

// Err returns the structural error that terminated iteration, if any.
// Per-entry value-resolution errors live on the entries, not here.
func (it *Iter) Err() error {
	return it.err
}

// Collect drains a fresh pass over the payload into a resolved Exif map,
// keeping the first-seen value per tag in IFD scan order. Entries whose
// value fails to resolve are skipped; structural errors abort.
func (it *Iter) Collect() (*Exif, error) {
	walk, err := newIter(it.data, it.subIFDs)
	if err != nil {
		return nil, err
	}
	ex := newExif()
	for walk.Next() {
		e := walk.Entry()
		v, err := e.Value()
		if err != nil {
			continue
		}
		ex.add(e.Origin(), e.Tag(), v)
	}
	if walk.err != nil {
		return nil, walk.err
	}
	return ex, nil
}

// ParseGPSInfo makes a fresh pass over the payload and assembles the GPS
// IFD entries into a GPSInfo. Returns nil when the payload has no GPS IFD.
func (it *Iter) ParseGPSInfo() (*GPSInfo, error) {
	walk, err := newIter(it.data, true)
	if err != nil {
		return nil, err
	}
	gps := make(map[ExifTag]EntryValue)
	for walk.Next() {
		e := walk.Entry()
		if e.Origin() != OriginGPS {
			continue
		}
		if v, err := e.Value(); err == nil {
			if _, seen := gps[e.Tag()]; !seen {
				gps[e.Tag()] = v
			}
		}
	}
	if walk.err != nil {
		return nil, walk.err
	}
	info, ok := gpsFromValues(func(t ExifTag) (EntryValue, bool) {
		v, ok := gps[t]
		return v, ok
	})
	if !ok {
		return nil, nil
	}
	return info, nil
}
