package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/simonhull/mediameta/internal/types"
)

// tiffEntry is one 12-byte IFD entry record for fixture building.
type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	val   [4]byte
}

// inline4 packs an inline value field.
func inline4(b ...byte) [4]byte {
	var v [4]byte
	copy(v[:], b)
	return v
}

// inlineU16 packs a single SHORT into the value field.
func inlineU16(order binary.ByteOrder, v uint16) [4]byte {
	var out [4]byte
	order.PutUint16(out[:], v)
	return out
}

// inlineU32 packs a LONG or an offset into the value field.
func inlineU32(order binary.ByteOrder, v uint32) [4]byte {
	var out [4]byte
	order.PutUint32(out[:], v)
	return out
}

// writeHeader writes the TIFF byte-order marker, magic, and first-IFD
// offset.
func writeHeader(buf *bytes.Buffer, order binary.ByteOrder, firstIFD uint32) {
	if order == binary.LittleEndian {
		buf.WriteString("II")
	} else {
		buf.WriteString("MM")
	}
	binary.Write(buf, order, uint16(42))
	binary.Write(buf, order, firstIFD)
}

// writeIFD writes an entry-count-prefixed IFD with its trailing next-IFD
// offset.
func writeIFD(buf *bytes.Buffer, order binary.ByteOrder, entries []tiffEntry, next uint32) {
	binary.Write(buf, order, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(buf, order, e.tag)
		binary.Write(buf, order, e.typ)
		binary.Write(buf, order, e.count)
		buf.Write(e.val[:])
	}
	binary.Write(buf, order, next)
}

// buildBasicTIFF builds a payload with Make (out-of-line ASCII) and
// Orientation (inline SHORT) in IFD0.
func buildBasicTIFF(order binary.ByteOrder) []byte {
	buf := &bytes.Buffer{}
	writeHeader(buf, order, 8)
	// IFD0 occupies 2 + 2*12 + 4 = 30 bytes starting at 8.
	makeOff := uint32(8 + 30)
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagMake), typ: uint16(TypeASCII), count: 6, val: inlineU32(order, makeOff)},
		{tag: uint16(TagOrientation), typ: uint16(TypeShort), count: 1, val: inlineU16(order, 1)},
	}, 0)
	buf.WriteString("Canon\x00")
	return buf.Bytes()
}

func TestIterBasic(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		it, err := NewIter(buildBasicTIFF(order))
		if err != nil {
			t.Fatalf("NewIter: %v", err)
		}

		got := map[ExifTag]string{}
		for it.Next() {
			e := it.Entry()
			if e.Origin() != OriginPrimary {
				t.Errorf("origin = %v, want OriginPrimary", e.Origin())
			}
			v, err := e.Value()
			if err != nil {
				t.Fatalf("resolve %v: %v", e.Tag(), err)
			}
			got[e.Tag()] = v.String()
		}
		if err := it.Err(); err != nil {
			t.Fatalf("iteration failed: %v", err)
		}

		if got[TagMake] != "Canon" {
			t.Errorf("Make = %q, want Canon", got[TagMake])
		}
		if got[TagOrientation] != "1" {
			t.Errorf("Orientation = %q, want 1", got[TagOrientation])
		}
	}
}

// buildSubIFDTIFF builds IFD0 with Exif and GPS pointers. The GPS IFD
// reuses the numeric id of TagGPSLatitudeRef (0x0001), which collides
// with nothing in IFD0 only because origins keep the namespaces apart.
func buildSubIFDTIFF(t *testing.T) []byte {
	t.Helper()
	order := binary.LittleEndian
	buf := &bytes.Buffer{}
	writeHeader(buf, order, 8)

	// Layout: IFD0 at 8 (2 entries, 30 bytes), Exif IFD at 38 (1 entry,
	// 18 bytes), GPS IFD at 56 (4 entries, 54 bytes), latitude data at
	// 110, longitude data at 134.
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagExifOffset), typ: uint16(TypeLong), count: 1, val: inlineU32(order, 38)},
		{tag: uint16(TagGPSInfo), typ: uint16(TypeLong), count: 1, val: inlineU32(order, 56)},
	}, 0)
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagFocalLength), typ: uint16(TypeShort), count: 1, val: inlineU16(order, 50)},
	}, 0)
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagGPSLatitudeRef), typ: uint16(TypeASCII), count: 2, val: inline4('N', 0)},
		{tag: uint16(TagGPSLatitude), typ: uint16(TypeRational), count: 3, val: inlineU32(order, 110)},
		{tag: uint16(TagGPSLongitudeRef), typ: uint16(TypeASCII), count: 2, val: inline4('E', 0)},
		{tag: uint16(TagGPSLongitude), typ: uint16(TypeRational), count: 3, val: inlineU32(order, 134)},
	}, 0)
	for _, r := range []Rational{{43, 1}, {17, 1}, {2446, 100}, {84, 1}, {13, 1}, {3767, 100}} {
		binary.Write(buf, order, r.Num)
		binary.Write(buf, order, r.Den)
	}
	return buf.Bytes()
}

func TestIterSubIFDOrigins(t *testing.T) {
	it, err := NewIter(buildSubIFDTIFF(t))
	if err != nil {
		t.Fatalf("NewIter: %v", err)
	}

	origins := map[ExifTag]Origin{}
	for it.Next() {
		e := it.Entry()
		origins[e.Tag()] = e.Origin()
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}

	if origins[TagFocalLength] != OriginExif {
		t.Errorf("FocalLength origin = %v, want OriginExif", origins[TagFocalLength])
	}
	if origins[TagGPSLatitude] != OriginGPS {
		t.Errorf("GPSLatitude origin = %v, want OriginGPS", origins[TagGPSLatitude])
	}

	// 0x0001 appears as GPSLatitudeRef only because of its GPS origin.
	gps, err := it.ParseGPSInfo()
	if err != nil {
		t.Fatalf("ParseGPSInfo: %v", err)
	}
	if gps == nil {
		t.Fatal("ParseGPSInfo returned nil for a payload with a GPS IFD")
	}
	if gps.LatitudeRef != 'N' {
		t.Errorf("LatitudeRef = %c, want N", gps.LatitudeRef)
	}
}

func TestIterFlatSkipsSubIFDs(t *testing.T) {
	it, err := NewIterFlat(buildSubIFDTIFF(t))
	if err != nil {
		t.Fatalf("NewIterFlat: %v", err)
	}
	for it.Next() {
		if it.Entry().Origin() != OriginPrimary {
			t.Errorf("flat iteration yielded %v entry", it.Entry().Origin())
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
}

func TestIterCyclicNextOffset(t *testing.T) {
	order := binary.LittleEndian
	buf := &bytes.Buffer{}
	writeHeader(buf, order, 8)
	// IFD0's next-IFD offset points back at IFD0.
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagOrientation), typ: uint16(TypeShort), count: 1, val: inlineU16(order, 1)},
	}, 8)

	it, err := NewIter(buf.Bytes())
	if err != nil {
		t.Fatalf("NewIter: %v", err)
	}

	steps := 0
	for it.Next() {
		steps++
		if steps > 100 {
			t.Fatal("cyclic IFD chain did not terminate")
		}
	}

	var corrupt *types.CorruptedDataError
	if !errors.As(it.Err(), &corrupt) {
		t.Fatalf("err = %v, want *CorruptedDataError", it.Err())
	}
}

func TestIterCyclicSubIFDPointer(t *testing.T) {
	order := binary.LittleEndian
	buf := &bytes.Buffer{}
	writeHeader(buf, order, 8)
	// The Exif pointer targets IFD0 itself.
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagExifOffset), typ: uint16(TypeLong), count: 1, val: inlineU32(order, 8)},
	}, 0)

	it, err := NewIter(buf.Bytes())
	if err != nil {
		t.Fatalf("NewIter: %v", err)
	}
	steps := 0
	for it.Next() {
		steps++
		if steps > 100 {
			t.Fatal("cyclic sub-IFD pointer did not terminate")
		}
	}

	var corrupt *types.CorruptedDataError
	if !errors.As(it.Err(), &corrupt) {
		t.Fatalf("err = %v, want *CorruptedDataError", it.Err())
	}
}

func TestIterBadEntryIsolated(t *testing.T) {
	order := binary.LittleEndian
	buf := &bytes.Buffer{}
	writeHeader(buf, order, 8)
	// First entry's value offset points far past the payload; the second
	// entry is fine.
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagMake), typ: uint16(TypeASCII), count: 32, val: inlineU32(order, 0xFFFF)},
		{tag: uint16(TagOrientation), typ: uint16(TypeShort), count: 1, val: inlineU16(order, 6)},
	}, 0)

	it, err := NewIter(buf.Bytes())
	if err != nil {
		t.Fatalf("NewIter: %v", err)
	}

	var resolveErrs, resolved int
	for it.Next() {
		if _, err := it.Entry().Value(); err != nil {
			resolveErrs++
		} else {
			resolved++
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("structural error from a value-level failure: %v", err)
	}
	if resolveErrs != 1 || resolved != 1 {
		t.Errorf("resolveErrs=%d resolved=%d, want 1 and 1", resolveErrs, resolved)
	}
}

func TestIterTruncatedHeader(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte("II"), []byte("XXXXXXXX")} {
		if _, err := NewIter(payload); err == nil {
			t.Errorf("NewIter(%q) succeeded, want error", payload)
		}
	}
}

func TestCollectFirstSeenWins(t *testing.T) {
	order := binary.LittleEndian
	buf := &bytes.Buffer{}
	writeHeader(buf, order, 8)
	// Two IFDs in the next-offset chain both set Orientation; IFD0 at 8 is
	// 18 bytes, so IFD1 sits at 26.
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagOrientation), typ: uint16(TypeShort), count: 1, val: inlineU16(order, 1)},
	}, 26)
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagOrientation), typ: uint16(TypeShort), count: 1, val: inlineU16(order, 8)},
	}, 0)

	it, err := NewIter(buf.Bytes())
	if err != nil {
		t.Fatalf("NewIter: %v", err)
	}
	ex, err := it.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	v, ok := ex.GetUint(TagOrientation)
	if !ok || v != 1 {
		t.Errorf("Orientation = %d (ok=%v), want first-seen value 1", v, ok)
	}
	if ex.Len() != 1 {
		t.Errorf("Len = %d, want 1 (duplicate tag folded)", ex.Len())
	}
}

func TestIterNullSubIFDPointer(t *testing.T) {
	// A zero Exif-pointer value means the sub-IFD is absent, like a zero
	// next-IFD offset; sibling entries must still come through cleanly.
	order := binary.LittleEndian
	buf := &bytes.Buffer{}
	writeHeader(buf, order, 8)
	writeIFD(buf, order, []tiffEntry{
		{tag: uint16(TagOrientation), typ: uint16(TypeShort), count: 1, val: inlineU16(order, 1)},
		{tag: uint16(TagExifOffset), typ: uint16(TypeLong), count: 1, val: inlineU32(order, 0)},
	}, 0)

	it, err := NewIter(buf.Bytes())
	if err != nil {
		t.Fatalf("NewIter: %v", err)
	}

	var tags []ExifTag
	for it.Next() {
		e := it.Entry()
		if e.Origin() != OriginPrimary {
			t.Errorf("origin = %v, want OriginPrimary", e.Origin())
		}
		tags = append(tags, e.Tag())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("yielded %d entries, want 2 (%v)", len(tags), tags)
	}
}
