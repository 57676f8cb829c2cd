package bmff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/simonhull/mediameta/internal/types"
)

// box builds one ISOBMFF box with an 8-byte header.
func box(typ string, body ...[]byte) []byte {
	buf := &bytes.Buffer{}
	size := 8
	for _, b := range body {
		size += len(b)
	}
	binary.Write(buf, binary.BigEndian, uint32(size))
	buf.WriteString(typ)
	for _, b := range body {
		buf.Write(b)
	}
	return buf.Bytes()
}

// largeBox builds a box using the 64-bit size field.
func largeBox(typ string, body []byte) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint32(1))
	buf.WriteString(typ)
	binary.Write(buf, binary.BigEndian, uint64(16+len(body)))
	buf.Write(body)
	return buf.Bytes()
}

func TestScannerSiblings(t *testing.T) {
	data := append(box("ftyp", []byte("isom")), box("free")...)
	data = append(data, box("mdat", make([]byte, 32))...)

	var got []string
	s := NewScanner(data)
	for s.Next() {
		got = append(got, s.Box().Type)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	want := []string{"ftyp", "free", "mdat"}
	if len(got) != len(want) {
		t.Fatalf("scanned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("box %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChildRangesWithinParent(t *testing.T) {
	inner1 := box("mvhd", make([]byte, 20))
	inner2 := box("trak", box("tkhd", make([]byte, 12)))
	moov := box("moov", inner1, inner2)

	parent, err := readHeader(moov, 0)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if parent.Size != len(moov) {
		t.Fatalf("parent size = %d, want %d", parent.Size, len(moov))
	}

	sum := 0
	s := NewScanner(parent.Body(moov))
	for s.Next() {
		child := s.Box()
		sum += child.Size
		if child.End() > parent.Size-parent.HeaderLen {
			t.Errorf("child %q range [%d,%d) escapes its parent", child.Type, child.Offset, child.End())
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if sum > parent.Size-parent.HeaderLen {
		t.Errorf("children total %d bytes, parent body holds %d", sum, parent.Size-parent.HeaderLen)
	}
}

func TestLargeBoxHeader(t *testing.T) {
	data := largeBox("mdat", make([]byte, 100))
	b, err := readHeader(data, 0)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if b.HeaderLen != 16 || b.Size != 116 {
		t.Errorf("HeaderLen=%d Size=%d, want 16 and 116", b.HeaderLen, b.Size)
	}
}

func TestOversizedBoxIsCorrupt(t *testing.T) {
	data := box("moov", make([]byte, 8))
	// Inflate the declared size past the available bytes.
	binary.BigEndian.PutUint32(data, uint32(len(data)+100))

	_, err := readHeader(data, 0)
	var corrupt *types.CorruptedDataError
	if !errors.As(err, &corrupt) {
		t.Fatalf("err = %v, want *CorruptedDataError", err)
	}
}

func TestUndersizedBoxIsCorrupt(t *testing.T) {
	data := box("free")
	binary.BigEndian.PutUint32(data, 4) // smaller than its own header

	_, err := readHeader(data, 0)
	var corrupt *types.CorruptedDataError
	if !errors.As(err, &corrupt) {
		t.Fatalf("err = %v, want *CorruptedDataError", err)
	}
}

func TestFindDeepThroughUUID(t *testing.T) {
	cmt1 := box("CMT1", []byte("payload"))
	uuid := box("uuid", make([]byte, uuidTypeLen), cmt1)
	moov := box("moov", box("mvhd", make([]byte, 20)), uuid)

	found, err := findDeep(moov[8:], "CMT1")
	if err != nil {
		t.Fatalf("findDeep: %v", err)
	}
	if string(found) != "payload" {
		t.Errorf("findDeep = %q, want \"payload\"", found)
	}
}

func TestFindDeepSkipsLeaves(t *testing.T) {
	// CMT1 hidden inside mdat must not be found: mdat is payload, not a
	// metadata container.
	mdat := box("mdat", box("CMT1", []byte("x")))
	found, err := findDeep(mdat, "CMT1")
	if err != nil {
		t.Fatalf("findDeep: %v", err)
	}
	if found != nil {
		t.Error("findDeep descended into mdat")
	}
}
