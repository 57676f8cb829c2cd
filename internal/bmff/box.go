// Package bmff walks ISO base media (MP4/MOV/HEIF/CR3) box trees.
//
// Two layers: a loader-level scan over top-level boxes that seeks past
// payload data (mdat) without reading it, and an in-memory Scanner for box
// bodies that were loaded whole (moov, meta).
package bmff

import (
	"fmt"

	bin "github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/types"
)

// Box is one ISOBMFF box located inside an in-memory payload.
type Box struct {
	Type      string // 4-character type code
	Offset    int    // position within the payload it was scanned from
	Size      int    // total size including header
	HeaderLen int    // 8, or 16 for large boxes
}

// DataOffset returns the payload offset where the box body starts.
func (b Box) DataOffset() int {
	return b.Offset + b.HeaderLen
}

// End returns the payload offset one past the box.
func (b Box) End() int {
	return b.Offset + b.Size
}

// Body returns the box body within the payload it was scanned from.
func (b Box) Body(data []byte) []byte {
	return data[b.DataOffset():b.End()]
}

// readHeader reads the box header at offset within data. A declared size
// of 0 extends the box to the end of data; the "large box" sentinel 1
// switches to the 64-bit size field. Sizes that overrun data are corrupt,
// never silently truncated.
func readHeader(data []byte, offset int) (Box, error) {
	size32, err := bin.ReadBE[uint32](data, offset, "box size")
	if err != nil {
		return Box{}, boxBounds(offset, err)
	}
	typeBytes, err := bin.Slice(data, offset+4, 4, "box type")
	if err != nil {
		return Box{}, boxBounds(offset, err)
	}

	box := Box{
		Type:      string(typeBytes),
		Offset:    offset,
		HeaderLen: 8,
	}

	size := uint64(size32)
	switch size32 {
	case 0:
		// Box runs to the end of its container.
		size = uint64(len(data) - offset)
	case 1:
		size64, err := bin.ReadBE[uint64](data, offset+8, "large box size")
		if err != nil {
			return Box{}, boxBounds(offset, err)
		}
		size = size64
		box.HeaderLen = 16
	}

	if size < uint64(box.HeaderLen) {
		return Box{}, &types.CorruptedDataError{
			Offset: int64(offset),
			Reason: fmt.Sprintf("box %q size %d smaller than its header", box.Type, size),
		}
	}
	if size > uint64(len(data)-offset) {
		return Box{}, &types.CorruptedDataError{
			Offset: int64(offset),
			Reason: fmt.Sprintf("box %q size %d overruns its container (%d bytes left)", box.Type, size, len(data)-offset),
		}
	}
	box.Size = int(size)
	return box, nil
}

func boxBounds(offset int, err error) error {
	return &types.CorruptedDataError{
		Offset: int64(offset),
		Reason: fmt.Sprintf("truncated box header: %v", err),
	}
}

// Scanner iterates the sibling boxes of one in-memory body.
type Scanner struct {
	data []byte
	off  int
	box  Box
	err  error
}

// NewScanner scans the top-level boxes of data.
func NewScanner(data []byte) *Scanner {
	return &Scanner{data: data}
}

// Next advances to the next sibling box.
func (s *Scanner) Next() bool {
	if s.err != nil || s.off >= len(s.data) {
		return false
	}
	box, err := readHeader(s.data, s.off)
	if err != nil {
		s.err = err
		return false
	}
	s.box = box
	s.off = box.End()
	return true
}

// Box returns the box produced by the last successful Next.
func (s *Scanner) Box() Box {
	return s.box
}

// Err returns the structural error that stopped the scan, if any.
func (s *Scanner) Err() error {
	return s.err
}

// FindFirst returns the first direct child box of the given type.
func FindFirst(data []byte, boxType string) (Box, bool, error) {
	s := NewScanner(data)
	for s.Next() {
		if s.Box().Type == boxType {
			return s.Box(), true, nil
		}
	}
	return Box{}, false, s.Err()
}

// metadataContainers are the box types that can hold metadata and are
// worth descending into. Payload-bearing leaves (mdat, sample tables) are
// skipped without reading their contents.
var metadataContainers = map[string]bool{
	"moov": true,
	"trak": true,
	"mdia": true,
	"minf": true,
	"udta": true,
	"meta": true,
	"ilst": true,
	"uuid": true,
}

// uuidTypeLen is the usertype field a uuid box carries after its header.
const uuidTypeLen = 16

// findDeep locates the first box of the given type anywhere under data,
// depth-first, descending only into metadata-bearing containers.
func findDeep(data []byte, boxType string) ([]byte, error) {
	s := NewScanner(data)
	for s.Next() {
		box := s.Box()
		if box.Type == boxType {
			return box.Body(data), nil
		}
		if !metadataContainers[box.Type] {
			continue
		}
		body := box.Body(data)
		if box.Type == "uuid" {
			if len(body) < uuidTypeLen {
				continue
			}
			body = body[uuidTypeLen:]
		}
		if box.Type == "meta" {
			body = fullBoxBody(body)
		}
		if found, err := findDeep(body, boxType); err != nil {
			return nil, err
		} else if found != nil {
			return found, nil
		}
	}
	return nil, s.Err()
}

// fullBoxBody strips the version/flags field from a full box body. The
// QuickTime flavor of meta is a plain box; a zero first word marks the
// ISO full-box layout.
func fullBoxBody(body []byte) []byte {
	if len(body) >= 4 && body[0] == 0 && body[1] == 0 && body[2] == 0 && body[3] == 0 {
		return body[4:]
	}
	return body
}
