package bmff

import (
	"encoding/binary"

	"github.com/simonhull/mediameta/internal/exif"
	"github.com/simonhull/mediameta/internal/load"
	"github.com/simonhull/mediameta/internal/types"
)

// ParseHeifExif locates the Exif item of a HEIF file through the
// meta/iinf/iloc chain and returns a copy of its TIFF payload.
func ParseHeifExif(l *load.Loader) ([]byte, error) {
	meta, found, err := FindTopLevel(l, "meta")
	if err != nil {
		return nil, types.WrapParse("meta", err)
	}
	if !found {
		return nil, types.ErrExifNotFound
	}

	// meta is a full box in HEIF.
	if len(meta) < 4 {
		return nil, &types.CorruptedDataError{Reason: "meta box too small"}
	}
	// Copy before the loader window moves under us in the iloc reads.
	meta = append([]byte(nil), meta[4:]...)

	itemID, ok, err := findExifItemID(meta)
	if err != nil {
		return nil, types.WrapParse("meta/iinf", err)
	}
	if !ok {
		return nil, types.ErrExifNotFound
	}

	extents, err := findItemExtents(meta, itemID)
	if err != nil {
		return nil, types.WrapParse("meta/iloc", err)
	}
	if len(extents) == 0 {
		return nil, types.ErrExifNotFound
	}

	var payload []byte
	for _, ext := range extents {
		data, err := l.ReadAbs(int64(ext.offset), int(ext.length))
		if err != nil {
			return nil, types.WrapParse("exif item", err)
		}
		payload = append(payload, data...)
	}
	return stripItemHeader(payload)
}

// stripItemHeader removes the exif_tiff_header_offset prefix of the Exif
// item payload, leaving a bare TIFF structure.
func stripItemHeader(payload []byte) ([]byte, error) {
	if len(payload) < 4 {
		return nil, &types.CorruptedDataError{Reason: "exif item payload too small"}
	}
	skip := 4 + int(binary.BigEndian.Uint32(payload))
	if skip > len(payload) {
		return nil, &types.CorruptedDataError{Reason: "exif item header offset past payload"}
	}
	tiff := payload[skip:]
	if exif.HasSignature(tiff) {
		tiff = tiff[len(exif.Signature):]
	}
	if !exif.IsTIFFHeader(tiff) {
		return nil, &types.CorruptedDataError{Reason: "exif item does not hold a TIFF header"}
	}
	return tiff, nil
}

// findExifItemID walks iinf's infe entries for the item typed "Exif".
func findExifItemID(meta []byte) (uint32, bool, error) {
	iinf, ok, err := FindFirst(meta, "iinf")
	if err != nil || !ok {
		return 0, false, err
	}
	body := iinf.Body(meta)
	if len(body) < 6 {
		return 0, false, &types.CorruptedDataError{Reason: "iinf box too small"}
	}
	var off int
	if body[0] == 0 {
		off = 4 + 2 // version 0: 16-bit entry count
	} else {
		off = 4 + 4
	}

	s := NewScanner(body[off:])
	for s.Next() {
		box := s.Box()
		if box.Type != "infe" {
			continue
		}
		entry := box.Body(body[off:])
		if len(entry) < 4 {
			continue
		}
		version := entry[0]
		var itemID uint32
		var rest []byte
		switch {
		case version == 2 && len(entry) >= 12:
			itemID = uint32(binary.BigEndian.Uint16(entry[4:6]))
			rest = entry[8:12]
		case version == 3 && len(entry) >= 14:
			itemID = binary.BigEndian.Uint32(entry[4:8])
			rest = entry[10:14]
		default:
			continue
		}
		if string(rest) == "Exif" {
			return itemID, true, nil
		}
	}
	return 0, false, s.Err()
}

type extent struct {
	offset uint64
	length uint64
}

// findItemExtents decodes the iloc box and returns the absolute extents
// of the given item.
func findItemExtents(meta []byte, itemID uint32) ([]extent, error) {
	iloc, ok, err := FindFirst(meta, "iloc")
	if err != nil || !ok {
		return nil, err
	}
	body := iloc.Body(meta)
	r := &ilocReader{data: body}

	version := r.byte()
	r.skip(3) // flags
	sizes := r.byte()
	offsetSize := int(sizes >> 4)
	lengthSize := int(sizes & 0x0F)
	sizes = r.byte()
	baseOffsetSize := int(sizes >> 4)
	indexSize := 0
	if version == 1 || version == 2 {
		indexSize = int(sizes & 0x0F)
	}

	var count uint32
	if version < 2 {
		count = uint32(r.uint(2))
	} else {
		count = uint32(r.uint(4))
	}

	for i := uint32(0); i < count && r.err == nil; i++ {
		var id uint32
		if version < 2 {
			id = uint32(r.uint(2))
		} else {
			id = uint32(r.uint(4))
		}
		method := uint64(0)
		if version == 1 || version == 2 {
			method = r.uint(2) & 0x0F
		}
		r.skip(2) // data reference index
		base := r.uint(baseOffsetSize)
		extentCount := int(r.uint(2))

		match := id == itemID && method == 0
		var extents []extent
		for j := 0; j < extentCount && r.err == nil; j++ {
			r.skip(indexSize)
			off := r.uint(offsetSize)
			length := r.uint(lengthSize)
			if match {
				extents = append(extents, extent{offset: base + off, length: length})
			}
		}
		if match {
			if r.err != nil {
				break
			}
			return extents, nil
		}
	}
	if r.err != nil {
		return nil, &types.CorruptedDataError{Reason: "truncated iloc box"}
	}
	return nil, nil
}

// ilocReader is a cursor over the variable-width iloc fields.
type ilocReader struct {
	data []byte
	pos  int
	err  error
}

func (r *ilocReader) byte() byte {
	if r.err != nil || r.pos >= len(r.data) {
		r.err = &types.CorruptedDataError{Reason: "truncated iloc box"}
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *ilocReader) skip(n int) {
	if r.err != nil {
		return
	}
	if r.pos+n > len(r.data) {
		r.err = &types.CorruptedDataError{Reason: "truncated iloc box"}
		return
	}
	r.pos += n
}

// uint reads an n-byte big-endian unsigned integer; n of zero yields 0.
func (r *ilocReader) uint(n int) uint64 {
	if r.err != nil {
		return 0
	}
	if r.pos+n > len(r.data) {
		r.err = &types.CorruptedDataError{Reason: "truncated iloc box"}
		return 0
	}
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(r.data[r.pos+i])
	}
	r.pos += n
	return v
}
