// Package jpegseg scans JPEG marker segments for the Exif APP1 payload.
//
// The scan is sequential from the start-of-image marker and never decodes
// entropy-coded data: segment lengths are authoritative, so everything but
// the Exif APP1 segment is skipped by its declared length.
package jpegseg

import (
	"encoding/binary"

	"github.com/simonhull/mediameta/internal/exif"
	"github.com/simonhull/mediameta/internal/load"
	"github.com/simonhull/mediameta/internal/types"
)

// JPEG markers the scan cares about.
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1
	markerTEM  = 0x01
)

// FindExifPayload scans the JPEG starting at absolute offset base and
// returns its Exif TIFF payload. The slice borrows the loader window and
// is valid only until the next loader operation.
//
// The scan ends at SOS or EOI; types.ErrExifNotFound means the image
// carries no Exif APP1 segment.
func FindExifPayload(l *load.Loader, base int64) ([]byte, error) {
	soi, err := l.ReadAbs(base, 2)
	if err != nil {
		return nil, types.WrapParse("JPEG SOI", err)
	}
	if soi[0] != 0xFF || soi[1] != markerSOI {
		return nil, &types.CorruptedDataError{Offset: base, Reason: "missing JPEG SOI marker"}
	}

	off := base + 2
	for {
		marker, err := readMarker(l, &off)
		if err != nil {
			return nil, err
		}

		switch {
		case marker == markerSOS, marker == markerEOI:
			return nil, types.ErrExifNotFound
		case standalone(marker):
			continue
		}

		lenBytes, err := l.ReadAbs(off, 2)
		if err != nil {
			return nil, types.WrapParse("JPEG segment length", err)
		}
		segLen := int(binary.BigEndian.Uint16(lenBytes))
		if segLen < 2 {
			return nil, &types.CorruptedDataError{Offset: off, Reason: "JPEG segment length smaller than its own field"}
		}

		if marker == markerAPP1 {
			payload, err := l.ReadAbs(off+2, segLen-2)
			if err != nil {
				return nil, types.WrapParse("APP1 segment", err)
			}
			if exif.HasSignature(payload) {
				tiff := payload[len(exif.Signature):]
				if !exif.IsTIFFHeader(tiff) {
					return nil, &types.CorruptedDataError{
						Offset: off + 2,
						Reason: "APP1 Exif payload does not hold a TIFF header",
					}
				}
				return tiff, nil
			}
		}
		off += int64(segLen)
	}
}

// readMarker reads the next marker at *off, tolerating fill bytes (a run
// of 0xFF before the marker byte). On return *off points past the marker.
func readMarker(l *load.Loader, off *int64) (byte, error) {
	b, err := l.ReadAbs(*off, 2)
	if err != nil {
		return 0, types.WrapParse("JPEG marker", err)
	}
	if b[0] != 0xFF {
		return 0, &types.CorruptedDataError{Offset: *off, Reason: "expected JPEG marker byte"}
	}
	*off += 2
	for b[1] == 0xFF {
		b, err = l.ReadAbs(*off-1, 2)
		if err != nil {
			return 0, types.WrapParse("JPEG marker", err)
		}
		*off++
	}
	return b[1], nil
}

// standalone reports whether the marker has no length field: TEM, the
// restart markers RST0-RST7, and a stray SOI.
func standalone(marker byte) bool {
	return marker == markerTEM || marker == markerSOI ||
		(marker >= 0xD0 && marker <= 0xD7)
}
