// Package raf reads Fujifilm RAF containers.
//
// A RAF file embeds a full JPEG preview; the Exif metadata lives in that
// JPEG. The header declares the preview's offset, so the walk is: verify
// the magic, read the offset, hand over to the JPEG segment scanner.
package raf

import (
	"encoding/binary"

	"github.com/simonhull/mediameta/internal/jpegseg"
	"github.com/simonhull/mediameta/internal/load"
	"github.com/simonhull/mediameta/internal/types"
)

// Magic is the ASCII signature opening every RAF file.
const Magic = "FUJIFILMCCD-RAW "

// jpegOffsetPos is the header position of the 4-byte big-endian offset of
// the embedded JPEG.
const jpegOffsetPos = 84

// FindExifPayload locates the embedded JPEG and returns its Exif TIFF
// payload. The slice borrows the loader window and is valid only until
// the next loader operation.
func FindExifPayload(l *load.Loader) ([]byte, error) {
	magic, err := l.ReadAbs(0, len(Magic))
	if err != nil {
		return nil, types.WrapParse("RAF header", err)
	}
	if string(magic) != Magic {
		return nil, &types.CorruptedDataError{Reason: "missing RAF magic"}
	}

	offBytes, err := l.ReadAbs(jpegOffsetPos, 4)
	if err != nil {
		return nil, types.WrapParse("RAF header", err)
	}
	jpegOff := int64(binary.BigEndian.Uint32(offBytes))
	if jpegOff < jpegOffsetPos+4 {
		return nil, &types.CorruptedDataError{
			Offset: jpegOffsetPos,
			Reason: "embedded JPEG offset inside the RAF header",
		}
	}
	return jpegseg.FindExifPayload(l, jpegOff)
}
