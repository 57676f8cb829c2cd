package bmff

import (
	"github.com/simonhull/mediameta/internal/exif"
	"github.com/simonhull/mediameta/internal/load"
	"github.com/simonhull/mediameta/internal/types"
)

// cmtBoxes are the moov-level leaf boxes Canon CR3 files spread their
// TIFF-structured Exif data across. Some may be absent; the present ones
// concatenate in this order.
var cmtBoxes = [4]string{"CMT1", "CMT2", "CMT3", "CMT4"}

// ParseCr3Exif reconstructs the Exif TIFF payload of a Canon CR3 file
// from its CMT boxes. It returns (nil, nil) when the file carries no
// usable Exif data, which is not an error.
func ParseCr3Exif(l *load.Loader) ([]byte, error) {
	moov, found, err := FindTopLevel(l, "moov")
	if err != nil {
		return nil, types.WrapParse("moov", err)
	}
	if !found {
		return nil, nil
	}

	var data []byte
	for _, name := range cmtBoxes {
		body, err := findDeep(moov, name)
		if err != nil {
			return nil, types.WrapParse("moov/"+name, err)
		}
		if body != nil {
			data = append(data, body...)
		}
	}
	return ReconstructCMT(data)
}

// ReconstructCMT normalizes concatenated CMT payloads down to a bare TIFF
// structure. Four cases: the payload opens with the Exif signature (strip
// 6 bytes), a 4-byte prefix precedes the signature (strip 10), the payload
// already is a TIFF header (keep), anything else is "no data".
func ReconstructCMT(data []byte) ([]byte, error) {
	switch {
	case len(data) < 2:
		return nil, nil
	case exif.HasSignature(data):
		return data[len(exif.Signature):], nil
	case len(data) >= 4+len(exif.Signature) && exif.HasSignature(data[4:]):
		return data[4+len(exif.Signature):], nil
	case exif.IsTIFFHeader(data):
		return data, nil
	default:
		return nil, nil
	}
}
