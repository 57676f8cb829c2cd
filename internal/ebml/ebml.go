// Package ebml walks Matroska-family (MKV/MKA/WebM) element trees.
//
// EBML encodes element headers as variable-length integers: the number of
// leading zero bits of the first byte gives the field length (1-8 bytes).
// Ids keep their marker bit, sizes mask it off. The walker descends only
// into Segment/Info/Tracks and seeks past clusters without reading them.
package ebml

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/simonhull/mediameta/internal/exif"
	"github.com/simonhull/mediameta/internal/load"
	"github.com/simonhull/mediameta/internal/track"
	"github.com/simonhull/mediameta/internal/types"
)

// Element ids of interest. Top-level and Segment-level ids are 4 bytes,
// the rest shorter.
const (
	idEBML           = 0x1A45DFA3
	idSegment        = 0x18538067
	idInfo           = 0x1549A966
	idTracks         = 0x1654AE6B
	idCluster        = 0x1F43B675
	idTimestampScale = 0x2AD7B1
	idDuration       = 0x4489
	idDateUTC        = 0x4461
	idMuxingApp      = 0x4D80
	idWritingApp     = 0x5741
	idTrackEntry     = 0xAE
	idVideo          = 0xE0
	idPixelWidth     = 0xB0
	idPixelHeight    = 0xBA
)

// matroskaEpoch is the zero point of DateUTC timestamps.
var matroskaEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// defaultTimestampScale is nanoseconds per timestamp tick when the Info
// element declares none.
const defaultTimestampScale = 1_000_000

// sizeUnknown marks an element whose declared size is the all-ones vint;
// such an element runs to the end of its container.
const sizeUnknown = math.MaxUint64

// header is one decoded element header.
type header struct {
	id   uint64
	size uint64 // data size, sizeUnknown when undeclared
	n    int    // header length in bytes
}

// parseVint decodes one variable-length integer at data[pos:]. keepMarker
// controls whether the length-marker bit stays in the value (ids) or is
// masked off (sizes). A short window reports how many more bytes it needs.
func parseVint(data []byte, pos int, keepMarker bool) (uint64, int, error) {
	if pos >= len(data) {
		return 0, 0, load.NeedMore(pos + 1 - len(data))
	}
	b := data[pos]
	if b == 0 {
		return 0, 0, &types.CorruptedDataError{
			Offset: int64(pos),
			Reason: "EBML vint longer than 8 bytes",
		}
	}
	n := 1
	for mask := byte(0x80); b&mask == 0; mask >>= 1 {
		n++
	}
	if pos+n > len(data) {
		return 0, 0, load.NeedMore(pos + n - len(data))
	}

	v := uint64(b)
	if !keepMarker {
		v &= (1 << (8 - n)) - 1
	}
	allOnes := v == (1<<(8-n))-1
	for i := 1; i < n; i++ {
		c := data[pos+i]
		v = v<<8 | uint64(c)
		allOnes = allOnes && c == 0xFF
	}
	if !keepMarker && allOnes {
		return sizeUnknown, n, nil
	}
	return v, n, nil
}

// parseHeader decodes the element header at data[pos:]: id vint then size
// vint.
func parseHeader(data []byte, pos int) (header, error) {
	id, idLen, err := parseVint(data, pos, true)
	if err != nil {
		return header{}, err
	}
	size, sizeLen, err := parseVint(data, pos+idLen, false)
	if err != nil {
		return header{}, err
	}
	return header{id: id, size: size, n: idLen + sizeLen}, nil
}

// headerAt reads the element header at absolute offset off, growing the
// loader window as the vint lengths demand.
func headerAt(l *load.Loader, off int64) (header, error) {
	if err := l.SkipTo(off); err != nil {
		return header{}, err
	}
	return load.Run(l, func(data []byte) (header, error) {
		return parseHeader(data, 0)
	})
}

// ParseTrackInfo extracts the track summary of a Matroska file: duration,
// creation date and writing application from Segment/Info, dimensions from
// the first video TrackEntry. Cluster payloads are seeked past unread.
func ParseTrackInfo(l *load.Loader) (*track.Info, error) {
	hdr, err := headerAt(l, 0)
	if err != nil {
		return nil, types.WrapParse("EBML header", err)
	}
	if hdr.id != idEBML {
		return nil, &types.CorruptedDataError{Reason: "missing EBML header element"}
	}
	if hdr.size == sizeUnknown {
		return nil, &types.CorruptedDataError{Reason: "EBML header of undeclared size"}
	}

	off := int64(hdr.n) + int64(hdr.size)
	hdr, err = headerAt(l, off)
	if err != nil {
		return nil, types.WrapParse("Segment", err)
	}
	if hdr.id != idSegment {
		return nil, &types.CorruptedDataError{Offset: off, Reason: "expected Segment element"}
	}

	segStart := off + int64(hdr.n)
	segEnd := int64(-1) // unknown size: walk until EOF
	if hdr.size != sizeUnknown {
		segEnd = segStart + int64(hdr.size)
	}
	return walkSegment(l, segStart, segEnd)
}

// walkSegment scans the Segment's children, loading Info and Tracks whole
// and skipping everything else by declared size.
func walkSegment(l *load.Loader, start, end int64) (*track.Info, error) {
	info := track.NewInfo()
	var sawInfo, sawTracks bool

	for off := start; end < 0 || off < end; {
		hdr, err := headerAt(l, off)
		if err != nil {
			if end < 0 && errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, types.WrapParse("Segment child", err)
		}
		if hdr.size == sizeUnknown {
			return nil, &types.CorruptedDataError{Offset: off, Reason: "child element of undeclared size"}
		}
		if hdr.size > uint64(math.MaxInt64)-uint64(off)-uint64(hdr.n) {
			return nil, &types.CorruptedDataError{Offset: off, Reason: "element size overflows the addressable range"}
		}
		if end >= 0 && off+int64(hdr.n)+int64(hdr.size) > end {
			return nil, &types.CorruptedDataError{Offset: off, Reason: "element overruns its Segment"}
		}

		switch hdr.id {
		case idInfo:
			body, err := l.ReadAbs(off+int64(hdr.n), int(hdr.size))
			if err != nil {
				return nil, types.WrapParse("Segment/Info", err)
			}
			if err := parseInfo(body, info); err != nil {
				return nil, err
			}
			sawInfo = true
		case idTracks:
			body, err := l.ReadAbs(off+int64(hdr.n), int(hdr.size))
			if err != nil {
				return nil, types.WrapParse("Segment/Tracks", err)
			}
			if err := parseTracks(body, info); err != nil {
				return nil, err
			}
			sawTracks = true
		}
		if sawInfo && sawTracks {
			break
		}
		off += int64(hdr.n) + int64(hdr.size)
	}

	if info.Len() == 0 {
		return nil, types.ErrTrackNotFound
	}
	return info, nil
}

// childIter walks the sibling elements of one in-memory body.
func childIter(body []byte, fn func(h header, data []byte) error) error {
	for pos := 0; pos < len(body); {
		h, err := parseHeader(body, pos)
		if err != nil {
			if _, short := err.(*load.NeedMoreError); short {
				return &types.CorruptedDataError{Offset: int64(pos), Reason: "truncated element header"}
			}
			return err
		}
		if h.size == sizeUnknown || pos+h.n+int(h.size) > len(body) {
			return &types.CorruptedDataError{Offset: int64(pos), Reason: "element overruns its parent"}
		}
		if err := fn(h, body[pos+h.n:pos+h.n+int(h.size)]); err != nil {
			return err
		}
		pos += h.n + int(h.size)
	}
	return nil
}

// parseInfo maps the Segment/Info children onto track tags. Duration is in
// timestamp ticks; TimestampScale converts ticks to nanoseconds.
func parseInfo(body []byte, info *track.Info) error {
	scale := uint64(defaultTimestampScale)
	duration := float64(-1)
	var writingApp, muxingApp string

	err := childIter(body, func(h header, data []byte) error {
		switch h.id {
		case idTimestampScale:
			scale = ebmlUint(data)
		case idDuration:
			if f, ok := ebmlFloat(data); ok {
				duration = f
			}
		case idDateUTC:
			if len(data) == 8 {
				ns := int64(ebmlUint(data))
				info.Set(track.TagCreateDate, exif.NewTimeValue(matroskaEpoch.Add(time.Duration(ns))))
			}
		case idWritingApp:
			writingApp = string(data)
		case idMuxingApp:
			muxingApp = string(data)
		}
		return nil
	})
	if err != nil {
		return types.WrapParse("Segment/Info", err)
	}

	// WritingApp names the producing software; MuxingApp is the library
	// underneath it, used only when WritingApp is absent.
	if writingApp != "" {
		info.Set(track.TagSoftware, exif.NewTextValue(writingApp))
	} else if muxingApp != "" {
		info.Set(track.TagSoftware, exif.NewTextValue(muxingApp))
	}

	if duration >= 0 {
		ms := duration * float64(scale) / 1e6
		info.Set(track.TagDurationMs, exif.NewUintValue(uint64(ms)))
	}
	return nil
}

// parseTracks takes dimensions from the first TrackEntry with a Video
// element.
func parseTracks(body []byte, info *track.Info) error {
	err := childIter(body, func(h header, data []byte) error {
		if h.id != idTrackEntry {
			return nil
		}
		return childIter(data, func(h header, data []byte) error {
			if h.id != idVideo {
				return nil
			}
			return childIter(data, func(h header, data []byte) error {
				switch h.id {
				case idPixelWidth:
					info.Set(track.TagImageWidth, exif.NewUintValue(ebmlUint(data)))
				case idPixelHeight:
					info.Set(track.TagImageHeight, exif.NewUintValue(ebmlUint(data)))
				}
				return nil
			})
		})
	})
	if err != nil {
		return types.WrapParse("Segment/Tracks", err)
	}
	return nil
}

// ebmlUint decodes a big-endian unsigned integer of 0-8 bytes.
func ebmlUint(data []byte) uint64 {
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	return v
}

// ebmlFloat decodes a 4- or 8-byte big-endian float.
func ebmlFloat(data []byte) (float64, bool) {
	switch len(data) {
	case 4:
		return float64(math.Float32frombits(uint32(ebmlUint(data)))), true
	case 8:
		return math.Float64frombits(ebmlUint(data)), true
	default:
		return 0, false
	}
}
