package bmff

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"

	bin "github.com/simonhull/mediameta/internal/binary"
	"github.com/simonhull/mediameta/internal/exif"
	"github.com/simonhull/mediameta/internal/load"
	"github.com/simonhull/mediameta/internal/track"
	"github.com/simonhull/mediameta/internal/types"
)

// mp4Epoch is the zero point of ISOBMFF timestamps.
var mp4Epoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

// FindTopLevel scans the file's top-level boxes for the given type,
// seeking past everything else (mdat in particular) without reading it.
// The returned slice is the box body, valid until the next loader
// operation. A clean end of file yields found=false.
func FindTopLevel(l *load.Loader, boxType string) ([]byte, bool, error) {
	var off int64
	for {
		hdr, err := l.ReadAbs(off, 8)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}

		size := uint64(binary.BigEndian.Uint32(hdr[:4]))
		typ := string(hdr[4:8])
		headerLen := int64(8)
		switch size {
		case 0:
			// Last box, runs to end of file.
			if typ != boxType {
				return nil, false, nil
			}
			if err := l.SkipTo(off); err != nil {
				return nil, false, err
			}
			if err := l.EnsureAll(); err != nil {
				return nil, false, err
			}
			return l.Bytes()[headerLen:], true, nil
		case 1:
			ext, err := l.ReadAbs(off+8, 8)
			if err != nil {
				return nil, false, corruptBox(off, typ, err)
			}
			size = binary.BigEndian.Uint64(ext)
			headerLen = 16
		}
		if size < uint64(headerLen) {
			return nil, false, &types.CorruptedDataError{
				Offset: off,
				Reason: "box size smaller than its header",
			}
		}
		// A 64-bit size this large cannot be a real box; letting it through
		// would overflow the offset arithmetic below.
		if size > uint64(math.MaxInt64)-uint64(off) {
			return nil, false, &types.CorruptedDataError{
				Offset: off,
				Reason: "box size overflows the addressable range",
			}
		}

		if typ == boxType {
			body, err := l.ReadAbs(off+headerLen, int(size-uint64(headerLen)))
			if err != nil {
				return nil, false, corruptBox(off, typ, err)
			}
			return body, true, nil
		}
		off += int64(size)
	}
}

// corruptBox classifies a failed body read: a declared size that exceeds
// the source is corruption, not silent truncation.
func corruptBox(off int64, typ string, err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &types.CorruptedDataError{
			Offset: off,
			Reason: "box " + typ + " declares a size past the end of the source",
		}
	}
	return err
}

// ParseTrackInfo extracts the track-metadata summary of an MP4/MOV file:
// creation time and duration from mvhd, dimensions from the first video
// tkhd, make/model/software/GPS from udta or QuickTime keys metadata.
func ParseTrackInfo(l *load.Loader) (*track.Info, error) {
	moov, found, err := FindTopLevel(l, "moov")
	if err != nil {
		return nil, types.WrapParse("moov", err)
	}
	if !found {
		return nil, types.ErrTrackNotFound
	}
	return trackInfoFromMoov(moov)
}

func trackInfoFromMoov(moov []byte) (*track.Info, error) {
	info := track.NewInfo()

	// Apple metadata first so its richer values win over mvhd fallbacks.
	if udta, ok, err := FindFirst(moov, "udta"); err != nil {
		return nil, types.WrapParse("moov/udta", err)
	} else if ok {
		parseUserData(udta.Body(moov), info)
	}
	if err := parseMvhd(moov, info); err != nil {
		return nil, err
	}
	if err := parseDimensions(moov, info); err != nil {
		return nil, err
	}
	if info.Len() == 0 {
		return nil, types.ErrTrackNotFound
	}
	return info, nil
}

// parseMvhd reads the movie header: version/flags, creation and
// modification times, timescale, duration (32-bit fields in version 0,
// 64-bit times and duration in version 1).
func parseMvhd(moov []byte, info *track.Info) error {
	mvhd, ok, err := FindFirst(moov, "mvhd")
	if err != nil || !ok {
		return types.WrapParse("moov/mvhd", err)
	}
	body := mvhd.Body(moov)

	version, err := bin.ReadBE[uint8](body, 0, "mvhd version")
	if err != nil {
		return types.WrapParse("moov/mvhd", err)
	}

	var ctime, duration uint64
	var timescale uint32
	if version == 1 {
		if ctime, err = bin.ReadBE[uint64](body, 4, "mvhd creation time"); err == nil {
			timescale, err = bin.ReadBE[uint32](body, 20, "mvhd timescale")
		}
		if err == nil {
			duration, err = bin.ReadBE[uint64](body, 24, "mvhd duration")
		}
	} else {
		var c32, d32 uint32
		if c32, err = bin.ReadBE[uint32](body, 4, "mvhd creation time"); err == nil {
			timescale, err = bin.ReadBE[uint32](body, 12, "mvhd timescale")
		}
		if err == nil {
			d32, err = bin.ReadBE[uint32](body, 16, "mvhd duration")
		}
		ctime, duration = uint64(c32), uint64(d32)
	}
	if err != nil {
		return types.WrapParse("moov/mvhd", err)
	}

	if ctime > 0 {
		info.Set(track.TagCreateDate, exif.NewTimeValue(mp4Epoch.Add(time.Duration(ctime)*time.Second)))
	}
	if timescale > 0 {
		info.Set(track.TagDurationMs, exif.NewUintValue(duration*1000/uint64(timescale)))
	}
	return nil
}

// parseDimensions takes width/height from the first tkhd carrying a
// non-zero size (the video track). tkhd stores them as 16.16 fixed point
// after the transformation matrix.
func parseDimensions(moov []byte, info *track.Info) error {
	s := NewScanner(moov)
	for s.Next() {
		box := s.Box()
		if box.Type != "trak" {
			continue
		}
		trak := box.Body(moov)
		tkhd, ok, err := FindFirst(trak, "tkhd")
		if err != nil {
			return types.WrapParse("moov/trak/tkhd", err)
		}
		if !ok {
			continue
		}
		body := tkhd.Body(trak)

		version, err := bin.ReadBE[uint8](body, 0, "tkhd version")
		if err != nil {
			continue
		}
		// width field offset: version/flags + creation/modification times,
		// track id, reserved, duration (20 bytes in v0, 32 in v1) +
		// reserved(8) + layer/group/volume/reserved(8) + matrix(36).
		fixed := 20
		if version == 1 {
			fixed = 32
		}
		widthOff := 4 + fixed + 8 + 8 + 36

		w, errW := bin.ReadBE[uint32](body, widthOff, "tkhd width")
		h, errH := bin.ReadBE[uint32](body, widthOff+4, "tkhd height")
		if errW != nil || errH != nil {
			continue
		}
		if w>>16 == 0 || h>>16 == 0 {
			continue
		}
		info.Set(track.TagImageWidth, exif.NewUintValue(uint64(w>>16)))
		info.Set(track.TagImageHeight, exif.NewUintValue(uint64(h>>16)))
		return nil
	}
	return s.Err()
}

// parseUserData maps the Apple metadata found under moov/udta onto track
// tags: classic international-text atoms (©xyz, ©mak, ...) and the
// QuickTime keys/ilst pair.
func parseUserData(udta []byte, info *track.Info) {
	s := NewScanner(udta)
	for s.Next() {
		box := s.Box()
		switch box.Type {
		case "\xA9xyz":
			if v, ok := intlText(box.Body(udta)); ok {
				info.Set(track.TagGpsIso6709, exif.NewTextValue(v))
			}
		case "\xA9mak":
			if v, ok := intlText(box.Body(udta)); ok {
				info.Set(track.TagMake, exif.NewTextValue(v))
			}
		case "\xA9mod":
			if v, ok := intlText(box.Body(udta)); ok {
				info.Set(track.TagModel, exif.NewTextValue(v))
			}
		case "\xA9swr":
			if v, ok := intlText(box.Body(udta)); ok {
				info.Set(track.TagSoftware, exif.NewTextValue(v))
			}
		case "\xA9day":
			if v, ok := intlText(box.Body(udta)); ok {
				setDateText(info, v)
			}
		case "meta":
			parseKeysMeta(fullBoxBody(box.Body(udta)), info)
		}
	}
}

// intlText decodes a QuickTime international-text atom body: a 16-bit
// length, a 16-bit language code, then the text.
func intlText(body []byte) (string, bool) {
	if len(body) < 4 {
		return "", false
	}
	n := int(binary.BigEndian.Uint16(body))
	if n > len(body)-4 {
		n = len(body) - 4
	}
	return string(body[4 : 4+n]), true
}

// quicktimeKeys maps com.apple.quicktime key names to track tags.
var quicktimeKeys = map[string]track.Tag{
	"com.apple.quicktime.make":             track.TagMake,
	"com.apple.quicktime.model":            track.TagModel,
	"com.apple.quicktime.software":         track.TagSoftware,
	"com.apple.quicktime.creationdate":     track.TagCreateDate,
	"com.apple.quicktime.location.ISO6709": track.TagGpsIso6709,
}

// parseKeysMeta resolves the keys/ilst indirection: keys lists the key
// names in order, ilst items reference them by 1-based index.
func parseKeysMeta(meta []byte, info *track.Info) {
	keysBox, ok, err := FindFirst(meta, "keys")
	if err != nil || !ok {
		return
	}
	ilstBox, ok, err := FindFirst(meta, "ilst")
	if err != nil || !ok {
		return
	}

	names := parseKeyNames(keysBox.Body(meta))
	ilst := ilstBox.Body(meta)

	s := NewScanner(ilst)
	for s.Next() {
		item := s.Box()
		idx := int(binary.BigEndian.Uint32([]byte(item.Type)))
		if idx < 1 || idx > len(names) {
			continue
		}
		tag, wanted := quicktimeKeys[names[idx-1]]
		if !wanted {
			continue
		}
		body := item.Body(ilst)
		dataBox, ok, err := FindFirst(body, "data")
		if err != nil || !ok {
			continue
		}
		data := dataBox.Body(body)
		// data layout: 32-bit type indicator, 32-bit locale, value.
		if len(data) < 8 {
			continue
		}
		value := string(data[8:])
		if tag == track.TagCreateDate {
			setDateText(info, value)
			continue
		}
		info.Set(tag, exif.NewTextValue(value))
	}
}

// parseKeyNames decodes the keys box body: version/flags, entry count,
// then size-prefixed mdta entries.
func parseKeyNames(body []byte) []string {
	if len(body) < 8 {
		return nil
	}
	count := int(binary.BigEndian.Uint32(body[4:8]))
	names := make([]string, 0, count)
	off := 8
	for i := 0; i < count && off+8 <= len(body); i++ {
		size := int(binary.BigEndian.Uint32(body[off:]))
		if size < 8 || off+size > len(body) {
			break
		}
		names = append(names, string(body[off+8:off+size]))
		off += size
	}
	return names
}

// setDateText parses an ISO 8601 creation date, falling back to the raw
// text when it doesn't parse.
func setDateText(info *track.Info, s string) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			info.Set(track.TagCreateDate, exif.NewTimeValue(t))
			return
		}
	}
	info.Set(track.TagCreateDate, exif.NewTextValue(s))
}
