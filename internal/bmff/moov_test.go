package bmff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/simonhull/mediameta/internal/load"
	"github.com/simonhull/mediameta/internal/track"
	"github.com/simonhull/mediameta/internal/types"
)

// forwardOnly hides the Seek method of an in-memory reader.
type forwardOnly struct {
	r io.Reader
}

func (f *forwardOnly) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

// mvhdV0 builds a version-0 movie header body.
func mvhdV0(creation, timescale, duration uint32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint32(0)) // version+flags
	binary.Write(buf, binary.BigEndian, creation)
	binary.Write(buf, binary.BigEndian, uint32(0)) // modification
	binary.Write(buf, binary.BigEndian, timescale)
	binary.Write(buf, binary.BigEndian, duration)
	buf.Write(make([]byte, 80)) // rate through next-track-id
	return buf.Bytes()
}

// tkhdV0 builds a version-0 track header body with 16.16 fixed
// dimensions.
func tkhdV0(width, height uint32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint32(0)) // version+flags
	buf.Write(make([]byte, 20))                    // times, track id, reserved, duration
	buf.Write(make([]byte, 8))                     // reserved
	buf.Write(make([]byte, 8))                     // layer, group, volume, reserved
	buf.Write(make([]byte, 36))                    // matrix
	binary.Write(buf, binary.BigEndian, width<<16)
	binary.Write(buf, binary.BigEndian, height<<16)
	return buf.Bytes()
}

// intlTextAtom builds a QuickTime international-text body.
func intlTextAtom(s string) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint16(len(s)))
	binary.Write(buf, binary.BigEndian, uint16(0)) // language
	buf.WriteString(s)
	return buf.Bytes()
}

func buildMovie() []byte {
	udta := box("udta",
		box("\xA9xyz", intlTextAtom("+27.1281+100.2508+000.000/")),
		box("\xA9mak", intlTextAtom("Apple")),
		box("\xA9mod", intlTextAtom("iPhone 15")),
	)
	moov := box("moov",
		box("mvhd", mvhdV0(3700000000, 600, 6000)),
		box("trak", box("tkhd", tkhdV0(1920, 1080))),
		udta,
	)

	file := box("ftyp", []byte("qt  \x00\x00\x00\x00qt  "))
	file = append(file, box("mdat", make([]byte, 4096))...)
	file = append(file, moov...)
	return file
}

func TestParseTrackInfo(t *testing.T) {
	file := buildMovie()

	// Both source kinds must agree: the scan only ever moves forward.
	sources := map[string]io.Reader{
		"seekable":     bytes.NewReader(file),
		"forward-only": &forwardOnly{r: bytes.NewReader(file)},
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			l := load.New(src)
			info, err := ParseTrackInfo(l)
			if err != nil {
				t.Fatalf("ParseTrackInfo: %v", err)
			}

			if v, _ := info.Get(track.TagMake); v.String() != "Apple" {
				t.Errorf("Make = %q, want Apple", v.String())
			}
			if v, _ := info.Get(track.TagModel); v.String() != "iPhone 15" {
				t.Errorf("Model = %q, want iPhone 15", v.String())
			}
			if v, _ := info.Get(track.TagGpsIso6709); v.String() != "+27.1281+100.2508+000.000/" {
				t.Errorf("GpsIso6709 = %q", v.String())
			}

			// 6000 ticks at 600/s = 10s.
			if v, _ := info.Get(track.TagDurationMs); v.String() != "10000" {
				t.Errorf("DurationMs = %q, want 10000", v.String())
			}
			if v, _ := info.Get(track.TagImageWidth); v.String() != "1920" {
				t.Errorf("ImageWidth = %q, want 1920", v.String())
			}
			if v, _ := info.Get(track.TagImageHeight); v.String() != "1080" {
				t.Errorf("ImageHeight = %q, want 1080", v.String())
			}

			want := time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC).Add(3700000000 * time.Second)
			v, _ := info.Get(track.TagCreateDate)
			got, ok := v.Time()
			if !ok || !got.Equal(want) {
				t.Errorf("CreateDate = %v, want %v", v, want)
			}
		})
	}
}

func TestParseTrackInfoNoMoov(t *testing.T) {
	file := box("ftyp", []byte("isomisom"))
	file = append(file, box("mdat", make([]byte, 16))...)

	l := load.New(bytes.NewReader(file))
	if _, err := ParseTrackInfo(l); err == nil {
		t.Fatal("expected an error for a file without moov")
	}
}

func TestParseKeysMeta(t *testing.T) {
	// keys/ilst indirection: ilst item types are 1-based indexes into the
	// keys list.
	keyEntry := func(name string) []byte {
		buf := &bytes.Buffer{}
		binary.Write(buf, binary.BigEndian, uint32(8+len(name)))
		buf.WriteString("mdta")
		buf.WriteString(name)
		return buf.Bytes()
	}
	keysBody := &bytes.Buffer{}
	binary.Write(keysBody, binary.BigEndian, uint32(0)) // version+flags
	binary.Write(keysBody, binary.BigEndian, uint32(2))
	keysBody.Write(keyEntry("com.apple.quicktime.model"))
	keysBody.Write(keyEntry("com.apple.quicktime.location.ISO6709"))

	dataAtom := func(s string) []byte {
		buf := &bytes.Buffer{}
		binary.Write(buf, binary.BigEndian, uint32(1)) // type: UTF-8
		binary.Write(buf, binary.BigEndian, uint32(0)) // locale
		buf.WriteString(s)
		return box("data", buf.Bytes())
	}
	ilst := box("ilst",
		box("\x00\x00\x00\x01", dataAtom("iPhone 15 Pro")),
		box("\x00\x00\x00\x02", dataAtom("+43.29013+084.22713/")),
	)

	meta := append([]byte{0, 0, 0, 0}, box("keys", keysBody.Bytes())...)
	meta = append(meta, ilst...)

	info := track.NewInfo()
	parseKeysMeta(fullBoxBody(meta), info)

	if v, _ := info.Get(track.TagModel); v.String() != "iPhone 15 Pro" {
		t.Errorf("Model = %q, want iPhone 15 Pro", v.String())
	}
	if v, _ := info.Get(track.TagGpsIso6709); v.String() != "+43.29013+084.22713/" {
		t.Errorf("GpsIso6709 = %q", v.String())
	}
}

// tkhdV1 builds a version-1 track header body (64-bit times and duration).
func tkhdV1(width, height uint32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint32(1<<24)) // version 1, no flags
	buf.Write(make([]byte, 32))                        // times, track id, reserved, duration
	buf.Write(make([]byte, 8))                         // reserved
	buf.Write(make([]byte, 8))                         // layer, group, volume, reserved
	buf.Write(make([]byte, 36))                        // matrix
	binary.Write(buf, binary.BigEndian, width<<16)
	binary.Write(buf, binary.BigEndian, height<<16)
	return buf.Bytes()
}

func TestParseDimensionsV1(t *testing.T) {
	moov := box("trak", box("tkhd", tkhdV1(3840, 2160)))

	info := track.NewInfo()
	if err := parseDimensions(moov, info); err != nil {
		t.Fatalf("parseDimensions: %v", err)
	}
	if v, _ := info.Get(track.TagImageWidth); v.String() != "3840" {
		t.Errorf("ImageWidth = %q, want 3840", v.String())
	}
	if v, _ := info.Get(track.TagImageHeight); v.String() != "2160" {
		t.Errorf("ImageHeight = %q, want 2160", v.String())
	}
}

func TestParseTrackInfoOverflowingLargesize(t *testing.T) {
	// A 64-bit box size with the top bit set would turn into a negative
	// body length downstream; it must classify as corruption, not crash.
	file := box("ftyp", []byte("qt  \x00\x00\x00\x00qt  "))
	evil := &bytes.Buffer{}
	binary.Write(evil, binary.BigEndian, uint32(1))
	evil.WriteString("moov")
	binary.Write(evil, binary.BigEndian, uint64(1<<63|16))
	file = append(file, evil.Bytes()...)

	l := load.New(bytes.NewReader(file))
	_, err := ParseTrackInfo(l)
	var corrupt *types.CorruptedDataError
	if !errors.As(err, &corrupt) {
		t.Fatalf("err = %v, want *types.CorruptedDataError", err)
	}
}
