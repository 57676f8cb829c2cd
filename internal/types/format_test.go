package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// ftypPrefix builds an ISOBMFF prefix with the given major and compatible
// brands.
func ftypPrefix(major string, compatible ...string) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint32(16+4*len(compatible)))
	buf.WriteString("ftyp")
	buf.WriteString(major)
	binary.Write(buf, binary.BigEndian, uint32(0)) // minor version
	for _, b := range compatible {
		buf.WriteString(b)
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name   string
		prefix []byte
		want   Format
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FormatJPEG},
		{"tiff little endian", []byte{'I', 'I', 0x2A, 0x00}, FormatTIFF},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2A}, FormatTIFF},
		{"matroska", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x01}, FormatMatroska},
		{"raf", []byte("FUJIFILMCCD-RAW 0201"), FormatRAF},
		{"quicktime", ftypPrefix("qt  "), FormatQuickTime},
		{"cr3", ftypPrefix("crx ", "isom"), FormatCR3},
		{"heic", ftypPrefix("heic"), FormatHEIF},
		{"mif1", ftypPrefix("mif1", "heic"), FormatHEIF},
		{"mp4", ftypPrefix("isom", "iso2", "avc1"), FormatMP4},
		{"3gp", ftypPrefix("3gp5"), FormatMP4},
		{"compatible brand fallback", ftypPrefix("XXXX", "mp42"), FormatMP4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.prefix)
			if err != nil {
				t.Fatalf("Sniff: %v", err)
			}
			if got != tt.want {
				t.Errorf("Sniff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSniffUnrecognized(t *testing.T) {
	tests := []struct {
		name   string
		prefix []byte
	}{
		{"empty", nil},
		{"too short", []byte{0xFF}},
		{"garbage", []byte("not a media file, definitely")},
		{"unknown brands", ftypPrefix("XXXX", "YYYY")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sniff(tt.prefix)
			var unrec *UnrecognizedFormatError
			if !errors.As(err, &unrec) {
				t.Fatalf("err = %v, want *UnrecognizedFormatError", err)
			}
		})
	}
}

func TestFormatCapabilities(t *testing.T) {
	exif := []Format{FormatJPEG, FormatTIFF, FormatHEIF, FormatRAF, FormatCR3}
	track := []Format{FormatQuickTime, FormatMP4, FormatMatroska}

	for _, f := range exif {
		if !f.HasExif() || f.HasTrack() {
			t.Errorf("%v: HasExif=%v HasTrack=%v, want true/false", f, f.HasExif(), f.HasTrack())
		}
	}
	for _, f := range track {
		if f.HasExif() || !f.HasTrack() {
			t.Errorf("%v: HasExif=%v HasTrack=%v, want false/true", f, f.HasExif(), f.HasTrack())
		}
	}
	if FormatUnknown.HasExif() || FormatUnknown.HasTrack() {
		t.Error("FormatUnknown claims metadata capabilities")
	}
}

func TestParseErrorChain(t *testing.T) {
	cause := &CorruptedDataError{Offset: 42, Reason: "test"}
	err := WrapParse("moov/mvhd", cause)

	var corrupt *CorruptedDataError
	if !errors.As(err, &corrupt) || corrupt.Offset != 42 {
		t.Fatalf("wrapped error lost its cause: %v", err)
	}
	if WrapParse("anything", nil) != nil {
		t.Error("WrapParse(nil) != nil")
	}
}
