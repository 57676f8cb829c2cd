package types

import (
	"bytes"
	"encoding/binary"
)

// Format represents the detected container format.
type Format int

const (
	// FormatUnknown represents an unrecognized container.
	FormatUnknown Format = iota
	// FormatJPEG represents JPEG images.
	FormatJPEG
	// FormatTIFF represents TIFF images (both byte orders).
	FormatTIFF
	// FormatHEIF represents HEIF/HEIC images (ISOBMFF based).
	FormatHEIF
	// FormatQuickTime represents QuickTime movies (*.mov).
	FormatQuickTime
	// FormatMP4 represents generic ISOBMFF video (*.mp4, *.3gp, ...).
	FormatMP4
	// FormatMatroska represents Matroska-family files (*.mkv, *.mka, *.webm).
	FormatMatroska
	// FormatRAF represents Fujifilm RAW images.
	FormatRAF
	// FormatCR3 represents Canon RAW images (ISOBMFF based).
	FormatCR3
)

// String returns the human-readable format name.
func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "JPEG"
	case FormatTIFF:
		return "TIFF"
	case FormatHEIF:
		return "HEIF"
	case FormatQuickTime:
		return "QuickTime"
	case FormatMP4:
		return "MP4"
	case FormatMatroska:
		return "Matroska"
	case FormatRAF:
		return "RAF"
	case FormatCR3:
		return "CR3"
	default:
		return "Unknown"
	}
}

// HasExif reports whether this format carries TIFF-structured Exif metadata.
func (f Format) HasExif() bool {
	switch f {
	case FormatJPEG, FormatTIFF, FormatHEIF, FormatRAF, FormatCR3:
		return true
	default:
		return false
	}
}

// HasTrack reports whether this format carries video/audio track metadata.
func (f Format) HasTrack() bool {
	switch f {
	case FormatQuickTime, FormatMP4, FormatMatroska:
		return true
	default:
		return false
	}
}

// SniffLen is the prefix length Sniff wants to see. Shorter prefixes are
// accepted when the file itself is shorter.
const SniffLen = 256

// rafMagic is the ASCII signature at the start of every Fujifilm RAF file.
const rafMagic = "FUJIFILMCCD-RAW "

// ebmlMagic is the 4-byte EBML header id that opens Matroska-family files.
var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// Brand classification for ISOBMFF ftyp boxes.
var (
	heifBrands = map[string]bool{
		"heic": true, "heix": true, "heim": true, "heis": true,
		"hevc": true, "hevx": true, "hevm": true, "hevs": true,
		"heif": true, "mif1": true, "msf1": true, "miaf": true,
	}
	mp4Brands = map[string]bool{
		"isom": true, "iso2": true, "iso4": true, "iso5": true,
		"mp41": true, "mp42": true, "mp71": true, "avc1": true,
		"3gp4": true, "3gp5": true, "3gp6": true, "3gp7": true,
		"3g2a": true, "mmp4": true, "m4v ": true, "m4a ": true,
		"dash": true,
	}
)

// Sniff inspects a file prefix and returns the container format.
//
// Sniff is a pure function over the prefix bytes: it performs no I/O and
// keeps no state. It fails with *UnrecognizedFormatError when no signature
// matches.
func Sniff(prefix []byte) (Format, error) {
	if len(prefix) >= 2 && prefix[0] == 0xFF && prefix[1] == 0xD8 {
		return FormatJPEG, nil
	}
	if len(prefix) >= 4 {
		switch {
		case prefix[0] == 'I' && prefix[1] == 'I' && prefix[2] == 0x2A && prefix[3] == 0x00:
			return FormatTIFF, nil
		case prefix[0] == 'M' && prefix[1] == 'M' && prefix[2] == 0x00 && prefix[3] == 0x2A:
			return FormatTIFF, nil
		}
		if bytes.Equal(prefix[:4], ebmlMagic) {
			return FormatMatroska, nil
		}
	}
	if len(prefix) >= len(rafMagic) && string(prefix[:len(rafMagic)]) == rafMagic {
		return FormatRAF, nil
	}
	if len(prefix) >= 12 && string(prefix[4:8]) == "ftyp" {
		return sniffFtyp(prefix)
	}
	return FormatUnknown, &UnrecognizedFormatError{}
}

// sniffFtyp classifies an ISOBMFF file by its ftyp major brand, falling
// back to the compatible-brands list when the major brand is unknown.
func sniffFtyp(prefix []byte) (Format, error) {
	if f, ok := classifyBrand(string(prefix[8:12])); ok {
		return f, nil
	}

	// Compatible brands start after the minor version field and run to the
	// end of the ftyp box.
	end := int(binary.BigEndian.Uint32(prefix[:4]))
	if end > len(prefix) {
		end = len(prefix)
	}
	for off := 16; off+4 <= end; off += 4 {
		if f, ok := classifyBrand(string(prefix[off : off+4])); ok {
			return f, nil
		}
	}
	return FormatUnknown, &UnrecognizedFormatError{}
}

func classifyBrand(brand string) (Format, bool) {
	switch {
	case brand == "qt  ":
		return FormatQuickTime, true
	case brand == "crx ":
		return FormatCR3, true
	case heifBrands[brand]:
		return FormatHEIF, true
	case mp4Brands[brand]:
		return FormatMP4, true
	default:
		return FormatUnknown, false
	}
}
