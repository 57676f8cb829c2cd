package exif

import "bytes"

// Signature is the APP1/item payload prefix identifying Exif data.
var Signature = []byte("Exif\x00\x00")

// HasSignature reports whether data starts with the Exif signature.
func HasSignature(data []byte) bool {
	return bytes.HasPrefix(data, Signature)
}

// IsTIFFHeader reports whether data starts with a TIFF byte-order mark
// and magic number ("II*\0" or "MM\0*").
func IsTIFFHeader(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	switch {
	case data[0] == 'I' && data[1] == 'I':
		return data[2] == 0x2A && data[3] == 0x00
	case data[0] == 'M' && data[1] == 'M':
		return data[2] == 0x00 && data[3] == 0x2A
	}
	return false
}
