package mediameta

import "github.com/simonhull/mediameta/internal/exif"

// ExifIter lazily iterates the IFD entries of a parsed source. Each entry
// resolves its value on demand; a malformed entry carries its own error
// without ending iteration, and structural failures surface through Err
// after Next returns false. Entries yielded before a failure stay valid.
//
// Re-exported from internal/exif; ParseExif is the only constructor.
type ExifIter = exif.Iter

// ParsedExifEntry is one IFD entry with its origin and lazily resolved
// value.
type ParsedExifEntry = exif.ParsedEntry

// Exif is the get-style result: a resolved tag-to-value mapping, first
// occurrence winning in IFD scan order. Build one with ExifIter.Collect.
type Exif = exif.Exif

// ResolvedEntry is one tag with its resolved value, as enumerated by
// Exif.All.
type ResolvedEntry = exif.ResolvedEntry

// EntryValue is the decoded form of one IFD entry: a closed union over
// the TIFF data types plus text and timestamp forms.
type EntryValue = exif.EntryValue

// DataType is the declared TIFF type of an IFD entry.
type DataType = exif.DataType

// Rational is an unsigned TIFF rational, numerator and denominator
// verbatim from the source bytes.
type Rational = exif.Rational

// SRational is a signed TIFF rational.
type SRational = exif.SRational

// IfdOrigin names the IFD an entry was read from.
type IfdOrigin = exif.Origin

// Re-export the IFD origins.
const (
	OriginPrimary   = exif.OriginPrimary
	OriginExif      = exif.OriginExif
	OriginGPS       = exif.OriginGPS
	OriginInterop   = exif.OriginInterop
	OriginMakerNote = exif.OriginMakerNote
)

// GPSInfo holds a decoded GPS coordinate set: reference characters,
// degree/minute/second rational triplets, and optional altitude. Its
// FormatISO6709 method renders the ISO 6709 position string.
type GPSInfo = exif.GPSInfo

// LatLng is a coordinate triplet of degree, minute, second rationals.
type LatLng = exif.LatLng

// ParseISO6709 parses an ISO 6709 position string back into structured
// coordinates.
func ParseISO6709(s string) (*GPSInfo, error) {
	return exif.ParseISO6709(s)
}
