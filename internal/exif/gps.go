package exif

import (
	"fmt"
	"math"
	"strings"

	"github.com/simonhull/mediameta/internal/types"
)

// LatLng is a coordinate as degrees, minutes, seconds rationals, numerator
// and denominator verbatim from the source bytes.
type LatLng [3]Rational

// ToDecimal converts to decimal degrees: d + m/60 + s/3600.
func (l LatLng) ToDecimal() float64 {
	return l[0].Float() + l[1].Float()/60 + l[2].Float()/3600
}

// GPSInfo holds the decoded GPS IFD coordinate set. Immutable value object.
type GPSInfo struct {
	// 'N' or 'S'.
	LatitudeRef byte
	Latitude    LatLng
	// 'E' or 'W'.
	LongitudeRef byte
	Longitude    LatLng
	// 0 = above sea level, 1 = below.
	AltitudeRef byte
	Altitude    Rational
	HasAltitude bool
}

// FormatISO6709 renders the position in ISO 6709 notation, e.g.
// "+43.29013+084.22713+1595.950CRSWGS_84/". Latitude is zero-padded to a
// 2-digit degree field with 5 decimals, longitude to 3 digits, altitude to
// 3 digits with 3 decimals.
func (g *GPSInfo) FormatISO6709() string {
	var b strings.Builder
	writeSigned(&b, g.Latitude.ToDecimal(), g.LatitudeRef == 'S', 8, 5)
	writeSigned(&b, g.Longitude.ToDecimal(), g.LongitudeRef == 'W', 9, 5)
	if g.HasAltitude {
		writeSigned(&b, g.Altitude.Float(), g.AltitudeRef == 1, 7, 3)
	}
	b.WriteString("CRSWGS_84/")
	return b.String()
}

func writeSigned(b *strings.Builder, v float64, negative bool, width, prec int) {
	sign := byte('+')
	if negative {
		sign = '-'
	}
	b.WriteByte(sign)
	fmt.Fprintf(b, "%0*.*f", width, prec, math.Abs(v))
}

// gpsFromValues assembles a GPSInfo from GPS-namespace tag values. The
// coordinate tags are required; altitude is optional.
func gpsFromValues(get func(ExifTag) (EntryValue, bool)) (*GPSInfo, bool) {
	latRef, ok1 := textRef(get, TagGPSLatitudeRef)
	lat, ok2 := tripletOf(get, TagGPSLatitude)
	lonRef, ok3 := textRef(get, TagGPSLongitudeRef)
	lon, ok4 := tripletOf(get, TagGPSLongitude)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, false
	}

	info := &GPSInfo{
		LatitudeRef:  latRef,
		Latitude:     lat,
		LongitudeRef: lonRef,
		Longitude:    lon,
	}
	if v, ok := get(TagGPSAltitude); ok {
		if alt, ok := v.URational(); ok {
			info.Altitude = alt
			info.HasAltitude = true
			if ref, ok := get(TagGPSAltitudeRef); ok {
				if r, ok := ref.UInt(); ok {
					info.AltitudeRef = byte(r)
				}
			}
		}
	}
	return info, true
}

func textRef(get func(ExifTag) (EntryValue, bool), tag ExifTag) (byte, bool) {
	v, ok := get(tag)
	if !ok {
		return 0, false
	}
	s, ok := v.Text()
	if !ok || s == "" {
		return 0, false
	}
	return s[0], true
}

func tripletOf(get func(ExifTag) (EntryValue, bool), tag ExifTag) (LatLng, bool) {
	v, ok := get(tag)
	if !ok {
		return LatLng{}, false
	}
	rats, ok := v.URationals()
	if !ok || len(rats) < 3 {
		return LatLng{}, false
	}
	return LatLng{rats[0], rats[1], rats[2]}, true
}

// ParseISO6709 parses an ISO 6709 position string (the form stored in
// QuickTime location metadata, e.g. "+27.1281+100.2508+000.000/") back
// into a GPSInfo. The decimal coordinates are re-expressed as
// degree/minute/second rationals, seconds in hundredths.
func ParseISO6709(s string) (*GPSInfo, error) {
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, "CRSWGS_84")

	var parts []string
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			if start >= 0 {
				parts = append(parts, s[start:i])
			}
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, s[start:])
	}
	if len(parts) < 2 {
		return nil, &types.CorruptedDataError{Reason: "malformed ISO 6709 position"}
	}

	lat, err := parseCoord(parts[0])
	if err != nil {
		return nil, err
	}
	lon, err := parseCoord(parts[1])
	if err != nil {
		return nil, err
	}

	info := &GPSInfo{
		LatitudeRef:  refOf(parts[0], 'N', 'S'),
		Latitude:     decimalToDMS(lat),
		LongitudeRef: refOf(parts[1], 'E', 'W'),
		Longitude:    decimalToDMS(lon),
	}
	if len(parts) >= 3 {
		alt, err := parseCoord(parts[2])
		if err == nil {
			info.HasAltitude = true
			if alt < 0 {
				info.AltitudeRef = 1
			}
			info.Altitude = Rational{Num: uint32(math.Round(math.Abs(alt) * 1000)), Den: 1000}
		}
	}
	return info, nil
}

func refOf(part string, pos, neg byte) byte {
	if strings.HasPrefix(part, "-") {
		return neg
	}
	return pos
}

func parseCoord(part string) (float64, error) {
	var v float64
	if _, err := fmt.Sscanf(part, "%f", &v); err != nil {
		return 0, &types.CorruptedDataError{Reason: "malformed ISO 6709 coordinate"}
	}
	return v, nil
}

// decimalToDMS re-expresses decimal degrees as a rational triplet,
// seconds carried in hundredths.
func decimalToDMS(v float64) LatLng {
	v = math.Abs(v)
	deg := math.Trunc(v)
	rem := (v - deg) * 60
	min := math.Trunc(rem)
	sec := (rem - min) * 60
	return LatLng{
		{Num: uint32(deg), Den: 1},
		{Num: uint32(min), Den: 1},
		{Num: uint32(math.Round(sec * 100)), Den: 100},
	}
}
