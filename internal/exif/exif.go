package exif

import "iter"

// exifKey separates the GPS tag namespace from the primary/Exif one.
type exifKey struct {
	gps bool
	tag ExifTag
}

// ResolvedEntry is one tag with its resolved value, as held by Exif.
type ResolvedEntry struct {
	Origin Origin
	Tag    ExifTag
	Value  EntryValue
}

// Name returns the entry's display name within its owning IFD.
func (e ResolvedEntry) Name() string {
	return e.Tag.nameIn(e.Origin)
}

// Exif is the get-style result: a resolved tag-to-value mapping built from
// a fully drained entry sequence. Keys are unique; the first-seen value
// per tag wins. Immutable once built.
type Exif struct {
	values  map[exifKey]EntryValue
	ordered []ResolvedEntry
}

func newExif() *Exif {
	return &Exif{values: make(map[exifKey]EntryValue)}
}

func (x *Exif) add(origin Origin, tag ExifTag, v EntryValue) {
	key := exifKey{gps: origin == OriginGPS, tag: tag}
	if _, seen := x.values[key]; seen {
		return
	}
	x.values[key] = v
	x.ordered = append(x.ordered, ResolvedEntry{Origin: origin, Tag: tag, Value: v})
}

// Get returns the value of a primary/Exif-namespace tag.
func (x *Exif) Get(tag ExifTag) (EntryValue, bool) {
	v, ok := x.values[exifKey{tag: tag}]
	return v, ok
}

// GetGPS returns the value of a GPS-namespace tag.
func (x *Exif) GetGPS(tag ExifTag) (EntryValue, bool) {
	v, ok := x.values[exifKey{gps: true, tag: tag}]
	return v, ok
}

// GetText returns a tag's value as text.
func (x *Exif) GetText(tag ExifTag) (string, bool) {
	v, ok := x.Get(tag)
	if !ok {
		return "", false
	}
	return v.Text()
}

// GetUint returns a tag's value as an unsigned integer.
func (x *Exif) GetUint(tag ExifTag) (uint64, bool) {
	v, ok := x.Get(tag)
	if !ok {
		return 0, false
	}
	return v.UInt()
}

// Len returns the number of resolved tags.
func (x *Exif) Len() int {
	return len(x.ordered)
}

// All yields the resolved entries in first-seen scan order.
func (x *Exif) All() iter.Seq[ResolvedEntry] {
	return func(yield func(ResolvedEntry) bool) {
		for _, e := range x.ordered {
			if !yield(e) {
				return
			}
		}
	}
}

// GetGPSInfo assembles the GPS-namespace entries into a GPSInfo.
// Returns nil when the required coordinate tags are absent.
func (x *Exif) GetGPSInfo() *GPSInfo {
	info, ok := gpsFromValues(x.GetGPS)
	if !ok {
		return nil
	}
	return info
}
