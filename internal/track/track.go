// Package track holds the semantic track-metadata summary assembled from
// video/audio containers.
package track

import (
	"iter"

	"github.com/simonhull/mediameta/internal/exif"
)

// Tag identifies one track-info field.
type Tag int

const (
	TagMake Tag = iota
	TagModel
	TagSoftware
	TagCreateDate
	TagDurationMs
	TagImageWidth
	TagImageHeight
	TagGpsIso6709
)

// tagOrder fixes the display order of track-info fields.
var tagOrder = []Tag{
	TagMake, TagModel, TagSoftware, TagCreateDate,
	TagDurationMs, TagImageWidth, TagImageHeight, TagGpsIso6709,
}

func (t Tag) String() string {
	switch t {
	case TagMake:
		return "Make"
	case TagModel:
		return "Model"
	case TagSoftware:
		return "Software"
	case TagCreateDate:
		return "CreateDate"
	case TagDurationMs:
		return "DurationMs"
	case TagImageWidth:
		return "ImageWidth"
	case TagImageHeight:
		return "ImageHeight"
	case TagGpsIso6709:
		return "GpsIso6709"
	default:
		return "Unknown"
	}
}

// Info maps track-info tags to values. The first value stored per tag
// wins; Info is immutable once the walker that built it returns.
type Info struct {
	values map[Tag]exif.EntryValue
}

// NewInfo returns an empty track-info mapping.
func NewInfo() *Info {
	return &Info{values: make(map[Tag]exif.EntryValue)}
}

// Set stores a value for tag unless one is already present.
func (i *Info) Set(tag Tag, v exif.EntryValue) {
	if _, seen := i.values[tag]; seen {
		return
	}
	i.values[tag] = v
}

// Get returns the value for tag.
func (i *Info) Get(tag Tag) (exif.EntryValue, bool) {
	v, ok := i.values[tag]
	return v, ok
}

// Len returns the number of populated fields.
func (i *Info) Len() int {
	return len(i.values)
}

// All yields the populated fields in display order.
func (i *Info) All() iter.Seq2[Tag, exif.EntryValue] {
	return func(yield func(Tag, exif.EntryValue) bool) {
		for _, tag := range tagOrder {
			if v, ok := i.values[tag]; ok {
				if !yield(tag, v) {
					return
				}
			}
		}
	}
}

// GetGPSInfo parses the stored ISO 6709 position string, when present,
// back into structured coordinates.
func (i *Info) GetGPSInfo() (*exif.GPSInfo, error) {
	v, ok := i.values[TagGpsIso6709]
	if !ok {
		return nil, nil
	}
	s, ok := v.Text()
	if !ok {
		return nil, nil
	}
	return exif.ParseISO6709(s)
}
