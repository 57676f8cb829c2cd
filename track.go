package mediameta

import "github.com/simonhull/mediameta/internal/track"

// TrackInfo is the semantic track-metadata summary of a video/audio
// source: a mapping from TrackInfoTag to EntryValue, first value stored
// per tag winning. Its GetGPSInfo method parses the stored ISO 6709
// position back into structured coordinates.
type TrackInfo = track.Info

// TrackInfoTag identifies one track-info field.
type TrackInfoTag = track.Tag

// Re-export the track-info fields.
const (
	TrackTagMake        = track.TagMake
	TrackTagModel       = track.TagModel
	TrackTagSoftware    = track.TagSoftware
	TrackTagCreateDate  = track.TagCreateDate
	TrackTagDurationMs  = track.TagDurationMs
	TrackTagImageWidth  = track.TagImageWidth
	TrackTagImageHeight = track.TagImageHeight
	TrackTagGpsIso6709  = track.TagGpsIso6709
)
