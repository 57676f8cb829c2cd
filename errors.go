package mediameta

import "github.com/simonhull/mediameta/internal/types"

// ErrExifNotFound is returned when a file is structurally valid but
// carries no Exif metadata.
var ErrExifNotFound = types.ErrExifNotFound

// ErrTrackNotFound is returned when a video/audio container carries no
// usable track metadata.
var ErrTrackNotFound = types.ErrTrackNotFound

// UnrecognizedFormatError is an alias to types.UnrecognizedFormatError,
// re-exported from internal/types to keep the public API in the root
// package.
type UnrecognizedFormatError = types.UnrecognizedFormatError

// CorruptedDataError is an alias to types.CorruptedDataError.
type CorruptedDataError = types.CorruptedDataError

// OrderingError is an alias to types.OrderingError.
type OrderingError = types.OrderingError

// UnsupportedValueTypeError is an alias to types.UnsupportedValueTypeError.
type UnsupportedValueTypeError = types.UnsupportedValueTypeError

// ParseError is an alias to types.ParseError.
type ParseError = types.ParseError
