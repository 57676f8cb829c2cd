package mediameta

import "github.com/simonhull/mediameta/internal/types"

// Format is an alias to types.Format, re-exported from internal/types to
// keep the public API surface in the root package.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown   = types.FormatUnknown
	FormatJPEG      = types.FormatJPEG
	FormatTIFF      = types.FormatTIFF
	FormatHEIF      = types.FormatHEIF
	FormatQuickTime = types.FormatQuickTime
	FormatMP4       = types.FormatMP4
	FormatMatroska  = types.FormatMatroska
	FormatRAF       = types.FormatRAF
	FormatCR3       = types.FormatCR3
)

// SniffFormat inspects a file prefix and returns the container format.
// It is a pure function over the prefix bytes; 256 bytes are enough for
// every supported signature.
func SniffFormat(prefix []byte) (Format, error) {
	return types.Sniff(prefix)
}
