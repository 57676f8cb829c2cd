package mediameta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/simonhull/mediameta/internal/types"
)

// MediaSource is one media input with its container format already
// sniffed. Build one from a file path, a byte slice, or any reader, then
// hand it to a MediaParser.
//
// A MediaSource is single-use: one parse consumes it. Sources built from
// seek-capable readers can be parsed a second time only by rebuilding the
// MediaSource; plain io.Reader sources cannot rewind at all.
type MediaSource struct {
	r      io.Reader
	file   *os.File // owned when built via FromFile
	path   string
	format types.Format
}

// FromFile opens path and sniffs its format. The caller owns the returned
// source and must Close it.
func FromFile(path string) (*MediaSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	ms, err := fromSeeker(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	ms.file = f
	return ms, nil
}

// FromBytes wraps an in-memory region. The data must stay immutable while
// the source is in use.
func FromBytes(data []byte) (*MediaSource, error) {
	return fromSeeker(bytes.NewReader(data), "")
}

// FromReadSeeker wraps a seek-capable stream positioned at the start of
// the media data.
func FromReadSeeker(r io.ReadSeeker) (*MediaSource, error) {
	return fromSeeker(r, "")
}

// FromReader wraps a forward-only stream. The parser can never move
// backward through such a source: formats whose metadata requires
// backward access fail with *OrderingError.
func FromReader(r io.Reader) (*MediaSource, error) {
	prefix := make([]byte, types.SniffLen)
	n, err := io.ReadFull(r, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read prefix: %w", err)
	}
	format, err := types.Sniff(prefix[:n])
	if err != nil {
		return nil, err
	}
	// Stitch the consumed prefix back in front of the stream.
	return &MediaSource{
		r:      io.MultiReader(bytes.NewReader(prefix[:n]), r),
		format: format,
	}, nil
}

func fromSeeker(r io.ReadSeeker, path string) (*MediaSource, error) {
	prefix := make([]byte, types.SniffLen)
	n, err := io.ReadFull(r, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read prefix: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind after sniff: %w", err)
	}

	format, err := types.Sniff(prefix[:n])
	if err != nil {
		var unrec *types.UnrecognizedFormatError
		if path != "" && errors.As(err, &unrec) {
			unrec.Path = path
		}
		return nil, err
	}
	return &MediaSource{r: r, path: path, format: format}, nil
}

// Format returns the sniffed container format.
func (ms *MediaSource) Format() Format {
	return ms.format
}

// HasExif reports whether the format carries TIFF-structured Exif
// metadata, so callers can pick ParseExif before parsing.
func (ms *MediaSource) HasExif() bool {
	return ms.format.HasExif()
}

// HasTrack reports whether the format carries video/audio track metadata.
func (ms *MediaSource) HasTrack() bool {
	return ms.format.HasTrack()
}

// Path returns the file path the source was built from, when known.
func (ms *MediaSource) Path() string {
	return ms.path
}

// Close releases the owned file handle, if any. Sources built from
// readers or byte slices close to a no-op.
func (ms *MediaSource) Close() error {
	if ms.file == nil {
		return nil
	}
	f := ms.file
	ms.file = nil
	return f.Close()
}
