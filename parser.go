package mediameta

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/mediameta/internal/bmff"
	"github.com/simonhull/mediameta/internal/ebml"
	"github.com/simonhull/mediameta/internal/exif"
	"github.com/simonhull/mediameta/internal/jpegseg"
	"github.com/simonhull/mediameta/internal/load"
	"github.com/simonhull/mediameta/internal/raf"
	"github.com/simonhull/mediameta/internal/types"
)

// MediaParser parses MediaSources. It owns one growable read buffer,
// recycled across parse calls, so parsing many files in a loop settles
// into zero steady-state allocations for I/O.
//
// A MediaParser is not safe for concurrent use; give each goroutine its
// own. Results returned by a parse own their bytes: they stay valid after
// the parser moves on to the next source.
type MediaParser struct {
	opts   parserOptions
	loader *load.Loader
	buf    []byte
}

// New creates a MediaParser.
func New(opts ...Option) *MediaParser {
	o := defaultParserOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := &MediaParser{opts: o}
	if o.bufferCapacity > 0 {
		p.buf = make([]byte, 0, o.bufferCapacity)
	}
	return p
}

// arm readies the recycled loader for the next source.
func (p *MediaParser) arm(ctx context.Context, ms *MediaSource) *load.Loader {
	if p.loader == nil {
		p.loader = load.New(ms.r)
	} else {
		p.loader.Reset(ms.r)
	}
	if p.buf != nil {
		p.loader.SetBuffer(p.buf)
		p.buf = nil
	}
	p.loader.SetContext(ctx)
	return p.loader
}

// recycle reclaims the loader's backing array for the next parse.
func (p *MediaParser) recycle(l *load.Loader) {
	p.buf = l.Recycle()
}

// ParseExif parses the source's Exif metadata into a lazy entry iterator.
//
// The iterator owns a copy of the TIFF payload, so it stays valid after
// the parser is reused on another source. ErrExifNotFound means the file
// is fine but has nothing to extract; *CorruptedDataError means it lied
// about its structure.
func (p *MediaParser) ParseExif(ms *MediaSource) (*ExifIter, error) {
	return p.ParseExifContext(context.Background(), ms)
}

// ParseExifContext is ParseExif with cancellation. The context is checked
// at every I/O boundary, never mid-decode of already-buffered bytes.
func (p *MediaParser) ParseExifContext(ctx context.Context, ms *MediaSource) (*ExifIter, error) {
	l := p.arm(ctx, ms)
	payload, err := exifPayload(l, ms.format)
	if err != nil {
		p.recycle(l)
		return nil, err
	}
	if len(payload) == 0 {
		p.recycle(l)
		return nil, ErrExifNotFound
	}

	// Copy out of the loader window before the buffer is recycled: the
	// iterator must survive the parser's next parse.
	owned := append([]byte(nil), payload...)
	p.recycle(l)

	if p.opts.subIFDs {
		return exif.NewIter(owned)
	}
	return exif.NewIterFlat(owned)
}

// exifPayload locates the TIFF-structured Exif payload for the sniffed
// format. The returned slice borrows the loader window.
func exifPayload(l *load.Loader, format Format) ([]byte, error) {
	switch format {
	case FormatJPEG:
		return jpegseg.FindExifPayload(l, 0)
	case FormatTIFF:
		// The whole file is the TIFF structure; IFD offsets may point
		// anywhere in it.
		if err := l.EnsureAll(); err != nil {
			return nil, types.WrapParse("TIFF", err)
		}
		return l.Bytes(), nil
	case FormatHEIF:
		return bmff.ParseHeifExif(l)
	case FormatCR3:
		return bmff.ParseCr3Exif(l)
	case FormatRAF:
		return raf.FindExifPayload(l)
	default:
		return nil, fmt.Errorf("%s source: %w", format, ErrExifNotFound)
	}
}

// ParseTrackInfo parses the track-metadata summary of a video/audio
// source: make, model, software, creation time, duration, dimensions, and
// the ISO 6709 GPS position when recorded.
func (p *MediaParser) ParseTrackInfo(ms *MediaSource) (*TrackInfo, error) {
	return p.ParseTrackInfoContext(context.Background(), ms)
}

// ParseTrackInfoContext is ParseTrackInfo with cancellation.
func (p *MediaParser) ParseTrackInfoContext(ctx context.Context, ms *MediaSource) (*TrackInfo, error) {
	l := p.arm(ctx, ms)
	defer p.recycle(l)

	switch ms.format {
	case FormatQuickTime, FormatMP4:
		return bmff.ParseTrackInfo(l)
	case FormatMatroska:
		return ebml.ParseTrackInfo(l)
	default:
		return nil, fmt.Errorf("%s source: %w", ms.format, ErrTrackNotFound)
	}
}

// ParseResult is one file's outcome from ParseMany.
type ParseResult struct {
	Path   string
	Format Format

	// Exif is set for image-style sources that carry Exif metadata.
	Exif *Exif
	// Track is set for video/audio-style sources with track metadata.
	Track *TrackInfo
}

// ParseMany parses multiple files concurrently, up to runtime.NumCPU()
// at a time, each worker with its own MediaParser. Results keep the input
// order. A file without metadata yields a result with nil Exif and Track;
// any structural or I/O failure fails the whole batch.
func ParseMany(ctx context.Context, paths ...string) ([]*ParseResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*ParseResult, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			res, err := parseOne(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseOne(ctx context.Context, path string) (*ParseResult, error) {
	ms, err := FromFile(path)
	if err != nil {
		return nil, err
	}
	defer ms.Close()

	res := &ParseResult{Path: path, Format: ms.Format()}
	parser := New()
	switch {
	case ms.HasExif():
		iter, err := parser.ParseExifContext(ctx, ms)
		if errors.Is(err, ErrExifNotFound) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		if res.Exif, err = iter.Collect(); err != nil {
			return nil, err
		}
	case ms.HasTrack():
		info, err := parser.ParseTrackInfoContext(ctx, ms)
		if errors.Is(err, ErrTrackNotFound) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res.Track = info
	}
	return res, nil
}
