// Package load implements the buffered byte source shared by all container
// walkers.
//
// A Loader owns one growable buffer and a byte source. Parsing code asks
// for a window of bytes and retries when the window is too small; the
// Loader grows the buffer with chunked reads, or seeks past unwanted
// ranges when the source supports it. The buffer is recycled across parses
// so batch workloads don't churn allocations.
package load

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/simonhull/mediameta/internal/types"
)

const (
	minChunk = 4 << 10
	maxChunk = 1 << 20
)

// NeedMoreError signals that a parse function needs at least N more bytes
// in its window before it can make progress. Run responds by growing the
// buffer and retrying.
type NeedMoreError struct {
	N int
}

func (e *NeedMoreError) Error() string {
	return fmt.Sprintf("need %d more bytes", e.N)
}

// NeedMore returns a retryable "grow the window by n bytes" error.
func NeedMore(n int) error {
	return &NeedMoreError{N: n}
}

// Loader buffers reads from one byte source.
//
// A Loader is not reentrant: one parse must finish (or be abandoned)
// before the next begins on the same instance. Distinct Loaders share no
// state.
type Loader struct {
	r      io.Reader
	seeker io.Seeker // nil for forward-only sources
	ctx    context.Context

	buf   []byte // current window
	base  int64  // absolute offset of buf[0]
	eof   bool
	chunk int
}

// New creates a Loader over r. If r also implements io.Seeker the Loader
// skips unwanted ranges by seeking; otherwise it reads and discards.
func New(r io.Reader) *Loader {
	l := &Loader{ctx: context.Background()}
	l.Reset(r)
	return l
}

// Reset re-arms the Loader for a new source, recycling the backing array.
// Any window previously returned by Bytes or ReadAbs must not be used
// after Reset.
func (l *Loader) Reset(r io.Reader) {
	l.r = r
	l.seeker, _ = r.(io.Seeker)
	l.buf = l.buf[:0]
	l.base = 0
	l.eof = false
	l.chunk = minChunk
}

// SetContext installs the context checked at every I/O boundary.
// Cancellation is observed only between reads, never mid-decode of
// already-buffered bytes.
func (l *Loader) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	l.ctx = ctx
}

// SetBuffer seeds the Loader with a recycled backing array.
func (l *Loader) SetBuffer(buf []byte) {
	l.buf = buf[:0]
}

// Recycle returns the backing array for reuse by a future Loader.
func (l *Loader) Recycle() []byte {
	buf := l.buf[:0]
	l.buf = nil
	return buf
}

// Seekable reports whether the source supports jumping to absolute offsets.
func (l *Loader) Seekable() bool {
	return l.seeker != nil
}

// Bytes returns the current window. The slice is valid only until the next
// Loader operation.
func (l *Loader) Bytes() []byte {
	return l.buf
}

// Base returns the absolute offset of the first byte of the window.
func (l *Loader) Base() int64 {
	return l.base
}

// Cursor returns the absolute offset one past the last buffered byte; for
// forward-only sources this is the read cursor that can never move back.
func (l *Loader) Cursor() int64 {
	return l.base + int64(len(l.buf))
}

// Ensure grows the window to at least n bytes, reading from the source as
// needed. Fails with io.ErrUnexpectedEOF when the source is exhausted
// first.
func (l *Loader) Ensure(n int) error {
	for len(l.buf) < n {
		if l.eof {
			return io.ErrUnexpectedEOF
		}
		if err := l.fill(n - len(l.buf)); err != nil {
			return err
		}
	}
	return nil
}

// EnsureAll reads the remaining source into the window.
func (l *Loader) EnsureAll() error {
	for !l.eof {
		if err := l.fill(l.chunk); err != nil {
			return err
		}
	}
	return nil
}

// fill reads at least n more bytes (or to EOF). Chunks double up to a
// cap, and each allocation waits for the previous chunk to actually
// arrive, so a lying size field in the source can request at most one
// chunk more than the source really delivers.
func (l *Loader) fill(n int) error {
	if err := l.ctx.Err(); err != nil {
		return err
	}
	read := 0
	for read < n && !l.eof {
		step := l.chunk
		if l.chunk < maxChunk {
			l.chunk *= 2
		}

		l.buf = slices.Grow(l.buf, step)
		dst := l.buf[len(l.buf):cap(l.buf)]
		got := 0
		for got < len(dst) && read+got < n {
			m, err := l.r.Read(dst[got:])
			got += m
			if err == io.EOF {
				l.eof = true
				break
			}
			if err != nil {
				l.buf = l.buf[:len(l.buf)+got]
				return fmt.Errorf("read source: %w", err)
			}
		}
		l.buf = l.buf[:len(l.buf)+got]
		read += got
	}
	return nil
}

// SkipTo positions the window at absolute offset abs, discarding buffered
// bytes. Seek-capable sources jump without reading intervening bytes;
// forward-only sources read and discard, and fail with *types.OrderingError
// when asked to move backward.
func (l *Loader) SkipTo(abs int64) error {
	switch {
	case abs >= l.base && abs <= l.Cursor():
		l.buf = l.buf[abs-l.base:]
		l.base = abs
		return nil
	case l.seeker != nil:
		if _, err := l.seeker.Seek(abs, io.SeekStart); err != nil {
			return fmt.Errorf("seek to %d: %w", abs, err)
		}
		l.buf = l.buf[:0]
		l.base = abs
		l.eof = false
		return nil
	case abs < l.base:
		return &types.OrderingError{Requested: abs, Cursor: l.base}
	default:
		if err := l.ctx.Err(); err != nil {
			return err
		}
		_, err := io.CopyN(io.Discard, l.r, abs-l.Cursor())
		l.buf = l.buf[:0]
		l.base = abs
		if err == io.EOF {
			l.eof = true
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return fmt.Errorf("skip to %d: %w", abs, err)
		}
		return nil
	}
}

// ReadAbs returns n bytes at absolute offset off, repositioning the window
// when needed. The slice is valid only until the next Loader operation.
// A negative n can only come from an overflowed size field upstream and is
// reported as corruption.
func (l *Loader) ReadAbs(off int64, n int) ([]byte, error) {
	if n < 0 {
		return nil, &types.CorruptedDataError{
			Offset: off,
			Reason: "negative read length from an overflowed size field",
		}
	}
	if off < l.base || off > l.Cursor() {
		if err := l.SkipTo(off); err != nil {
			return nil, err
		}
	}
	if err := l.Ensure(int(off-l.base) + n); err != nil {
		return nil, err
	}
	i := off - l.base
	return l.buf[i : i+int64(n)], nil
}

// Run repeatedly applies fn to the current window, growing the buffer
// whenever fn reports it needs more bytes. Any other error, and any
// success, ends the loop.
func Run[T any](l *Loader, fn func(data []byte) (T, error)) (T, error) {
	var zero T
	for {
		v, err := fn(l.buf)
		var need *NeedMoreError
		if errors.As(err, &need) {
			if err := l.Ensure(len(l.buf) + need.N); err != nil {
				return zero, err
			}
			continue
		}
		return v, err
	}
}
