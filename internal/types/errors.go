package types

import (
	"errors"
	"fmt"
)

// ErrExifNotFound is returned when a file is structurally valid but carries
// no Exif metadata. Distinct from corruption: the file simply has nothing
// to extract.
var ErrExifNotFound = errors.New("Exif not found")

// ErrTrackNotFound is returned when a video/audio container carries no
// usable track metadata.
var ErrTrackNotFound = errors.New("track metadata not found")

// UnrecognizedFormatError is returned when no format signature matches the
// file prefix.
type UnrecognizedFormatError struct {
	// Path of the file, when known.
	Path string
}

func (e *UnrecognizedFormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: unrecognized file format", e.Path)
	}
	return "unrecognized file format"
}

// CorruptedDataError is returned when a structural field is inconsistent:
// a declared size that overruns its parent or the file, a cyclic IFD
// offset graph, an entry record that lies about its own layout.
type CorruptedDataError struct {
	Offset int64
	Reason string
}

func (e *CorruptedDataError) Error() string {
	return fmt.Sprintf("corrupted data at offset %d: %s", e.Offset, e.Reason)
}

// OrderingError is returned when a forward-only source is asked for bytes
// strictly behind its read cursor. Forward-only sources never rewind.
type OrderingError struct {
	Requested int64
	Cursor    int64
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("backward read to offset %d on a forward-only source (cursor at %d)", e.Requested, e.Cursor)
}

// UnsupportedValueTypeError is returned when an IFD entry declares a data
// type outside the TIFF 6.0 set.
type UnsupportedValueTypeError struct {
	DataType uint16
}

func (e *UnsupportedValueTypeError) Error() string {
	return fmt.Sprintf("unsupported IFD data type %d", e.DataType)
}

// OutOfBoundsError is returned when a read within an in-memory payload
// would run past its end.
type OutOfBoundsError struct {
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %d exceeds payload size %d while reading %s",
		e.Length, e.Offset, e.Size, e.What)
}

// ParseError wraps a lower-level failure with location context (which box,
// which IFD) while preserving the original cause chain.
type ParseError struct {
	Where string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Where, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse attaches location context to err, passing nil through.
func WrapParse(where string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Where: where, Err: err}
}
