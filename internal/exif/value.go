package exif

import (
	"fmt"
	"strings"
	"time"
)

// Rational is an unsigned TIFF RATIONAL: numerator over denominator, both
// taken verbatim from the source bytes.
type Rational struct {
	Num uint32
	Den uint32
}

// Float returns the rational as a float64 (0 when the denominator is 0).
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// SRational is a signed TIFF SRATIONAL.
type SRational struct {
	Num int32
	Den int32
}

// Float returns the rational as a float64 (0 when the denominator is 0).
func (r SRational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// EntryValue is the decoded form of one IFD entry: a closed union over the
// TIFF data types plus the synthesized Text/Time forms used by track
// metadata.
//
// The zero EntryValue is empty and renders as "".
type EntryValue struct {
	typ DataType
	v   any
}

// Constructors for values that don't originate from an IFD entry (track
// metadata, tests).

// NewTextValue returns a text EntryValue.
func NewTextValue(s string) EntryValue {
	return EntryValue{typ: TypeASCII, v: s}
}

// NewTimeValue returns a timestamp EntryValue.
func NewTimeValue(t time.Time) EntryValue {
	return EntryValue{v: t}
}

// NewUintValue returns an unsigned integer EntryValue.
func NewUintValue(u uint64) EntryValue {
	return EntryValue{typ: TypeLong, v: u}
}

// IsEmpty reports whether the value holds nothing.
func (v EntryValue) IsEmpty() bool {
	return v.v == nil
}

// Text returns the value as a string when it is textual.
func (v EntryValue) Text() (string, bool) {
	s, ok := v.v.(string)
	return s, ok
}

// UInt returns a scalar unsigned integer value.
func (v EntryValue) UInt() (uint64, bool) {
	switch n := v.v.(type) {
	case uint64:
		return n, true
	case int64:
		if n >= 0 {
			return uint64(n), true
		}
	}
	return 0, false
}

// Int returns a scalar integer value, signed or unsigned.
func (v EntryValue) Int() (int64, bool) {
	switch n := v.v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

// Float returns a scalar floating point value; integer and rational
// scalars convert.
func (v EntryValue) Float() (float64, bool) {
	switch n := v.v.(type) {
	case float64:
		return n, true
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	case Rational:
		return n.Float(), true
	case SRational:
		return n.Float(), true
	}
	return 0, false
}

// URational returns a scalar unsigned rational.
func (v EntryValue) URational() (Rational, bool) {
	r, ok := v.v.(Rational)
	return r, ok
}

// URationals returns the value as a rational slice; a scalar rational
// yields a one-element slice.
func (v EntryValue) URationals() ([]Rational, bool) {
	switch r := v.v.(type) {
	case Rational:
		return []Rational{r}, true
	case []Rational:
		return r, true
	}
	return nil, false
}

// Time returns the value as a timestamp.
func (v EntryValue) Time() (time.Time, bool) {
	t, ok := v.v.(time.Time)
	return t, ok
}

// Bytes returns the raw bytes of an UNDEFINED value.
func (v EntryValue) Bytes() ([]byte, bool) {
	b, ok := v.v.([]byte)
	return b, ok
}

// String renders the value the way the CLI prints it: rationals as
// "num/den (float)", UNDEFINED as "Undefined[0xLEN]", timestamps as
// RFC 3339, arrays comma-joined.
func (v EntryValue) String() string {
	switch x := v.v.(type) {
	case nil:
		return ""
	case string:
		return x
	case uint64:
		return fmt.Sprintf("%d", x)
	case int64:
		return fmt.Sprintf("%d", x)
	case float64:
		return fmt.Sprintf("%v", x)
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return fmt.Sprintf("Undefined[0x%02X]", len(x))
	case Rational:
		return fmt.Sprintf("%d/%d (%.4f)", x.Num, x.Den, x.Float())
	case SRational:
		return fmt.Sprintf("%d/%d (%.4f)", x.Num, x.Den, x.Float())
	case []uint64:
		return joinAll(x, func(n uint64) string { return fmt.Sprintf("%d", n) })
	case []int64:
		return joinAll(x, func(n int64) string { return fmt.Sprintf("%d", n) })
	case []float64:
		return joinAll(x, func(n float64) string { return fmt.Sprintf("%v", n) })
	case []Rational:
		return joinAll(x, func(r Rational) string { return fmt.Sprintf("%d/%d", r.Num, r.Den) })
	case []SRational:
		return joinAll(x, func(r SRational) string { return fmt.Sprintf("%d/%d", r.Num, r.Den) })
	default:
		return fmt.Sprintf("%v", x)
	}
}

func joinAll[T any](xs []T, f func(T) string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = f(x)
	}
	return strings.Join(parts, ", ")
}
