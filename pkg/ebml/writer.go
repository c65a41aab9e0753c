// Package ebml provides a write-only EBML encoder: primitive value writers,
// minimal variable-length size fields and a tree serializer.
package ebml

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrSizeOverflow is returned when a value does not fit the requested encoding.
var ErrSizeOverflow = errors.New("ebml: size overflow")

// MaxVintSize is the largest length that can be encoded in an 8-byte size field.
// 2^56-1 is reserved for "unknown size".
const MaxVintSize = 1<<56 - 2

// UintBytes returns the minimal big-endian encoding of v.
// Zero is encoded as a single 0x00 byte.
func UintBytes(v uint64) []byte {
	n := uintLen(v)
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

func uintLen(v uint64) int {
	n := 1
	for v > 0xff {
		v >>= 8
		n++
	}
	return n
}

// FixedBytes returns v as exactly width big-endian bytes.
func FixedBytes(v uint64, width int) ([]byte, error) {
	if width < 1 || width > 8 {
		return nil, fmt.Errorf("%w: fixed width %d", ErrSizeOverflow, width)
	}
	if width < 8 && v >= 1<<(8*uint(width)) {
		return nil, fmt.Errorf("%w: %d does not fit in %d bytes", ErrSizeOverflow, v, width)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[8-width:], nil
}

// Float64Bytes returns the 8-byte IEEE-754 big-endian encoding of v.
func Float64Bytes(v float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return b
}

// VintSizeLen returns the number of bytes the minimal size field for n takes.
// A field of w bytes holds 0 .. 2^(7w)-2.
func VintSizeLen(n uint64) (int, error) {
	if n > MaxVintSize {
		return 0, fmt.Errorf("%w: length %d", ErrSizeOverflow, n)
	}
	for w := 1; w < 8; w++ {
		if n < 1<<(7*uint(w))-1 {
			return w, nil
		}
	}
	return 8, nil
}

// VintSize returns the minimal EBML size field for n.
func VintSize(n uint64) ([]byte, error) {
	w, err := VintSizeLen(n)
	if err != nil {
		return nil, err
	}
	b := make([]byte, w)
	v := n | 1<<(7*uint(w))
	for i := w - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b, nil
}

// IDBytes returns an element ID in its natural width, marker bits included.
func IDBytes(id uint32) []byte {
	return UintBytes(uint64(id))
}

// Writer accumulates encoded primitives into a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// WriteUint appends the minimal big-endian encoding of v.
func (w *Writer) WriteUint(v uint64) {
	w.buf = append(w.buf, UintBytes(v)...)
}

// WriteFixed appends v as exactly width big-endian bytes.
func (w *Writer) WriteFixed(v uint64, width int) error {
	b, err := FixedBytes(v, width)
	if err != nil {
		return err
	}
	w.buf = append(w.buf, b...)
	return nil
}

// WriteFloat64 appends an 8-byte big-endian double.
func (w *Writer) WriteFloat64(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteString appends the bytes of s unchanged.
func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

// WriteBytes appends b unchanged.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteID appends an element ID.
func (w *Writer) WriteID(id uint32) {
	w.buf = append(w.buf, IDBytes(id)...)
}

// WriteVintSize appends the minimal size field for n.
func (w *Writer) WriteVintSize(n uint64) error {
	b, err := VintSize(n)
	if err != nil {
		return err
	}
	w.buf = append(w.buf, b...)
	return nil
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}
