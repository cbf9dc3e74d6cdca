// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package ewkb

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// ByteOrder is the value of a node's order marker byte.
type ByteOrder uint8

// The byte orders. XDR and NDR are the names PostGIS uses.
const (
	BigEndian    ByteOrder = 0
	LittleEndian ByteOrder = 1

	XDR = BigEndian
	NDR = LittleEndian
)

// DefaultByteOrder is the order PostGIS emits on little endian hosts.
const DefaultByteOrder = LittleEndian

// Valid returns whether o is a legal order marker.
func (o ByteOrder) Valid() bool {
	return o == BigEndian || o == LittleEndian
}

func (o ByteOrder) String() string {
	switch o {
	case BigEndian:
		return "xdr"
	case LittleEndian:
		return "ndr"
	default:
		return "invalid"
	}
}

// SafeValue implements the redact.SafeValue interface.
func (ByteOrder) SafeValue() {}

// Binary returns the encoding/binary implementation of o.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ByteOrderFromBinary converts an encoding/binary byte order.
func ByteOrderFromBinary(b binary.ByteOrder) (ByteOrder, error) {
	switch b {
	case binary.BigEndian:
		return BigEndian, nil
	case binary.LittleEndian:
		return LittleEndian, nil
	default:
		return 0, usageErrorf("unsupported byte order %v", b)
	}
}

// ParseByteOrder parses "ndr", "little", "xdr" or "big", case insensitively.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ndr", "little", "little-endian", "le":
		return LittleEndian, nil
	case "xdr", "big", "big-endian", "be":
		return BigEndian, nil
	default:
		return 0, errors.Newf("invalid byte order %q: expected ndr or xdr", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o ByteOrder) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, usageErrorf("invalid byte order %d", uint8(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *ByteOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseByteOrder(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Set implements pflag.Value.
func (o *ByteOrder) Set(s string) error {
	return o.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (o *ByteOrder) Type() string {
	return "byte-order"
}

// emitter appends primitives to a buffer in one byte order.
type emitter struct {
	buf   []byte
	order binary.ByteOrder
}

func (e *emitter) putByte(b byte) {
	e.buf = append(e.buf, b)
}

func (e *emitter) putUint32(v uint32) {
	var tmp [4]byte
	e.order.PutUint32(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
}

func (e *emitter) putInt32(v int32) {
	e.putUint32(uint32(v))
}

func (e *emitter) putFloat64Bits(bits uint64) {
	var tmp [8]byte
	e.order.PutUint64(tmp[:], bits)
	e.buf = append(e.buf, tmp[:]...)
}

func (e *emitter) putFloat64(v float64) {
	e.putFloat64Bits(math.Float64bits(v))
}

// OrderedReader reads primitives from an io.Reader in a byte order that can
// be switched between reads. It counts the bytes it consumes so that errors
// can report where decoding failed.
type OrderedReader struct {
	r     io.Reader
	order binary.ByteOrder
	// offset is the number of bytes consumed so far.
	offset int
	// remaining is the number of unread bytes, or -1 if unknown.
	remaining int
	scratch   [8]byte
}

// NewOrderedReader wraps r. The initial byte order is little endian. When r
// is a *bytes.Reader, the unread length is known up front and element counts
// larger than the remaining input are rejected before allocating.
func NewOrderedReader(r io.Reader) *OrderedReader {
	remaining := -1
	if br, ok := r.(*bytes.Reader); ok {
		remaining = br.Len()
	}
	return &OrderedReader{r: r, order: binary.LittleEndian, remaining: remaining}
}

// SetByteOrder switches the order used by subsequent reads.
func (r *OrderedReader) SetByteOrder(o ByteOrder) {
	r.order = o.Binary()
}

// Offset returns the number of bytes consumed.
func (r *OrderedReader) Offset() int {
	return r.offset
}

// Read implements io.Reader, reading raw bytes.
func (r *OrderedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.offset += n
	if r.remaining >= 0 {
		r.remaining -= n
	}
	return n, err
}

var _ io.Reader = (*OrderedReader)(nil)

func (r *OrderedReader) read(n int) ([]byte, error) {
	buf := r.scratch[:n]
	read, err := io.ReadFull(r.r, buf)
	r.offset += read
	if r.remaining >= 0 {
		r.remaining -= read
	}
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, truncatedErrorf("needed %d bytes, got %d", n, read)
		}
		return nil, errors.Wrap(err, "reading ewkb")
	}
	return buf, nil
}

// ReadByte reads one byte.
func (r *OrderedReader) ReadByte() (byte, error) {
	buf, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint32 reads an unsigned 32 bit integer.
func (r *OrderedReader) ReadUint32() (uint32, error) {
	buf, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadInt32 reads a signed 32 bit integer.
func (r *OrderedReader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadFloat64 reads an IEEE-754 double.
func (r *OrderedReader) ReadFloat64() (float64, error) {
	buf, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(buf)), nil
}

// readCount reads an element count. Each element occupies at least minSize
// bytes, which bounds the count when the input length is known.
func (r *OrderedReader) readCount(minSize int) (int, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, malformedErrorf("negative count %d", n)
	}
	if r.remaining >= 0 && int64(n)*int64(minSize) > int64(r.remaining) {
		return 0, truncatedErrorf(
			"count %d needs at least %d bytes, %d remain", n, int64(n)*int64(minSize), r.remaining)
	}
	return int(n), nil
}
