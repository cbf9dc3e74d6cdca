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
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrDecode marks every error caused by the bytes being decoded. Use
	// errors.Is to test for it, and errors.As with *DecodeError to find where
	// decoding failed.
	ErrDecode = errors.New("ewkb: decode error")
	// ErrTruncated marks input that ends before the data it declares.
	ErrTruncated = errors.New("ewkb: truncated input")
	// ErrMalformed marks invalid order markers, counts and layouts.
	ErrMalformed = errors.New("ewkb: malformed input")
	// ErrUnknownGeometryType marks a type word whose type code is not one of
	// the seven geometry variants.
	ErrUnknownGeometryType = errors.New("ewkb: unknown geometry type")
	// ErrIncorrectGeometry marks a multi geometry containing a member of the
	// wrong type, e.g. a line string inside a multi point.
	ErrIncorrectGeometry = errors.New("ewkb: incorrect geometry")

	// ErrUsage marks invalid configuration and API misuse. It is never
	// caused by the data being encoded or decoded.
	ErrUsage = errors.New("ewkb: usage error")
	// ErrNilGeometry marks an attempt to encode a nil geometry or a
	// collection with a nil member.
	ErrNilGeometry = errors.New("ewkb: nil geometry")
)

// DecodeError is the error returned for invalid input. It records the input
// offset at which decoding failed and the type word of the node being
// decoded, or zero if the failure happened before the type word was read.
type DecodeError struct {
	Offset   int
	TypeWord uint32
	Err      error
}

var _ error = (*DecodeError)(nil)

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ewkb: at offset %d (type word 0x%08X): %v", e.Offset, e.TypeWord, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TypeCode returns the type code of the node that failed to decode.
func (e *DecodeError) TypeCode() TypeCode {
	return TypeCode(e.TypeWord & typeCodeMask)
}

func truncatedErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrTruncated)
}

func malformedErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrMalformed)
}

func usageErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrUsage)
}
