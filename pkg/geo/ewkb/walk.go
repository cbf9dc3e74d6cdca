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
	"io"

	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
)

// NodeInfo describes one node of an encoding as it appears on the wire.
type NodeInfo struct {
	// Depth is 0 for the root and one more than the parent for members.
	Depth int
	// Offset is the position of the node's order byte.
	Offset    int
	ByteOrder ByteOrder
	TypeWord  uint32
	Type      TypeCode
	Ordinates geopb.Ordinates
	// HasSRID is set if the type word carries the SRID flag, on any node.
	HasSRID bool
	SRID    geopb.SRID
	// Count is the number of tuples of a point or line string, the number
	// of rings of a polygon or the number of members of a collection.
	Count int
}

// Walk calls fn for every node of the encoding in b, in wire order, without
// building geometries. Unlike Reader, it reports the SRID of sub-nodes. An
// error returned by fn stops the walk and is returned unchanged.
func Walk(b []byte, fn func(NodeInfo) error) error {
	in := NewOrderedReader(bytes.NewReader(b))
	err := walkNode(in, 0, fn)
	var cbErr *callbackError
	if errors.As(err, &cbErr) {
		return cbErr.err
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return errors.Mark(err, ErrDecode)
	}
	return err
}

// callbackError carries an error returned by the Walk callback through the
// decoding error handling.
type callbackError struct {
	err error
}

func (e *callbackError) Error() string { return e.err.Error() }

func walkNode(in *OrderedReader, depth int, fn func(NodeInfo) error) error {
	info := NodeInfo{Depth: depth, Offset: in.Offset()}
	if err := walkNodeInto(in, &info, fn); err != nil {
		var cbErr *callbackError
		if errors.As(err, &cbErr) {
			return cbErr
		}
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return err
		}
		return &DecodeError{Offset: in.Offset(), TypeWord: info.TypeWord, Err: err}
	}
	return nil
}

func walkNodeInto(in *OrderedReader, info *NodeInfo, fn func(NodeInfo) error) error {
	marker, err := in.ReadByte()
	if err != nil {
		return err
	}
	info.ByteOrder = ByteOrder(marker)
	if !info.ByteOrder.Valid() {
		return malformedErrorf("invalid byte order marker %d", marker)
	}
	in.SetByteOrder(info.ByteOrder)
	if info.TypeWord, err = in.ReadUint32(); err != nil {
		return err
	}
	info.Type = TypeCode(info.TypeWord & typeCodeMask)
	info.Ordinates = geopb.OrdinatesXY
	if info.TypeWord&flagZ != 0 {
		info.Ordinates |= geopb.OrdinatesZ
	}
	if info.TypeWord&flagM != 0 {
		info.Ordinates |= geopb.OrdinatesM
	}
	if info.TypeWord&flagSRID != 0 {
		srid, err := in.ReadInt32()
		if err != nil {
			return err
		}
		info.HasSRID = true
		info.SRID = geopb.SRID(srid)
	}
	if !info.Type.Valid() {
		return errors.Mark(
			errors.Newf("unknown geometry type %d", uint32(info.Type)), ErrUnknownGeometryType)
	}

	tupleSize := info.Ordinates.Dimension() * sizeOrdinate
	switch info.Type {
	case TypePoint:
		info.Count = 1
	case TypeLineString:
		info.Count, err = in.readCount(tupleSize)
	case TypePolygon:
		info.Count, err = in.readCount(sizeCount)
	case TypeMultiPoint:
		info.Count, err = in.readCount(minPointNodeSize)
	default:
		info.Count, err = in.readCount(minNodeSize)
	}
	if err != nil {
		return err
	}
	if err := fn(*info); err != nil {
		return &callbackError{err: err}
	}

	switch info.Type {
	case TypePoint, TypeLineString:
		return skip(in, info.Count*tupleSize)
	case TypePolygon:
		for i := 0; i < info.Count; i++ {
			n, err := in.readCount(tupleSize)
			if err != nil {
				return errors.Wrapf(err, "ring %d", i)
			}
			if err := skip(in, n*tupleSize); err != nil {
				return errors.Wrapf(err, "ring %d", i)
			}
		}
		return nil
	default:
		for i := 0; i < info.Count; i++ {
			if err := walkNode(in, info.Depth+1, fn); err != nil {
				return err
			}
		}
		return nil
	}
}

// skip consumes n bytes.
func skip(in *OrderedReader, n int) error {
	read, err := io.CopyN(io.Discard, in, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return truncatedErrorf("needed %d bytes, got %d", n, read)
		}
		return errors.Wrap(err, "reading ewkb")
	}
	return nil
}
