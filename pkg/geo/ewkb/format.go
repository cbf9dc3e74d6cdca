// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package ewkb reads and writes the PostGIS "extended well known binary"
// representation of geometries.
//
// Every node of an encoded tree is self describing:
//
//	node      ::= order_byte type_word [srid] payload
//	type_word ::= type_code (29 bits) | hasZ<<31 | hasM<<30 | hasSRID<<29
//
// Only the root node of a tree carries an SRID. Sub-geometries of a decoded
// collection inherit the root's SRID.
package ewkb

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
)

// TypeCode identifies the geometry variant of a node. The values are part of
// the wire format and must not be renumbered.
type TypeCode uint32

// The geometry type codes.
const (
	TypePoint              TypeCode = 1
	TypeLineString         TypeCode = 2
	TypePolygon            TypeCode = 3
	TypeMultiPoint         TypeCode = 4
	TypeMultiLineString    TypeCode = 5
	TypeMultiPolygon       TypeCode = 6
	TypeGeometryCollection TypeCode = 7
)

// Type word flag bits.
const (
	flagZ    uint32 = 0x80000000
	flagM    uint32 = 0x40000000
	flagSRID uint32 = 0x20000000

	typeCodeMask uint32 = 0x1FFFFFFF
)

// emptyPointBits is written for every ordinate of an empty point. It is kept
// as a raw bit pattern since NaN payloads are not preserved by every producer.
const emptyPointBits uint64 = 0x7FF8000000000000

// Wire sizes, in bytes.
const (
	sizeOrder    = 1
	sizeTypeWord = 4
	sizeSRID     = 4
	sizeCount    = 4
	sizeOrdinate = 8

	sizeHeader = sizeOrder + sizeTypeWord
	// minNodeSize is the size of the smallest possible node, an empty line
	// string, polygon or collection.
	minNodeSize = sizeHeader + sizeCount
	// minPointNodeSize is the size of a two dimensional point node.
	minPointNodeSize = sizeHeader + 2*sizeOrdinate
)

var typeCodeNames = [...]string{
	TypePoint:              "Point",
	TypeLineString:         "LineString",
	TypePolygon:            "Polygon",
	TypeMultiPoint:         "MultiPoint",
	TypeMultiLineString:    "MultiLineString",
	TypeMultiPolygon:       "MultiPolygon",
	TypeGeometryCollection: "GeometryCollection",
}

// Valid returns whether c is one of the seven geometry type codes.
func (c TypeCode) Valid() bool {
	return c >= TypePoint && c <= TypeGeometryCollection
}

func (c TypeCode) String() string {
	if !c.Valid() {
		return fmt.Sprintf("TypeCode(%d)", uint32(c))
	}
	return typeCodeNames[c]
}

// SafeValue implements the redact.SafeValue interface.
func (TypeCode) SafeValue() {}

// typeCodeOf returns the type code used to encode g. A nil geometry, or a
// nil pointer of one of the geometry types, is an input error. A
// *geom.LinearRing is encoded as a line string.
func typeCodeOf(g geom.T) (TypeCode, error) {
	var code TypeCode
	var isNil bool
	switch t := g.(type) {
	case nil:
		return 0, errors.Mark(errors.New("nil geometry"), ErrNilGeometry)
	case *geom.Point:
		code, isNil = TypePoint, t == nil
	case *geom.LineString:
		code, isNil = TypeLineString, t == nil
	case *geom.LinearRing:
		code, isNil = TypeLineString, t == nil
	case *geom.Polygon:
		code, isNil = TypePolygon, t == nil
	case *geom.MultiPoint:
		code, isNil = TypeMultiPoint, t == nil
	case *geom.MultiLineString:
		code, isNil = TypeMultiLineString, t == nil
	case *geom.MultiPolygon:
		code, isNil = TypeMultiPolygon, t == nil
	case *geom.GeometryCollection:
		code, isNil = TypeGeometryCollection, t == nil
	default:
		return 0, errors.AssertionFailedf("unknown geometry type: %T", g)
	}
	if isNil {
		return 0, errors.Mark(errors.Newf("nil %s", code), ErrNilGeometry)
	}
	return code, nil
}
