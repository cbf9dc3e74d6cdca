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
	"github.com/cockroachdb/ewkb/pkg/geo/geomfactory"
	"github.com/twpayne/go-geom"
)

// nodeCodec holds the per variant functions of the size, emit and decode
// passes. Keeping them in one table keeps the three passes in step: Write
// asserts that emit produced exactly the bytes size predicted.
type nodeCodec struct {
	// size returns the payload size of g, excluding its header.
	size func(s *writeState, g geom.T) (int, error)
	// emit appends the payload of g, excluding its header.
	emit func(s *writeState, g geom.T) error
	// read decodes the payload of a node whose header has been consumed.
	read func(r *Reader, in *OrderedReader, f *geomfactory.Factory, h nodeHeader) (geom.T, error)
}

// nodeCodecs is indexed by TypeCode. It is filled in by init since the
// collection entries recurse back into the table.
var nodeCodecs [TypeGeometryCollection + 1]nodeCodec

func init() {
	nodeCodecs = [...]nodeCodec{
		TypePoint:              {size: sizePoint, emit: emitPoint, read: readPoint},
		TypeLineString:         {size: sizeLineString, emit: emitLineString, read: readLineString},
		TypePolygon:            {size: sizePolygon, emit: emitPolygon, read: readPolygon},
		TypeMultiPoint:         {size: sizeMulti, emit: emitMulti, read: readMultiPoint},
		TypeMultiLineString:    {size: sizeMulti, emit: emitMulti, read: readMultiLineString},
		TypeMultiPolygon:       {size: sizeMulti, emit: emitMulti, read: readMultiPolygon},
		TypeGeometryCollection: {size: sizeMulti, emit: emitMulti, read: readGeometryCollection},
	}
}

// members returns the number of members of a multi geometry or collection,
// and an accessor for the i-th member.
func members(g geom.T) (int, func(int) geom.T) {
	switch t := g.(type) {
	case *geom.MultiPoint:
		return t.NumPoints(), func(i int) geom.T { return t.Point(i) }
	case *geom.MultiLineString:
		return t.NumLineStrings(), func(i int) geom.T { return t.LineString(i) }
	case *geom.MultiPolygon:
		return t.NumPolygons(), func(i int) geom.T { return t.Polygon(i) }
	case *geom.GeometryCollection:
		return t.NumGeoms(), t.Geom
	default:
		return 0, nil
	}
}

// numTuples returns the number of coordinate tuples in flat.
func numTuples(layout geom.Layout, flat []float64) int {
	stride := layout.Stride()
	if stride == 0 {
		return 0
	}
	return len(flat) / stride
}
