// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package geomfactory builds go-geom geometries from coordinate sequences,
// binding every geometry it creates to one SRID and one precision model.
package geomfactory

import (
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
)

// Factory creates each of the seven geometry variants. A Factory is
// immutable and safe for concurrent use.
type Factory struct {
	precision PrecisionModel
	srid      geopb.SRID
	seqs      CoordSeqFactory
}

var defaultFactory = New(Floating{}, geopb.UnknownSRID, FlatCoordSeqFactory{})

// Default returns the process-wide factory: floating precision, no SRID and
// go-geom native storage.
func Default() *Factory {
	return defaultFactory
}

// New returns a Factory. A nil precision model or storage strategy falls back
// to the defaults.
func New(precision PrecisionModel, srid geopb.SRID, seqs CoordSeqFactory) *Factory {
	if precision == nil {
		precision = Floating{}
	}
	if seqs == nil {
		seqs = FlatCoordSeqFactory{}
	}
	return &Factory{precision: precision, srid: srid, seqs: seqs}
}

// WithSRID returns a factory sharing f's precision model and storage but
// bound to srid.
func (f *Factory) WithSRID(srid geopb.SRID) *Factory {
	if f.srid == srid {
		return f
	}
	return New(f.precision, srid, f.seqs)
}

// SRID is the spatial reference id given to every created geometry.
func (f *Factory) SRID() geopb.SRID {
	return f.srid
}

// PrecisionModel returns the factory's precision model.
func (f *Factory) PrecisionModel() PrecisionModel {
	return f.precision
}

// CoordSeqFactory returns the factory's storage strategy.
func (f *Factory) CoordSeqFactory() CoordSeqFactory {
	return f.seqs
}

// Point creates a point from the first tuple of seq. An empty sequence
// creates an empty point.
func (f *Factory) Point(seq CoordSeq) *geom.Point {
	layout := seq.Layout()
	if seq.Len() == 0 {
		return geom.NewPointEmpty(layout).SetSRID(int(f.srid))
	}
	flat := seq.FlatCoords()
	return geom.NewPointFlat(layout, flat[:layout.Stride()]).SetSRID(int(f.srid))
}

// LineString creates a line string.
func (f *Factory) LineString(seq CoordSeq) *geom.LineString {
	return geom.NewLineStringFlat(seq.Layout(), seq.FlatCoords()).SetSRID(int(f.srid))
}

// LinearRing creates a linear ring.
func (f *Factory) LinearRing(seq CoordSeq) *geom.LinearRing {
	return geom.NewLinearRingFlat(seq.Layout(), seq.FlatCoords()).SetSRID(int(f.srid))
}

// Polygon creates a polygon. The first ring is the shell, the rest are holes.
// No rings creates an empty polygon.
func (f *Factory) Polygon(layout geom.Layout, rings []CoordSeq) (*geom.Polygon, error) {
	var flat []float64
	ends := make([]int, 0, len(rings))
	for i, ring := range rings {
		if ring.Layout() != layout {
			return nil, errors.Newf(
				"ring %d has layout %d, polygon has layout %d", i, ring.Layout(), layout)
		}
		flat = append(flat, ring.FlatCoords()...)
		ends = append(ends, len(flat))
	}
	if len(rings) == 0 {
		return geom.NewPolygon(layout).SetSRID(int(f.srid)), nil
	}
	return geom.NewPolygonFlat(layout, flat, ends).SetSRID(int(f.srid)), nil
}

// MultiPoint creates a multi point. Every point must use layout.
func (f *Factory) MultiPoint(layout geom.Layout, points []*geom.Point) (*geom.MultiPoint, error) {
	mp := geom.NewMultiPoint(layout)
	for _, p := range points {
		if err := mp.Push(p); err != nil {
			return nil, errors.Wrap(err, "building multipoint")
		}
	}
	return mp.SetSRID(int(f.srid)), nil
}

// MultiLineString creates a multi line string. Every line string must use
// layout.
func (f *Factory) MultiLineString(
	layout geom.Layout, lineStrings []*geom.LineString,
) (*geom.MultiLineString, error) {
	mls := geom.NewMultiLineString(layout)
	for _, ls := range lineStrings {
		if err := mls.Push(ls); err != nil {
			return nil, errors.Wrap(err, "building multilinestring")
		}
	}
	return mls.SetSRID(int(f.srid)), nil
}

// MultiPolygon creates a multi polygon. Every polygon must use layout.
func (f *Factory) MultiPolygon(
	layout geom.Layout, polygons []*geom.Polygon,
) (*geom.MultiPolygon, error) {
	mp := geom.NewMultiPolygon(layout)
	for _, p := range polygons {
		if err := mp.Push(p); err != nil {
			return nil, errors.Wrap(err, "building multipolygon")
		}
	}
	return mp.SetSRID(int(f.srid)), nil
}

// GeometryCollection creates a collection of arbitrary geometries. An empty
// collection takes layout; a non-empty one derives its layout from its
// members.
func (f *Factory) GeometryCollection(
	layout geom.Layout, geoms []geom.T,
) (*geom.GeometryCollection, error) {
	gc := geom.NewGeometryCollection()
	if len(geoms) == 0 {
		if layout != geom.NoLayout && layout != geom.XY {
			if err := gc.SetLayout(layout); err != nil {
				return nil, errors.Wrap(err, "building geometrycollection")
			}
		}
		return gc.SetSRID(int(f.srid)), nil
	}
	if err := gc.Push(geoms...); err != nil {
		return nil, errors.Wrap(err, "building geometrycollection")
	}
	return gc.SetSRID(int(f.srid)), nil
}
