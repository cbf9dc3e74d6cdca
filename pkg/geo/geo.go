// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package geo converts between EWKB and the other forms a geometry takes in
// the geospatial world.
//
// Subpackages:
//   - geo/ewkb implements the EWKB codec itself.
//   - geo/geomfactory creates geometries bound to an SRID and a precision
//     model.
//   - geo/geomfn implements the geometry operations the codec needs.
//   - geo/geosql adapts the codec to database/sql.
package geo

import (
	"github.com/cockroachdb/ewkb/pkg/geo/ewkb"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
)

// DefaultEWKBEncodingFormat is the byte order EWKB is produced in.
const DefaultEWKBEncodingFormat = ewkb.DefaultByteOrder

// MarshalEWKB encodes t in the default byte order.
func MarshalEWKB(t geom.T) (geopb.EWKB, error) {
	return ewkb.Marshal(t, DefaultEWKBEncodingFormat)
}

// adjustGeomSRID sets the SRID of t and, for collections, of its members,
// mirroring the SRID the decoder gives every node of a tree.
// Ideally SetSRID is an interface of geom.T, but that is not the case.
func adjustGeomSRID(t geom.T, srid geopb.SRID) error {
	switch t := t.(type) {
	case *geom.Point:
		t.SetSRID(int(srid))
	case *geom.LineString:
		t.SetSRID(int(srid))
	case *geom.LinearRing:
		t.SetSRID(int(srid))
	case *geom.Polygon:
		t.SetSRID(int(srid))
	case *geom.MultiPoint:
		t.SetSRID(int(srid))
	case *geom.MultiLineString:
		t.SetSRID(int(srid))
	case *geom.MultiPolygon:
		t.SetSRID(int(srid))
	case *geom.GeometryCollection:
		t.SetSRID(int(srid))
		for _, member := range t.Geoms() {
			if err := adjustGeomSRID(member, srid); err != nil {
				return err
			}
		}
	default:
		return errors.AssertionFailedf("unknown geom type: %T", t)
	}
	return nil
}

// applyDefaultSRID gives t the default SRID if it has none.
func applyDefaultSRID(t geom.T, defaultSRID geopb.SRID) error {
	if defaultSRID == geopb.UnknownSRID || t.SRID() != 0 {
		return nil
	}
	return adjustGeomSRID(t, defaultSRID)
}
