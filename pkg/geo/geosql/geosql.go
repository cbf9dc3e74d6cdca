// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package geosql lets geometries be passed to and read from PostGIS through
// database/sql.
package geosql

import (
	"database/sql"
	"database/sql/driver"

	"github.com/cockroachdb/ewkb/pkg/geo"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
)

// Geometry is a nullable geometry column value. A nil T is SQL NULL.
type Geometry struct {
	T geom.T
}

var _ sql.Scanner = (*Geometry)(nil)
var _ driver.Valuer = Geometry{}

// Scan implements sql.Scanner. It accepts raw EWKB, as returned by the binary
// protocol, and hex EWKB, as returned by the text protocol.
func (g *Geometry) Scan(src interface{}) error {
	var t geom.T
	var err error
	switch src := src.(type) {
	case nil:
		g.T = nil
		return nil
	case []byte:
		if len(src) > 0 && (src[0] == 0x00 || src[0] == 0x01) {
			t, err = geo.ParseEWKB(src, geopb.UnknownSRID)
		} else {
			t, err = geo.ParseEWKBHex(geopb.EWKBHex(src), geopb.UnknownSRID)
		}
	case string:
		t, err = geo.ParseEWKBHex(geopb.EWKBHex(src), geopb.UnknownSRID)
	default:
		return errors.Newf("geosql: cannot scan %T into a geometry", src)
	}
	if err != nil {
		return errors.Wrap(err, "geosql: scanning geometry")
	}
	g.T = t
	return nil
}

// Value implements driver.Valuer. The geometry is sent as upper case hex
// EWKB, which PostGIS accepts as text input for the geometry type.
func (g Geometry) Value() (driver.Value, error) {
	if g.T == nil {
		return nil, nil
	}
	b, err := geo.MarshalEWKB(g.T)
	if err != nil {
		return nil, err
	}
	return string(geo.EWKBToEWKBHex(b)), nil
}
