// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package geopb contains the plain data types shared by the geometry codec
// and its collaborators: spatial reference ids, the named byte/text forms of
// a spatial object, ordinate sets and bounding boxes.
package geopb

// The following are the common standard SRIDs that we support.
const (
	// UnknownSRID is the default SRID if none is provided. It is never
	// written to the wire.
	UnknownSRID = SRID(0)
	// DefaultGeographySRID (aka 4326) is the GPS lat/lng we all know and love.
	// In this system, (long, lat) corresponds to (X, Y), bounded by
	// ([-180, 180], [-90 90]).
	DefaultGeographySRID = SRID(4326)
)

// SRID is a Spatial Reference Identifer. All geometry shapes are stored and
// represented as using coordinates that are bare floats. SRIDs tie these
// floats to the planar or spherical coordinate system, allowing them to be
// interpreted and compared.
//
// Zero and negative values are "unset": they mean no SRID is encoded.
type SRID int32

// IsSet returns whether the SRID names a coordinate system, i.e. whether it
// is written into an encoded header.
func (s SRID) IsSet() bool {
	return s > 0
}

// SafeValue implements the redact.SafeValue interface.
func (SRID) SafeValue() {}

// WKT is the Well Known Text form of a spatial object.
type WKT string

// EWKT is the Extended Well Known Text form of a spatial object.
type EWKT string

// WKB is the Well Known Bytes form of a spatial object.
type WKB []byte

// EWKB is the Extended Well Known Bytes form of a spatial object.
type EWKB []byte

// EWKBHex is the hex encoded form of an EWKB, as PostGIS prints it.
type EWKBHex string
