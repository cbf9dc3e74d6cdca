// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package geo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cockroachdb/ewkb/pkg/geo/ewkb"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/pierrre/geohash"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/kml"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkbcommon"
	"github.com/twpayne/go-geom/encoding/wkbhex"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// DefaultGeoJSONDecimalDigits is the default number of digits coordinates in GeoJSON.
const DefaultGeoJSONDecimalDigits = 9

// FullPrecision prints every significant digit of a coordinate.
const FullPrecision = -1

// GeomTToEWKT formats t as EWKT.
func GeomTToEWKT(t geom.T, maxDecimalDigits int) (geopb.EWKT, error) {
	ret, err := wkt.Marshal(t, wkt.EncodeOptionWithMaxDecimalDigits(maxDecimalDigits))
	if err != nil {
		return "", errors.Wrap(err, "geo: encoding WKT")
	}
	if t.SRID() > 0 {
		ret = fmt.Sprintf("SRID=%d;%s", t.SRID(), ret)
	}
	return geopb.EWKT(ret), nil
}

// EWKBToWKT transforms a given EWKB to WKT.
func EWKBToWKT(b geopb.EWKB, maxDecimalDigits int) (geopb.WKT, error) {
	t, err := ewkb.Unmarshal(b)
	if err != nil {
		return "", err
	}
	ret, err := wkt.Marshal(t, wkt.EncodeOptionWithMaxDecimalDigits(maxDecimalDigits))
	if err != nil {
		return "", errors.Wrap(err, "geo: encoding WKT")
	}
	return geopb.WKT(ret), nil
}

// EWKBToEWKT transforms a given EWKB to EWKT.
func EWKBToEWKT(b geopb.EWKB, maxDecimalDigits int) (geopb.EWKT, error) {
	t, err := ewkb.Unmarshal(b)
	if err != nil {
		return "", err
	}
	return GeomTToEWKT(t, maxDecimalDigits)
}

// EWKBToWKB transforms a given EWKB to WKB, dropping the SRID.
func EWKBToWKB(b geopb.EWKB, byteOrder ewkb.ByteOrder) (geopb.WKB, error) {
	t, err := ewkb.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	ret, err := wkb.Marshal(
		t, byteOrder.Binary(), wkbcommon.WKBOptionEmptyPointHandling(wkbcommon.EmptyPointHandlingNaN))
	if err != nil {
		return nil, errors.Wrap(err, "geo: encoding WKB")
	}
	return geopb.WKB(ret), nil
}

// EWKBToGeoJSONFlag maps to the ST_AsGeoJSON flags for PostGIS.
type EWKBToGeoJSONFlag int

// These should be kept with ST_AsGeoJSON in PostGIS.
// 0: means no option
// 1: GeoJSON BBOX
// 2: GeoJSON Short CRS (e.g EPSG:4326)
// 4: GeoJSON Long CRS (e.g urn:ogc:def:crs:EPSG::4326)
// 8: GeoJSON Short CRS if not EPSG:4326 (default)
const (
	EWKBToGeoJSONFlagIncludeBBox EWKBToGeoJSONFlag = 1 << (iota)
	EWKBToGeoJSONFlagShortCRS
	EWKBToGeoJSONFlagLongCRS
	EWKBToGeoJSONFlagShortCRSIfNot4326

	EWKBToGeoJSONFlagZero = 0
)

// geomToGeoJSONCRS converts a geom to its CRS GeoJSON form. Every SRID is
// treated as an EPSG code.
func geomToGeoJSONCRS(t geom.T, long bool) *geojson.CRS {
	var prop string
	if long {
		prop = fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", t.SRID())
	} else {
		prop = fmt.Sprintf("EPSG:%d", t.SRID())
	}
	return &geojson.CRS{
		Type: "name",
		Properties: map[string]interface{}{
			"name": prop,
		},
	}
}

// EWKBToGeoJSON transforms a given EWKB to GeoJSON.
func EWKBToGeoJSON(b geopb.EWKB, maxDecimalDigits int, flag EWKBToGeoJSONFlag) ([]byte, error) {
	t, err := ewkb.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	options := []geojson.EncodeGeometryOption{
		geojson.EncodeGeometryWithMaxDecimalDigits(maxDecimalDigits),
	}
	if flag&EWKBToGeoJSONFlagIncludeBBox != 0 {
		// Do not encode empty bounding boxes.
		if geopb.BoundingBoxFromGeomT(t) != nil {
			options = append(options, geojson.EncodeGeometryWithBBox())
		}
	}
	// Take CRS flag in order of precedence.
	if t.SRID() > 0 {
		if flag&EWKBToGeoJSONFlagLongCRS != 0 {
			options = append(options, geojson.EncodeGeometryWithCRS(geomToGeoJSONCRS(t, true /* long */)))
		} else if flag&EWKBToGeoJSONFlagShortCRS != 0 {
			options = append(options, geojson.EncodeGeometryWithCRS(geomToGeoJSONCRS(t, false /* long */)))
		} else if flag&EWKBToGeoJSONFlagShortCRSIfNot4326 != 0 {
			if geopb.SRID(t.SRID()) != geopb.DefaultGeographySRID {
				options = append(options, geojson.EncodeGeometryWithCRS(geomToGeoJSONCRS(t, false /* long */)))
			}
		}
	}

	ret, err := geojson.Marshal(t, options...)
	if err != nil {
		return nil, errors.Wrap(err, "geo: encoding GeoJSON")
	}
	return ret, nil
}

// EWKBToWKBHex transforms a given EWKB to upper case hex WKB.
func EWKBToWKBHex(b geopb.EWKB) (string, error) {
	t, err := ewkb.Unmarshal(b)
	if err != nil {
		return "", err
	}
	ret, err := wkbhex.Encode(
		t, DefaultEWKBEncodingFormat.Binary(), wkbcommon.WKBOptionEmptyPointHandling(wkbcommon.EmptyPointHandlingNaN))
	if err != nil {
		return "", errors.Wrap(err, "geo: encoding WKB hex")
	}
	return strings.ToUpper(ret), nil
}

// EWKBToEWKBHex transforms a given EWKB to its upper case hex form.
func EWKBToEWKBHex(b geopb.EWKB) geopb.EWKBHex {
	return geopb.EWKBHex(fmt.Sprintf("%X", []byte(b)))
}

// EWKBToKML transforms a given EWKB to KML.
func EWKBToKML(b geopb.EWKB) (string, error) {
	t, err := ewkb.Unmarshal(b)
	if err != nil {
		return "", err
	}
	kmlElement, err := kml.Encode(t)
	if err != nil {
		return "", errors.Wrap(err, "geo: encoding KML")
	}
	var buf bytes.Buffer
	if err := kmlElement.Write(&buf); err != nil {
		return "", errors.Wrap(err, "geo: writing KML")
	}
	return buf.String(), nil
}

// GeoHashAutoPrecision means to calculate the precision of EWKBToGeoHash
// based on input, up to 32 characters.
const GeoHashAutoPrecision = 0

// GeoHashMaxPrecision is the maximum precision for GeoHashes.
// 20 is picked as doubles have 51 decimals of precision, and each base32 position
// can contain 5 bits of data. As we have two points, we use floor((2 * 51) / 5) = 20.
const GeoHashMaxPrecision = 20

// EWKBToGeoHash transforms a given EWKB to a GeoHash of the center of its
// bounding box. An empty geometry has no GeoHash.
func EWKBToGeoHash(b geopb.EWKB, p int) (string, error) {
	t, err := ewkb.Unmarshal(b)
	if err != nil {
		return "", err
	}
	bbox := geopb.BoundingBoxFromGeomT(t)
	if bbox == nil {
		return "", nil
	}
	if bbox.MinX < -180 || bbox.MaxX > 180 || bbox.MinY < -90 || bbox.MaxY > 90 {
		return "", errors.Newf(
			"object has bounds greater than the bounds of lat/lng, got (%f %f, %f %f)",
			bbox.MinX, bbox.MinY,
			bbox.MaxX, bbox.MaxY,
		)
	}

	// Get precision using the bounding box if required.
	if p <= GeoHashAutoPrecision {
		p = getPrecisionForBBox(bbox)
	}

	// Support up to 20, which is the same as PostGIS.
	if p > GeoHashMaxPrecision {
		p = GeoHashMaxPrecision
	}

	bbCenterLng := bbox.MinX + (bbox.MaxX-bbox.MinX)/2.0
	bbCenterLat := bbox.MinY + (bbox.MaxY-bbox.MinY)/2.0

	return geohash.Encode(bbCenterLat, bbCenterLng, p), nil
}

// getPrecisionForBBox is a function imitating PostGIS's ability to go from
// a world bounding box and truncating a GeoHash to fit the given bounding box.
// The algorithm halves the world bounding box until it intersects with the
// feature bounding box to get a precision that will encompass the entire
// bounding box.
func getPrecisionForBBox(bbox *geopb.BoundingBox) int {
	bitPrecision := 0

	// This is a point, for points we use the full bitPrecision.
	if bbox.MinX == bbox.MaxX && bbox.MinY == bbox.MaxY {
		return GeoHashMaxPrecision
	}

	// Starts from a world bounding box:
	lonMin := -180.0
	lonMax := 180.0
	latMin := -90.0
	latMax := 90.0

	// Each iteration shrinks the world bounding box by half in the dimension that
	// does not fit, making adjustments each iteration until it intersects with
	// the object bbox.
	for {
		lonWidth := lonMax - lonMin
		latWidth := latMax - latMin
		latMaxDelta, lonMaxDelta, latMinDelta, lonMinDelta := 0.0, 0.0, 0.0, 0.0

		if bbox.MinX > lonMin+lonWidth/2.0 {
			lonMinDelta = lonWidth / 2.0
		} else if bbox.MaxX < lonMax-lonWidth/2.0 {
			lonMaxDelta = lonWidth / -2.0
		}
		if bbox.MinY > latMin+latWidth/2.0 {
			latMinDelta = latWidth / 2.0
		} else if bbox.MaxY < latMax-latWidth/2.0 {
			latMaxDelta = latWidth / -2.0
		}

		// Every change we make that splits the box up adds precision.
		// If we detect no change, we've intersected a box and so must exit.
		precisionDelta := 0
		if lonMinDelta != 0.0 || lonMaxDelta != 0.0 {
			lonMin += lonMinDelta
			lonMax += lonMaxDelta
			precisionDelta++
		} else {
			break
		}
		if latMinDelta != 0.0 || latMaxDelta != 0.0 {
			latMin += latMinDelta
			latMax += latMaxDelta
			precisionDelta++
		} else {
			break
		}
		bitPrecision += precisionDelta
	}
	// Each character can represent 5 bits of bitPrecision.
	// As such, divide by 5 to get GeoHash precision.
	return bitPrecision / 5
}

// StringToByteOrder returns the byte order named by s, or the default order
// if s names none.
func StringToByteOrder(s string) ewkb.ByteOrder {
	o, err := ewkb.ParseByteOrder(s)
	if err != nil {
		return DefaultEWKBEncodingFormat
	}
	return o
}
