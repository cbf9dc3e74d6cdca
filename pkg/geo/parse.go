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
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/cockroachdb/ewkb/pkg/geo/ewkb"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// ParseAmbiguousText parses a text as a number of different options
// that is available in the geospatial world using the first character as
// a heuristic: hex EWKB, raw EWKB or (E)WKT.
// This matches the PostGIS direct cast from a string to GEOMETRY.
func ParseAmbiguousText(str string, defaultSRID geopb.SRID) (geom.T, error) {
	if len(str) == 0 {
		return nil, errors.New("geo: parsing empty string to geo type")
	}

	switch str[0] {
	case '0':
		return ParseEWKBHex(geopb.EWKBHex(str), defaultSRID)
	case 0x00, 0x01:
		return ParseEWKB(geopb.EWKB(str), defaultSRID)
	}
	return ParseEWKT(geopb.EWKT(str), defaultSRID)
}

// ParseEWKB decodes an EWKB, giving it defaultSRID if it carries none.
func ParseEWKB(b geopb.EWKB, defaultSRID geopb.SRID) (geom.T, error) {
	t, err := ewkb.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	if err := applyDefaultSRID(t, defaultSRID); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseEWKBHex decodes a hex encoded EWKB, in either case.
func ParseEWKBHex(str geopb.EWKBHex, defaultSRID geopb.SRID) (geom.T, error) {
	b, err := hex.DecodeString(strings.TrimSpace(string(str)))
	if err != nil {
		return nil, errors.Wrap(err, "geo: decoding hex ewkb")
	}
	return ParseEWKB(b, defaultSRID)
}

const sridPrefix = "SRID="
const sridPrefixLen = len(sridPrefix)

// ParseEWKT decodes an EWKT, which is a WKT optionally preceded by
// "SRID=<srid>;".
func ParseEWKT(str geopb.EWKT, defaultSRID geopb.SRID) (geom.T, error) {
	s := strings.TrimSpace(string(str))
	srid := defaultSRID
	if len(s) >= sridPrefixLen && strings.EqualFold(s[:sridPrefixLen], sridPrefix) {
		end := strings.Index(s[sridPrefixLen:], ";")
		if end == -1 {
			return nil, errors.Newf(
				"geo: failed to find ; character with SRID declaration during EWKT decode: %q",
				s,
			)
		}
		sridInt64, err := strconv.ParseInt(s[sridPrefixLen:sridPrefixLen+end], 10, 32)
		if err != nil {
			return nil, errors.Wrap(err, "geo: parsing SRID")
		}
		// Only override the SRID if the SRID is not zero.
		// This is in line with observed PostGIS behavior, where an explicit 0
		// still falls back to the default.
		if sridInt64 != 0 {
			srid = geopb.SRID(sridInt64)
		}
		s = s[sridPrefixLen+end+1:]
	}

	t, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "geo: parsing WKT %q", s)
	}
	if srid != geopb.UnknownSRID {
		if err := adjustGeomSRID(t, srid); err != nil {
			return nil, err
		}
	}
	return t, nil
}
