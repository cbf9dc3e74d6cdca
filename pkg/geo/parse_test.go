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
	"testing"

	"github.com/cockroachdb/ewkb/pkg/geo/ewkb"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const pointHex = "0101000000000000000000F03F0000000000000040"

func TestParseAmbiguousText(t *testing.T) {
	raw, err := hex.DecodeString(pointHex)
	require.NoError(t, err)

	testCases := []struct {
		desc         string
		input        string
		defaultSRID  geopb.SRID
		expectedSRID int
		expectedType geom.T
	}{
		{
			desc:         "wkt",
			input:        "POINT(1 2)",
			expectedType: (*geom.Point)(nil),
		},
		{
			desc:         "wkt with default srid",
			input:        "POINT(1 2)",
			defaultSRID:  4326,
			expectedSRID: 4326,
			expectedType: (*geom.Point)(nil),
		},
		{
			desc:         "ewkt",
			input:        "SRID=3857;POINT(1 2)",
			defaultSRID:  4326,
			expectedSRID: 3857,
			expectedType: (*geom.Point)(nil),
		},
		{
			desc:         "ewkt with zero srid keeps the default",
			input:        "SRID=0;POINT(1 2)",
			defaultSRID:  4326,
			expectedSRID: 4326,
			expectedType: (*geom.Point)(nil),
		},
		{
			desc:         "lower case ewkt prefix",
			input:        "srid=4269;POINT(1 2)",
			expectedSRID: 4269,
			expectedType: (*geom.Point)(nil),
		},
		{
			desc:         "hex ewkb",
			input:        pointHex,
			defaultSRID:  4326,
			expectedSRID: 4326,
			expectedType: (*geom.Point)(nil),
		},
		{
			desc:         "lower case hex ewkb",
			input:        "0101000020e6100000000000000000f03f0000000000000040",
			defaultSRID:  3857,
			expectedSRID: 4326,
			expectedType: (*geom.Point)(nil),
		},
		{
			desc:         "raw ewkb",
			input:        string(raw),
			expectedType: (*geom.Point)(nil),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			g, err := ParseAmbiguousText(tc.input, tc.defaultSRID)
			require.NoError(t, err)
			require.IsType(t, tc.expectedType, g)
			require.Equal(t, tc.expectedSRID, g.SRID())
			require.Equal(t, []float64{1, 2}, g.FlatCoords())
		})
	}
}

func TestParseAmbiguousTextErrors(t *testing.T) {
	testCases := []struct {
		desc  string
		input string
	}{
		{desc: "empty", input: ""},
		{desc: "missing semicolon", input: "SRID=4326POINT(1 2)"},
		{desc: "bad srid", input: "SRID=abc;POINT(1 2)"},
		{desc: "bad wkt", input: "POINT(1 2"},
		{desc: "bad hex", input: "0Z"},
		{desc: "truncated hex", input: pointHex[:20]},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := ParseAmbiguousText(tc.input, 0)
			require.Error(t, err)
		})
	}

	_, err := ParseAmbiguousText(pointHex[:20], 0)
	require.True(t, errors.Is(err, ewkb.ErrTruncated))
}

func TestParseEWKTCollectionSRID(t *testing.T) {
	g, err := ParseEWKT("SRID=4326;GEOMETRYCOLLECTION(POINT(1 2), LINESTRING(1 2, 3 4))", 0)
	require.NoError(t, err)
	gc := g.(*geom.GeometryCollection)
	require.Equal(t, 4326, gc.SRID())
	for _, member := range gc.Geoms() {
		require.Equal(t, 4326, member.SRID())
	}

	b, err := MarshalEWKB(gc)
	require.NoError(t, err)
	require.Equal(t,
		"0107000020E6100000020000000101000000000000000000F03F0000000000000040"+
			"010200000002000000000000000000F03F000000000000004000000000000008400000000000001040",
		string(EWKBToEWKBHex(b)),
	)
}

func TestMarshalEWKB(t *testing.T) {
	g, err := ParseAmbiguousText("SRID=4326;POINT Z (10 10 20)", 0)
	require.NoError(t, err)
	b, err := MarshalEWKB(g)
	require.NoError(t, err)
	require.Equal(t,
		geopb.EWKBHex("01010000A0E6100000000000000000244000000000000024400000000000003440"),
		EWKBToEWKBHex(b),
	)
}
