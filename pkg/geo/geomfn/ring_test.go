// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package geomfn

import (
	"testing"

	"github.com/cockroachdb/ewkb/pkg/geo/geomfactory"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestIsRing(t *testing.T) {
	testCases := []struct {
		desc     string
		layout   geom.Layout
		flat     []float64
		expected bool
	}{
		{desc: "empty", layout: geom.XY, flat: nil, expected: true},
		{desc: "too short closed", layout: geom.XY, flat: []float64{0, 0, 1, 1, 0, 0}, expected: false},
		{desc: "closed", layout: geom.XY, flat: []float64{0, 0, 1, 0, 1, 1, 0, 0}, expected: true},
		{desc: "open", layout: geom.XY, flat: []float64{0, 0, 1, 0, 1, 1, 0, 1}, expected: false},
		{
			desc:     "closed in xy with different z",
			layout:   geom.XYZ,
			flat:     []float64{0, 0, 1, 1, 0, 2, 1, 1, 3, 0, 0, 4},
			expected: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.expected, IsRing(geomfactory.NewFlatCoordSeq(tc.layout, tc.flat)))
		})
	}
}

func TestEnsureValidRing(t *testing.T) {
	testCases := []struct {
		desc     string
		layout   geom.Layout
		flat     []float64
		expected []float64
	}{
		{
			desc:     "empty is unchanged",
			layout:   geom.XY,
			flat:     nil,
			expected: nil,
		},
		{
			desc:     "closed is unchanged",
			layout:   geom.XY,
			flat:     []float64{0, 0, 1, 0, 1, 1, 0, 0},
			expected: []float64{0, 0, 1, 0, 1, 1, 0, 0},
		},
		{
			desc:     "open gets closed",
			layout:   geom.XY,
			flat:     []float64{0, 0, 1, 0, 1, 1, 0, 1},
			expected: []float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0},
		},
		{
			desc:     "short gets padded",
			layout:   geom.XY,
			flat:     []float64{5, 6, 7, 8},
			expected: []float64{5, 6, 7, 8, 5, 6, 5, 6},
		},
		{
			desc:     "single point gets padded",
			layout:   geom.XY,
			flat:     []float64{5, 6},
			expected: []float64{5, 6, 5, 6, 5, 6, 5, 6},
		},
		{
			desc:     "open keeps z and m",
			layout:   geom.XYZM,
			flat:     []float64{0, 0, 1, 2, 1, 0, 3, 4, 1, 1, 5, 6, 0, 1, 7, 8},
			expected: []float64{0, 0, 1, 2, 1, 0, 3, 4, 1, 1, 5, 6, 0, 1, 7, 8, 0, 0, 1, 2},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			seq := geomfactory.NewFlatCoordSeq(tc.layout, tc.flat)
			ret := EnsureValidRing(geomfactory.FlatCoordSeqFactory{}, seq)
			require.Equal(t, tc.layout, ret.Layout())
			if tc.expected == nil {
				require.Equal(t, 0, ret.Len())
				return
			}
			require.Equal(t, tc.expected, ret.FlatCoords())
			require.True(t, IsRing(ret))
		})
	}
}
