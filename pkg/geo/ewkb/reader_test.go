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
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/cockroachdb/ewkb/pkg/geo/geomfactory"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func mustDecodeHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestReaderFactoryMemo(t *testing.T) {
	r := NewReader()
	require.Same(t, geomfactory.Default(), r.Factory())

	p := geom.NewPointFlat(geom.XY, []float64{1, 2})
	in4326, err := Marshal(p.SetSRID(4326), NDR)
	require.NoError(t, err)

	_, err = r.Read(in4326)
	require.NoError(t, err)
	first := r.Factory()
	require.Equal(t, geopb.SRID(4326), first.SRID())

	_, err = r.Read(in4326)
	require.NoError(t, err)
	require.Same(t, first, r.Factory())

	in3857, err := Marshal(geom.NewPointFlat(geom.XY, []float64{1, 2}).SetSRID(3857), NDR)
	require.NoError(t, err)
	g, err := r.Read(in3857)
	require.NoError(t, err)
	require.Equal(t, 3857, g.SRID())
	require.NotSame(t, first, r.Factory())

	// No SRID flag means an unknown SRID, not the previous one.
	noSRID, err := Marshal(geom.NewPointFlat(geom.XY, []float64{1, 2}), NDR)
	require.NoError(t, err)
	g, err = r.Read(noSRID)
	require.NoError(t, err)
	require.Equal(t, 0, g.SRID())
	require.Equal(t, geopb.UnknownSRID, r.Factory().SRID())
}

func TestReaderKeepsFactorySettings(t *testing.T) {
	f := geomfactory.New(geomfactory.Fixed{Scale: 10}, geopb.UnknownSRID, geomfactory.PackedFloat32CoordSeqFactory{})
	r := NewReaderWithFactory(f)

	b, err := Marshal(geom.NewPointFlat(geom.XY, []float64{1.26, 2.0000001}).SetSRID(4326), NDR)
	require.NoError(t, err)
	g, err := r.Read(b)
	require.NoError(t, err)
	require.Equal(t, []float64{float64(float32(1.3)), 2}, g.FlatCoords())
	require.Equal(t, geomfactory.Fixed{Scale: 10}, r.Factory().PrecisionModel())
	require.Equal(t, geomfactory.PackedFloat32CoordSeqFactory{}, r.Factory().CoordSeqFactory())
}

func TestReaderPackedStorage(t *testing.T) {
	r := NewReaderWithFactory(
		geomfactory.New(nil, geopb.UnknownSRID, geomfactory.PackedFloat32CoordSeqFactory{}))
	ls := geom.NewLineStringFlat(geom.XYZ, []float64{0.1, 0.2, 0.3, 1.5, 2.5, 3.5})
	b, err := Marshal(ls, XDR)
	require.NoError(t, err)
	g, err := r.Read(b)
	require.NoError(t, err)
	require.Equal(t, geom.XYZ, g.Layout())
	expected := make([]float64, 0, 6)
	for _, v := range ls.FlatCoords() {
		expected = append(expected, float64(float32(v)))
	}
	require.Equal(t, expected, g.FlatCoords())
}

func TestReaderHandleOrdinates(t *testing.T) {
	xyz, err := Marshal(geom.NewLineStringFlat(geom.XYZ, []float64{1, 2, 3, 4, 5, 6}), NDR)
	require.NoError(t, err)
	xy, err := Marshal(geom.NewLineStringFlat(geom.XY, []float64{1, 2, 4, 5}), NDR)
	require.NoError(t, err)

	testCases := []struct {
		desc           string
		input          []byte
		storage        geomfactory.CoordSeqFactory
		handle         geopb.Ordinates
		expectedHandle geopb.Ordinates
		expectedLayout geom.Layout
		expectedFlat   []float64
	}{
		{
			desc:           "everything",
			input:          xyz,
			handle:         geopb.OrdinatesNone,
			expectedHandle: geopb.OrdinatesNone,
			expectedLayout: geom.XYZ,
			expectedFlat:   []float64{1, 2, 3, 4, 5, 6},
		},
		{
			desc:           "drop z",
			input:          xyz,
			handle:         geopb.OrdinatesXY,
			expectedHandle: geopb.OrdinatesXY,
			expectedLayout: geom.XY,
			expectedFlat:   []float64{1, 2, 4, 5},
		},
		{
			desc:           "z requested but absent",
			input:          xy,
			handle:         geopb.OrdinatesXYZ,
			expectedHandle: geopb.OrdinatesXYZ,
			expectedLayout: geom.XY,
			expectedFlat:   []float64{1, 2, 4, 5},
		},
		{
			desc:           "storage without z",
			input:          xyz,
			storage:        geomfactory.XYCoordSeqFactory{},
			handle:         geopb.OrdinatesXYZM,
			expectedHandle: geopb.OrdinatesXY,
			expectedLayout: geom.XY,
			expectedFlat:   []float64{1, 2, 4, 5},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			r := NewReaderWithFactory(geomfactory.New(nil, geopb.UnknownSRID, tc.storage))
			r.SetHandleOrdinates(tc.handle)
			require.Equal(t, tc.expectedHandle, r.HandleOrdinates())
			g, err := r.Read(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expectedLayout, g.Layout())
			require.Equal(t, tc.expectedFlat, g.FlatCoords())
		})
	}
}

func TestReaderRepairRings(t *testing.T) {
	open := geom.NewPolygonFlat(geom.XYM, []float64{0, 0, 7, 1, 0, 8, 1, 1, 9}, []int{9})
	b, err := Marshal(open, NDR)
	require.NoError(t, err)

	r := NewReader()
	require.False(t, r.RepairRings())
	g, err := r.Read(b)
	require.NoError(t, err)
	require.Equal(t, []int{9}, g.Ends())

	r.SetRepairRings(true)
	g, err = r.Read(b)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 7, 1, 0, 8, 1, 1, 9, 0, 0, 7}, g.FlatCoords())
	require.Equal(t, []int{12}, g.Ends())
}

func TestReaderTrailingBytes(t *testing.T) {
	b, err := Marshal(geom.NewPointFlat(geom.XY, []float64{1, 2}), NDR)
	require.NoError(t, err)
	g, err := Unmarshal(append(b, 0xFF, 0xFF))
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, g.FlatCoords())
}

func TestReaderSharedOrderedReader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(NDR)
	require.NoError(t, w.Encode(&buf, geom.NewPointFlat(geom.XY, []float64{1, 2})))
	require.NoError(t, w.Encode(&buf, geom.NewLineStringFlat(geom.XY, []float64{1, 2, 3, 4})))

	in := NewOrderedReader(bytes.NewReader(buf.Bytes()))
	r := NewReader()
	_, err := r.Decode(in)
	require.NoError(t, err)
	require.Equal(t, minPointNodeSize, in.Offset())
	_, err = r.Decode(in)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), in.Offset())

	_, err = r.Decode(in)
	require.True(t, errors.Is(err, ErrTruncated))
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	require.Equal(t, buf.Len(), decodeErr.Offset)
}

func TestReaderErrors(t *testing.T) {
	testCases := []struct {
		desc           string
		input          string
		mark           error
		expectedOffset int
		expectedType   TypeCode
	}{
		{desc: "empty input", input: "", mark: ErrTruncated},
		{
			desc:           "unknown type with srid",
			input:          "0109000020E6100000",
			mark:           ErrUnknownGeometryType,
			expectedOffset: 9,
			expectedType:   TypeCode(9),
		},
		{
			desc:           "truncated srid",
			input:          "0101000020E610",
			mark:           ErrTruncated,
			expectedOffset: 7,
			expectedType:   TypePoint,
		},
		{
			desc:           "negative ring count",
			input:          "0103000000FFFFFFFF",
			mark:           ErrMalformed,
			expectedOffset: 9,
			expectedType:   TypePolygon,
		},
		{
			desc:           "polygon with line string member",
			input:          "010600000001000000010200000000000000",
			mark:           ErrIncorrectGeometry,
			expectedOffset: 18,
			expectedType:   TypeMultiPolygon,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Unmarshal(mustDecodeHex(t, tc.input))
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrDecode))
			require.True(t, errors.Is(err, tc.mark), "%v", err)
			require.False(t, errors.Is(err, ErrUsage))

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			require.Equal(t, tc.expectedOffset, decodeErr.Offset)
			require.Equal(t, tc.expectedType, decodeErr.TypeCode())
			require.Contains(t, err.Error(), "ewkb: at offset")
		})
	}
}

func TestReadNodeRequiresOrderedReader(t *testing.T) {
	r := NewReader()
	_, err := r.readNode(bytes.NewReader([]byte{1, 1, 0, 0, 0}), nil)
	require.True(t, errors.Is(err, ErrUsage))

	var decodeErr *DecodeError
	require.False(t, errors.As(err, &decodeErr))
}
