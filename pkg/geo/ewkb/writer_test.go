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
	"encoding/binary"
	"math"
	"testing"

	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// unknownGeometry is a geom.T the codec has no encoding for.
type unknownGeometry struct {
	*geom.Point
}

func TestWriterErrors(t *testing.T) {
	nilMember := geom.NewGeometryCollection()
	require.NoError(t, nilMember.Push((*geom.Point)(nil)))

	testCases := []struct {
		desc  string
		order ByteOrder
		g     geom.T
		check func(t *testing.T, err error)
	}{
		{
			desc:  "nil geometry",
			order: NDR,
			g:     nil,
			check: func(t *testing.T, err error) { require.True(t, errors.Is(err, ErrNilGeometry)) },
		},
		{
			desc:  "typed nil geometry",
			order: NDR,
			g:     (*geom.LineString)(nil),
			check: func(t *testing.T, err error) { require.True(t, errors.Is(err, ErrNilGeometry)) },
		},
		{
			desc:  "nil member",
			order: XDR,
			g:     nilMember,
			check: func(t *testing.T, err error) { require.True(t, errors.Is(err, ErrNilGeometry)) },
		},
		{
			desc:  "unknown geometry type",
			order: NDR,
			g:     unknownGeometry{geom.NewPointFlat(geom.XY, []float64{1, 2})},
			check: func(t *testing.T, err error) { require.True(t, errors.HasAssertionFailure(err)) },
		},
		{
			desc:  "invalid byte order",
			order: ByteOrder(2),
			g:     geom.NewPointFlat(geom.XY, []float64{1, 2}),
			check: func(t *testing.T, err error) { require.True(t, errors.Is(err, ErrUsage)) },
		},
		{
			desc:  "srid out of range",
			order: NDR,
			g:     geom.NewPointFlat(geom.XY, []float64{1, 2}).SetSRID(math.MaxInt32 + 1),
			check: func(t *testing.T, err error) { require.Error(t, err) },
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			w := NewWriter(tc.order)
			_, err := w.Write(tc.g)
			require.Error(t, err)
			tc.check(t, err)
			require.False(t, errors.Is(err, ErrDecode))

			_, err = w.Size(tc.g)
			require.Error(t, err)
		})
	}
}

func TestWriterSRIDScope(t *testing.T) {
	gc := geom.NewGeometryCollection()
	require.NoError(t, gc.Push(
		geom.NewPointFlat(geom.XY, []float64{1, 2}),
		geom.NewLineStringFlat(geom.XY, []float64{1, 2, 3, 4}),
	))
	gc.SetSRID(4326)

	b, err := Marshal(gc, NDR)
	require.NoError(t, err)

	var srid [4]byte
	binary.LittleEndian.PutUint32(srid[:], 4326)
	require.Equal(t, 1, bytes.Count(b, srid[:]))
	require.Equal(t, flagSRID, binary.LittleEndian.Uint32(b[1:5])&flagSRID)

	g, err := Unmarshal(b)
	require.NoError(t, err)
	decoded := g.(*geom.GeometryCollection)
	require.Equal(t, 4326, decoded.SRID())
	for i := 0; i < decoded.NumGeoms(); i++ {
		require.Equal(t, 4326, decoded.Geom(i).SRID())
	}

	// A negative SRID is unknown and not written.
	b, err = Marshal(geom.NewPointFlat(geom.XY, []float64{1, 2}).SetSRID(-1), NDR)
	require.NoError(t, err)
	require.Len(t, b, minPointNodeSize)
	require.Zero(t, binary.LittleEndian.Uint32(b[1:5])&flagSRID)
}

func TestWriterHandleOrdinates(t *testing.T) {
	p := geom.NewPointFlat(geom.XYZM, []float64{1, 2, 3, 4})
	testCases := []struct {
		desc     string
		handle   geopb.Ordinates
		expected []float64
		flags    uint32
	}{
		{desc: "none writes everything", handle: geopb.OrdinatesNone, expected: []float64{1, 2, 3, 4}, flags: flagZ | flagM},
		{desc: "xy", handle: geopb.OrdinatesXY, expected: []float64{1, 2}},
		{desc: "z implies xy", handle: geopb.OrdinatesZ, expected: []float64{1, 2, 3}, flags: flagZ},
		{desc: "xym", handle: geopb.OrdinatesXYM, expected: []float64{1, 2, 4}, flags: flagM},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			w := NewWriter(NDR)
			w.SetHandleOrdinates(tc.handle)
			b, err := w.Write(p)
			require.NoError(t, err)
			require.Equal(t, uint32(TypePoint)|tc.flags, binary.LittleEndian.Uint32(b[1:5]))
			require.Len(t, b, sizeHeader+len(tc.expected)*sizeOrdinate)
			for i, v := range tc.expected {
				off := sizeHeader + i*sizeOrdinate
				require.Equal(t, v, math.Float64frombits(binary.LittleEndian.Uint64(b[off:])))
			}
		})
	}
}

func TestWriterCollectionOrdinates(t *testing.T) {
	t.Run("first non-empty member decides", func(t *testing.T) {
		gc := geom.NewGeometryCollection()
		require.NoError(t, gc.Push(
			geom.NewPointEmpty(geom.XY),
			geom.NewPointFlat(geom.XYZ, []float64{1, 2, 3}),
		))
		b, err := Marshal(gc, NDR)
		require.NoError(t, err)
		require.Equal(t, uint32(TypeGeometryCollection)|flagZ, binary.LittleEndian.Uint32(b[1:5]))

		// The empty XY member is written with three sentinel ordinates.
		size := sizeHeader + sizeCount + 2*(sizeHeader+3*sizeOrdinate)
		require.Len(t, b, size)
		emptyOff := sizeHeader + sizeCount + sizeHeader
		for i := 0; i < 3; i++ {
			bits := binary.LittleEndian.Uint64(b[emptyOff+i*sizeOrdinate:])
			require.Equal(t, emptyPointBits, bits)
		}
	})

	t.Run("missing ordinates are filled with the sentinel", func(t *testing.T) {
		gc := geom.NewGeometryCollection()
		require.NoError(t, gc.Push(
			geom.NewPointFlat(geom.XYZ, []float64{1, 2, 3}),
			geom.NewPointFlat(geom.XY, []float64{4, 5}),
		))
		b, err := Marshal(gc, NDR)
		require.NoError(t, err)
		last := b[len(b)-sizeOrdinate:]
		require.Equal(t, emptyPointBits, binary.LittleEndian.Uint64(last))

		g, err := Unmarshal(b)
		require.NoError(t, err)
		second := g.(*geom.GeometryCollection).Geom(1)
		require.Equal(t, geom.XYZ, second.Layout())
		require.Equal(t, 4.0, second.FlatCoords()[0])
		require.True(t, math.IsNaN(second.FlatCoords()[2]))
	})

	t.Run("empty collection keeps its layout", func(t *testing.T) {
		gc := geom.NewGeometryCollection()
		require.NoError(t, gc.SetLayout(geom.XYM))
		b, err := Marshal(gc, XDR)
		require.NoError(t, err)
		require.Equal(t, []byte{0, 0x40, 0, 0, 7, 0, 0, 0, 0}, []byte(b))

		g, err := Unmarshal(b)
		require.NoError(t, err)
		require.Equal(t, geom.XYM, g.Layout())
	})
}

func TestWriterEncode(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(XDR)
	require.Equal(t, XDR, w.ByteOrder())
	p := geom.NewPointFlat(geom.XY, []float64{1, 2})
	require.NoError(t, w.Encode(&buf, p))
	require.NoError(t, w.Encode(&buf, p))
	require.Equal(t, 2*minPointNodeSize, buf.Len())

	r := NewReader()
	for i := 0; i < 2; i++ {
		g, err := r.Decode(&buf)
		require.NoError(t, err)
		require.Equal(t, []float64{1, 2}, g.FlatCoords())
	}
	require.Zero(t, buf.Len())
}

func TestWriterLinearRing(t *testing.T) {
	ring := geom.NewLinearRingFlat(geom.XY, []float64{0, 0, 1, 0, 1, 1, 0, 0})
	ls := geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 0, 1, 1, 0, 0})
	fromRing, err := Marshal(ring, NDR)
	require.NoError(t, err)
	fromLineString, err := Marshal(ls, NDR)
	require.NoError(t, err)
	require.Equal(t, fromLineString, fromRing)
}
