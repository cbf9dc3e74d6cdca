// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package geomfactory

import (
	"math"

	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/twpayne/go-geom"
)

// CoordSeq is an ordered list of coordinate tuples sharing one ordinate set.
// Callers only use the accessors; how ordinates are physically stored is up
// to the implementation.
type CoordSeq interface {
	// Len is the number of tuples.
	Len() int
	// Ordinates is the set of ordinates every tuple carries.
	Ordinates() geopb.Ordinates
	// Ordinate returns one ordinate of tuple i, or NaN if the sequence does
	// not store that ordinate.
	Ordinate(i int, ord geopb.Ordinate) float64
	// SetOrdinate sets one ordinate of tuple i. Ordinates the sequence does
	// not store are dropped.
	SetOrdinate(i int, ord geopb.Ordinate, v float64)
	// Layout is the go-geom layout matching Ordinates.
	Layout() geom.Layout
	// FlatCoords returns the tuples as go-geom flat coordinates.
	FlatCoords() []float64
}

// CoordSeqFactory is a coordinate storage strategy.
type CoordSeqFactory interface {
	// Create allocates a sequence of n tuples storing ords, restricted to the
	// ordinates the strategy supports. OrdinatesNone creates an XY sequence.
	Create(n int, ords geopb.Ordinates) CoordSeq
	// Ordinates is the set of ordinates the strategy can store.
	Ordinates() geopb.Ordinates
}

// ordinateIndex returns the offset of ord inside a tuple of the given layout,
// or -1 if the layout does not store it.
func ordinateIndex(layout geom.Layout, ord geopb.Ordinate) int {
	switch ord {
	case geopb.OrdinateX:
		return 0
	case geopb.OrdinateY:
		return 1
	case geopb.OrdinateZ:
		return layout.ZIndex()
	case geopb.OrdinateM:
		return layout.MIndex()
	default:
		return -1
	}
}

func layoutFor(ords, supported geopb.Ordinates) geom.Layout {
	if ords == geopb.OrdinatesNone {
		return geom.XY
	}
	return ((ords & supported) | geopb.OrdinatesXY).Layout()
}

// FlatCoordSeq stores tuples as packed float64 values, the go-geom native
// representation.
type FlatCoordSeq struct {
	layout geom.Layout
	stride int
	flat   []float64
}

var _ CoordSeq = (*FlatCoordSeq)(nil)

// NewFlatCoordSeq wraps existing go-geom flat coordinates. The slice is not
// copied.
func NewFlatCoordSeq(layout geom.Layout, flat []float64) *FlatCoordSeq {
	if layout == geom.NoLayout {
		layout = geom.XY
	}
	return &FlatCoordSeq{layout: layout, stride: layout.Stride(), flat: flat}
}

// Len implements CoordSeq.
func (s *FlatCoordSeq) Len() int {
	return len(s.flat) / s.stride
}

// Ordinates implements CoordSeq.
func (s *FlatCoordSeq) Ordinates() geopb.Ordinates {
	return geopb.OrdinatesFromLayout(s.layout)
}

// Ordinate implements CoordSeq.
func (s *FlatCoordSeq) Ordinate(i int, ord geopb.Ordinate) float64 {
	idx := ordinateIndex(s.layout, ord)
	if idx < 0 {
		return math.NaN()
	}
	return s.flat[i*s.stride+idx]
}

// SetOrdinate implements CoordSeq.
func (s *FlatCoordSeq) SetOrdinate(i int, ord geopb.Ordinate, v float64) {
	if idx := ordinateIndex(s.layout, ord); idx >= 0 {
		s.flat[i*s.stride+idx] = v
	}
}

// Layout implements CoordSeq.
func (s *FlatCoordSeq) Layout() geom.Layout {
	return s.layout
}

// FlatCoords implements CoordSeq.
func (s *FlatCoordSeq) FlatCoords() []float64 {
	return s.flat
}

// FlatCoordSeqFactory creates FlatCoordSeqs. It supports every ordinate.
type FlatCoordSeqFactory struct{}

var _ CoordSeqFactory = FlatCoordSeqFactory{}

// Create implements CoordSeqFactory.
func (FlatCoordSeqFactory) Create(n int, ords geopb.Ordinates) CoordSeq {
	layout := layoutFor(ords, geopb.OrdinatesXYZM)
	return NewFlatCoordSeq(layout, make([]float64, n*layout.Stride()))
}

// Ordinates implements CoordSeqFactory.
func (FlatCoordSeqFactory) Ordinates() geopb.Ordinates {
	return geopb.OrdinatesXYZM
}

// PackedFloat32CoordSeq stores tuples as packed float32 values, halving the
// memory of a sequence at the cost of precision.
type PackedFloat32CoordSeq struct {
	layout geom.Layout
	stride int
	packed []float32
}

var _ CoordSeq = (*PackedFloat32CoordSeq)(nil)

// Len implements CoordSeq.
func (s *PackedFloat32CoordSeq) Len() int {
	return len(s.packed) / s.stride
}

// Ordinates implements CoordSeq.
func (s *PackedFloat32CoordSeq) Ordinates() geopb.Ordinates {
	return geopb.OrdinatesFromLayout(s.layout)
}

// Ordinate implements CoordSeq.
func (s *PackedFloat32CoordSeq) Ordinate(i int, ord geopb.Ordinate) float64 {
	idx := ordinateIndex(s.layout, ord)
	if idx < 0 {
		return math.NaN()
	}
	return float64(s.packed[i*s.stride+idx])
}

// SetOrdinate implements CoordSeq.
func (s *PackedFloat32CoordSeq) SetOrdinate(i int, ord geopb.Ordinate, v float64) {
	if idx := ordinateIndex(s.layout, ord); idx >= 0 {
		s.packed[i*s.stride+idx] = float32(v)
	}
}

// Layout implements CoordSeq.
func (s *PackedFloat32CoordSeq) Layout() geom.Layout {
	return s.layout
}

// FlatCoords implements CoordSeq. The values are widened into a new slice.
func (s *PackedFloat32CoordSeq) FlatCoords() []float64 {
	flat := make([]float64, len(s.packed))
	for i, v := range s.packed {
		flat[i] = float64(v)
	}
	return flat
}

// PackedFloat32CoordSeqFactory creates PackedFloat32CoordSeqs. It supports
// every ordinate.
type PackedFloat32CoordSeqFactory struct{}

var _ CoordSeqFactory = PackedFloat32CoordSeqFactory{}

// Create implements CoordSeqFactory.
func (PackedFloat32CoordSeqFactory) Create(n int, ords geopb.Ordinates) CoordSeq {
	layout := layoutFor(ords, geopb.OrdinatesXYZM)
	return &PackedFloat32CoordSeq{
		layout: layout,
		stride: layout.Stride(),
		packed: make([]float32, n*layout.Stride()),
	}
}

// Ordinates implements CoordSeqFactory.
func (PackedFloat32CoordSeqFactory) Ordinates() geopb.Ordinates {
	return geopb.OrdinatesXYZM
}

// XYCoordSeqFactory stores only X and Y, whatever is requested. It models a
// two dimensional storage backend.
type XYCoordSeqFactory struct{}

var _ CoordSeqFactory = XYCoordSeqFactory{}

// Create implements CoordSeqFactory.
func (XYCoordSeqFactory) Create(n int, _ geopb.Ordinates) CoordSeq {
	return NewFlatCoordSeq(geom.XY, make([]float64, n*2))
}

// Ordinates implements CoordSeqFactory.
func (XYCoordSeqFactory) Ordinates() geopb.Ordinates {
	return geopb.OrdinatesXY
}
