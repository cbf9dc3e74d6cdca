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
	"io"
	"math"

	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
)

// Writer encodes geometries. The byte order is fixed at construction. A
// configured Writer holds no mutable state and may be shared between
// goroutines.
type Writer struct {
	order  ByteOrder
	handle geopb.Ordinates
}

// NewWriter returns a Writer emitting the given byte order and every
// ordinate the geometries carry.
func NewWriter(order ByteOrder) *Writer {
	return &Writer{order: order}
}

// ByteOrder returns the order the writer emits.
func (w *Writer) ByteOrder() ByteOrder {
	return w.order
}

// SetHandleOrdinates restricts the ordinates written. OrdinatesNone writes
// whatever the geometry has; any other set always includes X and Y.
func (w *Writer) SetHandleOrdinates(o geopb.Ordinates) {
	w.handle = geopb.NormalizeHandleOrdinates(o, geopb.OrdinatesXYZM)
}

// HandleOrdinates returns the normalized handle ordinates setting.
func (w *Writer) HandleOrdinates() geopb.Ordinates {
	return w.handle
}

// writeState is the state of one Size or Write call.
type writeState struct {
	emitter
	marker byte
	// ords is the ordinate set written for every tuple of the tree.
	ords geopb.Ordinates
	// srid is the root SRID.
	srid geopb.SRID
}

func (w *Writer) newWriteState(g geom.T) (*writeState, error) {
	if !w.order.Valid() {
		return nil, usageErrorf("invalid byte order %d", uint8(w.order))
	}
	available, _, err := sampleOrdinates(g)
	if err != nil {
		return nil, err
	}
	srid := g.SRID()
	if srid > math.MaxInt32 || srid < math.MinInt32 {
		return nil, errors.Newf("SRID %d does not fit in 32 bits", srid)
	}
	return &writeState{
		emitter: emitter{order: w.order.Binary()},
		marker:  byte(w.order),
		ords:    geopb.EffectiveOrdinates(available, w.handle),
		srid:    geopb.SRID(srid),
	}, nil
}

// sampleOrdinates returns the ordinates to write for g. A collection takes
// them from its first non-empty member, searched depth first, or failing
// that from its first member, or from its own layout when it has no members.
// The boolean reports whether a non-empty geometry was found.
func sampleOrdinates(g geom.T) (geopb.Ordinates, bool, error) {
	code, err := typeCodeOf(g)
	if err != nil {
		return 0, false, err
	}
	if code != TypeGeometryCollection {
		return geopb.OrdinatesFromLayout(g.Layout()), !g.Empty(), nil
	}
	gc := g.(*geom.GeometryCollection)
	if gc.NumGeoms() == 0 {
		return geopb.OrdinatesFromLayout(gc.Layout()), false, nil
	}
	for i := 0; i < gc.NumGeoms(); i++ {
		ords, ok, err := sampleOrdinates(gc.Geom(i))
		if err != nil || ok {
			return ords, ok, err
		}
	}
	return sampleOrdinates(gc.Geom(0))
}

// Size returns the exact number of bytes Write produces for g.
func (w *Writer) Size(g geom.T) (int, error) {
	s, err := w.newWriteState(g)
	if err != nil {
		return 0, err
	}
	return s.nodeSize(g, true)
}

// Write encodes g into a newly allocated buffer of exactly the encoded
// size.
func (w *Writer) Write(g geom.T) (geopb.EWKB, error) {
	s, err := w.newWriteState(g)
	if err != nil {
		return nil, err
	}
	n, err := s.nodeSize(g, true)
	if err != nil {
		return nil, err
	}
	s.buf = make([]byte, 0, n)
	if err := s.emitNode(g, true); err != nil {
		return nil, err
	}
	if len(s.buf) != n {
		return nil, errors.AssertionFailedf("encoded %d bytes, expected %d", len(s.buf), n)
	}
	return geopb.EWKB(s.buf), nil
}

// Encode writes the encoding of g to out.
func (w *Writer) Encode(out io.Writer, g geom.T) error {
	b, err := w.Write(g)
	if err != nil {
		return err
	}
	if _, err := out.Write(b); err != nil {
		return errors.Wrap(err, "writing ewkb")
	}
	return nil
}

// Marshal encodes g in the given byte order with every ordinate it carries.
func Marshal(g geom.T, order ByteOrder) (geopb.EWKB, error) {
	return NewWriter(order).Write(g)
}

// emitNode appends the header and payload of g. The SRID is only written
// for the root.
func (s *writeState) emitNode(g geom.T, root bool) error {
	code, err := typeCodeOf(g)
	if err != nil {
		return err
	}
	word := uint32(code)
	if s.ords.HasOrdinate(geopb.OrdinateZ) {
		word |= flagZ
	}
	if s.ords.HasOrdinate(geopb.OrdinateM) {
		word |= flagM
	}
	withSRID := root && s.srid.IsSet()
	if withSRID {
		word |= flagSRID
	}
	s.putByte(s.marker)
	s.putUint32(word)
	if withSRID {
		s.putInt32(int32(s.srid))
	}
	return nodeCodecs[code].emit(s, g)
}

// emitTuples appends the tuples of flat. An ordinate that is written but
// missing from layout is filled with the empty point sentinel.
func (s *writeState) emitTuples(layout geom.Layout, flat []float64) {
	stride := layout.Stride()
	zIdx, mIdx := layout.ZIndex(), layout.MIndex()
	hasZ := s.ords.HasOrdinate(geopb.OrdinateZ)
	hasM := s.ords.HasOrdinate(geopb.OrdinateM)
	for i, n := 0, numTuples(layout, flat); i < n; i++ {
		tuple := flat[i*stride : (i+1)*stride]
		s.putFloat64(tuple[0])
		s.putFloat64(tuple[1])
		if hasZ {
			s.putOrdinate(tuple, zIdx)
		}
		if hasM {
			s.putOrdinate(tuple, mIdx)
		}
	}
}

func (s *writeState) putOrdinate(tuple []float64, idx int) {
	if idx < 0 {
		s.putFloat64Bits(emptyPointBits)
		return
	}
	s.putFloat64(tuple[idx])
}

func (s *writeState) emitSeq(layout geom.Layout, flat []float64) {
	s.putInt32(int32(numTuples(layout, flat)))
	s.emitTuples(layout, flat)
}

func emitPoint(s *writeState, g geom.T) error {
	if g.Empty() {
		for i := s.ords.Dimension(); i > 0; i-- {
			s.putFloat64Bits(emptyPointBits)
		}
		return nil
	}
	layout := g.Layout()
	s.emitTuples(layout, g.FlatCoords()[:layout.Stride()])
	return nil
}

func emitLineString(s *writeState, g geom.T) error {
	s.emitSeq(g.Layout(), g.FlatCoords())
	return nil
}

func emitPolygon(s *writeState, g geom.T) error {
	p := g.(*geom.Polygon)
	flat := p.FlatCoords()
	ends := p.Ends()
	s.putInt32(int32(len(ends)))
	start := 0
	for _, end := range ends {
		s.emitSeq(p.Layout(), flat[start:end])
		start = end
	}
	return nil
}

func emitMulti(s *writeState, g geom.T) error {
	count, member := members(g)
	s.putInt32(int32(count))
	for i := 0; i < count; i++ {
		if err := s.emitNode(member(i), false); err != nil {
			return errors.Wrapf(err, "member %d", i)
		}
	}
	return nil
}
