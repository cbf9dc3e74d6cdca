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
	"io"
	"math"

	"github.com/cockroachdb/ewkb/pkg/geo/geomfactory"
	"github.com/cockroachdb/ewkb/pkg/geo/geomfn"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
)

// Reader decodes geometries.
//
// A Reader remembers the factory it last used, keyed by SRID, so that
// consecutive reads of the same SRID share one factory. The memo is not
// synchronized: a Reader must not be used by more than one goroutine at a
// time.
type Reader struct {
	// factory is the factory bound to the SRID of the last root node read.
	factory     *geomfactory.Factory
	handle      geopb.Ordinates
	repairRings bool
}

// NewReader returns a Reader using the default factory.
func NewReader() *Reader {
	return NewReaderWithFactory(geomfactory.Default())
}

// NewReaderWithFactory returns a Reader creating geometries with the
// precision model and coordinate storage of f. The SRID of each decoded tree
// comes from its root node; f's own SRID is only used until it differs.
func NewReaderWithFactory(f *geomfactory.Factory) *Reader {
	if f == nil {
		f = geomfactory.Default()
	}
	return &Reader{factory: f}
}

// SetHandleOrdinates restricts the ordinates stored in decoded geometries.
// OrdinatesNone stores everything the input carries that the coordinate
// storage supports. Any other set is extended with X and Y and restricted to
// what the storage supports.
func (r *Reader) SetHandleOrdinates(o geopb.Ordinates) {
	r.handle = geopb.NormalizeHandleOrdinates(o, r.factory.CoordSeqFactory().Ordinates())
}

// HandleOrdinates returns the normalized handle ordinates setting.
func (r *Reader) HandleOrdinates() geopb.Ordinates {
	return r.handle
}

// SetRepairRings sets whether line strings and polygon rings which are not
// closed are closed after decoding.
func (r *Reader) SetRepairRings(repair bool) {
	r.repairRings = repair
}

// RepairRings returns whether rings are repaired.
func (r *Reader) RepairRings() bool {
	return r.repairRings
}

// Factory returns the factory used for the last decoded tree.
func (r *Reader) Factory() *geomfactory.Factory {
	return r.factory
}

// Read decodes one geometry from b. Bytes after the geometry are ignored.
func (r *Reader) Read(b []byte) (geom.T, error) {
	return r.Decode(bytes.NewReader(b))
}

// Decode decodes one geometry from src, consuming exactly its bytes. Errors
// caused by the input are marked with ErrDecode and carry a *DecodeError.
func (r *Reader) Decode(src io.Reader) (geom.T, error) {
	in, ok := src.(*OrderedReader)
	if !ok {
		in = NewOrderedReader(src)
	}
	g, err := r.readNode(in, nil)
	if err != nil {
		if errors.Is(err, ErrUsage) {
			return nil, err
		}
		return nil, errors.Mark(err, ErrDecode)
	}
	return g, nil
}

// Unmarshal decodes b with a new default Reader.
func Unmarshal(b []byte) (geom.T, error) {
	return NewReader().Read(b)
}

// nodeHeader is the decoded header of one node.
type nodeHeader struct {
	word uint32
	code TypeCode
	// wire is the ordinate set present in the input.
	wire geopb.Ordinates
	// ords is the ordinate set to store.
	ords geopb.Ordinates
}

// readNode decodes one node and its children. parent is the factory of the
// enclosing node, or nil for the root. src must be an *OrderedReader since
// nodes switch its byte order.
func (r *Reader) readNode(src io.Reader, parent *geomfactory.Factory) (geom.T, error) {
	in, ok := src.(*OrderedReader)
	if !ok {
		return nil, usageErrorf("decoding a node requires an *OrderedReader, got %T", src)
	}
	var h nodeHeader
	g, err := r.readNodeInto(in, parent, &h)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return nil, err
		}
		return nil, &DecodeError{Offset: in.Offset(), TypeWord: h.word, Err: err}
	}
	return g, nil
}

func (r *Reader) readNodeInto(
	in *OrderedReader, parent *geomfactory.Factory, h *nodeHeader,
) (geom.T, error) {
	marker, err := in.ReadByte()
	if err != nil {
		return nil, err
	}
	order := ByteOrder(marker)
	if !order.Valid() {
		return nil, malformedErrorf("invalid byte order marker %d", marker)
	}
	in.SetByteOrder(order)

	if h.word, err = in.ReadUint32(); err != nil {
		return nil, err
	}
	h.code = TypeCode(h.word & typeCodeMask)
	h.wire = geopb.OrdinatesXY
	if h.word&flagZ != 0 {
		h.wire |= geopb.OrdinatesZ
	}
	if h.word&flagM != 0 {
		h.wire |= geopb.OrdinatesM
	}

	srid := geopb.UnknownSRID
	if h.word&flagSRID != 0 {
		v, err := in.ReadInt32()
		if err != nil {
			return nil, err
		}
		srid = geopb.SRID(v)
	}
	f := parent
	if f == nil {
		// Only the root's SRID counts. Sub-nodes share the root's factory and
		// an SRID they carry is ignored.
		r.factory = r.factory.WithSRID(srid)
		f = r.factory
	}

	if !h.code.Valid() {
		return nil, errors.Mark(
			errors.Newf("unknown geometry type %d", uint32(h.code)), ErrUnknownGeometryType)
	}
	h.ords = geopb.EffectiveOrdinates(h.wire, r.handle)
	return nodeCodecs[h.code].read(r, in, f, *h)
}

// layoutOf returns the layout of geometries storing ords with f's storage.
func layoutOf(f *geomfactory.Factory, ords geopb.Ordinates) geom.Layout {
	return f.CoordSeqFactory().Create(0, ords).Layout()
}

// readTuples reads n tuples. Every ordinate present in the input is
// consumed; only the ones in h.ords are stored.
func readTuples(
	in *OrderedReader, f *geomfactory.Factory, h nodeHeader, n int,
) (geomfactory.CoordSeq, error) {
	seq := f.CoordSeqFactory().Create(n, h.ords)
	pm := f.PrecisionModel()
	hasZ := h.wire.HasOrdinate(geopb.OrdinateZ)
	hasM := h.wire.HasOrdinate(geopb.OrdinateM)
	for i := 0; i < n; i++ {
		x, err := in.ReadFloat64()
		if err != nil {
			return nil, err
		}
		y, err := in.ReadFloat64()
		if err != nil {
			return nil, err
		}
		seq.SetOrdinate(i, geopb.OrdinateX, pm.MakePrecise(x))
		seq.SetOrdinate(i, geopb.OrdinateY, pm.MakePrecise(y))
		if hasZ {
			z, err := in.ReadFloat64()
			if err != nil {
				return nil, err
			}
			if h.ords.HasOrdinate(geopb.OrdinateZ) {
				seq.SetOrdinate(i, geopb.OrdinateZ, z)
			}
		}
		if hasM {
			m, err := in.ReadFloat64()
			if err != nil {
				return nil, err
			}
			if h.ords.HasOrdinate(geopb.OrdinateM) {
				seq.SetOrdinate(i, geopb.OrdinateM, m)
			}
		}
	}
	return seq, nil
}

// readSeq reads a counted sequence of tuples, repairing it into a ring if
// requested.
func (r *Reader) readSeq(
	in *OrderedReader, f *geomfactory.Factory, h nodeHeader,
) (geomfactory.CoordSeq, error) {
	n, err := in.readCount(h.wire.Dimension() * sizeOrdinate)
	if err != nil {
		return nil, err
	}
	seq, err := readTuples(in, f, h, n)
	if err != nil {
		return nil, err
	}
	if r.repairRings {
		seq = geomfn.EnsureValidRing(f.CoordSeqFactory(), seq)
	}
	return seq, nil
}

func readPoint(
	_ *Reader, in *OrderedReader, f *geomfactory.Factory, h nodeHeader,
) (geom.T, error) {
	seq, err := readTuples(in, f, h, 1)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(seq.Ordinate(0, geopb.OrdinateX)) && math.IsNaN(seq.Ordinate(0, geopb.OrdinateY)) {
		seq = f.CoordSeqFactory().Create(0, h.ords)
	}
	return f.Point(seq), nil
}

func readLineString(
	r *Reader, in *OrderedReader, f *geomfactory.Factory, h nodeHeader,
) (geom.T, error) {
	seq, err := r.readSeq(in, f, h)
	if err != nil {
		return nil, err
	}
	return f.LineString(seq), nil
}

func readPolygon(
	r *Reader, in *OrderedReader, f *geomfactory.Factory, h nodeHeader,
) (geom.T, error) {
	n, err := in.readCount(sizeCount)
	if err != nil {
		return nil, err
	}
	rings := make([]geomfactory.CoordSeq, 0, n)
	for i := 0; i < n; i++ {
		ring, err := r.readSeq(in, f, h)
		if err != nil {
			return nil, errors.Wrapf(err, "ring %d", i)
		}
		rings = append(rings, ring)
	}
	p, err := f.Polygon(layoutOf(f, h.ords), rings)
	if err != nil {
		return nil, errors.Mark(err, ErrMalformed)
	}
	return p, nil
}

// readMembers reads the member count and the members of a multi geometry or
// collection. Members are decoded with the parent's factory.
func (r *Reader) readMembers(
	in *OrderedReader, f *geomfactory.Factory, minSize int, fn func(i int, g geom.T) error,
) error {
	n, err := in.readCount(minSize)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		g, err := r.readNode(in, f)
		if err != nil {
			return err
		}
		if err := fn(i, g); err != nil {
			return err
		}
	}
	return nil
}

func incorrectGeometryError(i int, got geom.T, want TypeCode) error {
	code, _ := typeCodeOf(got)
	return errors.Mark(
		errors.Newf("member %d is a %s, expected a %s", i, code, want), ErrIncorrectGeometry)
}

func readMultiPoint(
	r *Reader, in *OrderedReader, f *geomfactory.Factory, h nodeHeader,
) (geom.T, error) {
	var points []*geom.Point
	if err := r.readMembers(in, f, minPointNodeSize, func(i int, g geom.T) error {
		p, ok := g.(*geom.Point)
		if !ok {
			return incorrectGeometryError(i, g, TypePoint)
		}
		points = append(points, p)
		return nil
	}); err != nil {
		return nil, err
	}
	mp, err := f.MultiPoint(layoutOf(f, h.ords), points)
	if err != nil {
		return nil, errors.Mark(err, ErrMalformed)
	}
	return mp, nil
}

func readMultiLineString(
	r *Reader, in *OrderedReader, f *geomfactory.Factory, h nodeHeader,
) (geom.T, error) {
	var lineStrings []*geom.LineString
	if err := r.readMembers(in, f, minNodeSize, func(i int, g geom.T) error {
		ls, ok := g.(*geom.LineString)
		if !ok {
			return incorrectGeometryError(i, g, TypeLineString)
		}
		lineStrings = append(lineStrings, ls)
		return nil
	}); err != nil {
		return nil, err
	}
	mls, err := f.MultiLineString(layoutOf(f, h.ords), lineStrings)
	if err != nil {
		return nil, errors.Mark(err, ErrMalformed)
	}
	return mls, nil
}

func readMultiPolygon(
	r *Reader, in *OrderedReader, f *geomfactory.Factory, h nodeHeader,
) (geom.T, error) {
	var polygons []*geom.Polygon
	if err := r.readMembers(in, f, minNodeSize, func(i int, g geom.T) error {
		p, ok := g.(*geom.Polygon)
		if !ok {
			return incorrectGeometryError(i, g, TypePolygon)
		}
		polygons = append(polygons, p)
		return nil
	}); err != nil {
		return nil, err
	}
	mp, err := f.MultiPolygon(layoutOf(f, h.ords), polygons)
	if err != nil {
		return nil, errors.Mark(err, ErrMalformed)
	}
	return mp, nil
}

func readGeometryCollection(
	r *Reader, in *OrderedReader, f *geomfactory.Factory, h nodeHeader,
) (geom.T, error) {
	var geoms []geom.T
	if err := r.readMembers(in, f, minNodeSize, func(_ int, g geom.T) error {
		geoms = append(geoms, g)
		return nil
	}); err != nil {
		return nil, err
	}
	gc, err := f.GeometryCollection(layoutOf(f, h.ords), geoms)
	if err != nil {
		return nil, errors.Mark(err, ErrMalformed)
	}
	return gc, nil
}
