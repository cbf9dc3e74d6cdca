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
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
)

// nodeSize returns the encoded size of g including its header. Only the root
// reserves space for an SRID.
func (s *writeState) nodeSize(g geom.T, root bool) (int, error) {
	code, err := typeCodeOf(g)
	if err != nil {
		return 0, err
	}
	n := sizeHeader
	if root && s.srid.IsSet() {
		n += sizeSRID
	}
	payload, err := nodeCodecs[code].size(s, g)
	if err != nil {
		return 0, err
	}
	return n + payload, nil
}

// tupleSize is the size of one coordinate tuple.
func (s *writeState) tupleSize() int {
	return s.ords.Dimension() * sizeOrdinate
}

// seqSize is the size of a counted sequence of tuples.
func (s *writeState) seqSize(layout geom.Layout, flat []float64) int {
	return sizeCount + numTuples(layout, flat)*s.tupleSize()
}

// sizePoint reserves one tuple; an empty point is written as a tuple of
// sentinel values.
func sizePoint(s *writeState, _ geom.T) (int, error) {
	return s.tupleSize(), nil
}

func sizeLineString(s *writeState, g geom.T) (int, error) {
	return s.seqSize(g.Layout(), g.FlatCoords()), nil
}

func sizePolygon(s *writeState, g geom.T) (int, error) {
	p := g.(*geom.Polygon)
	flat := p.FlatCoords()
	n := sizeCount
	start := 0
	for _, end := range p.Ends() {
		n += s.seqSize(p.Layout(), flat[start:end])
		start = end
	}
	return n, nil
}

func sizeMulti(s *writeState, g geom.T) (int, error) {
	count, member := members(g)
	n := sizeCount
	for i := 0; i < count; i++ {
		m, err := s.nodeSize(member(i), false)
		if err != nil {
			return 0, errors.Wrapf(err, "member %d", i)
		}
		n += m
	}
	return n, nil
}
