// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package geomfn contains the geometry operations the codec delegates to.
package geomfn

import (
	"github.com/cockroachdb/ewkb/pkg/geo/geomfactory"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
)

// minRingPoints is the smallest number of points forming a valid ring.
const minRingPoints = 4

// IsRing returns whether seq is usable as a closed ring: it is empty, or it
// has at least four points and its first and last points are equal in X and
// Y.
func IsRing(seq geomfactory.CoordSeq) bool {
	n := seq.Len()
	if n == 0 {
		return true
	}
	if n < minRingPoints {
		return false
	}
	return sameXY(seq, 0, seq, n-1)
}

// EnsureValidRing returns seq if it is already a ring. Otherwise it returns a
// copy created by f that is closed by appending the first point, or padded
// with copies of the first point up to four points if seq is too short.
func EnsureValidRing(f geomfactory.CoordSeqFactory, seq geomfactory.CoordSeq) geomfactory.CoordSeq {
	if IsRing(seq) {
		return seq
	}
	n := seq.Len()
	size := n + 1
	if n < minRingPoints {
		size = minRingPoints
	}
	ords := seq.Ordinates()
	ret := f.Create(size, ords)
	for i := 0; i < size; i++ {
		src := i
		if i >= n {
			src = 0
		}
		copyOrdinates(ret, i, seq, src, ords)
	}
	return ret
}

func sameXY(a geomfactory.CoordSeq, i int, b geomfactory.CoordSeq, j int) bool {
	return a.Ordinate(i, geopb.OrdinateX) == b.Ordinate(j, geopb.OrdinateX) &&
		a.Ordinate(i, geopb.OrdinateY) == b.Ordinate(j, geopb.OrdinateY)
}

func copyOrdinates(
	dst geomfactory.CoordSeq, i int, src geomfactory.CoordSeq, j int, ords geopb.Ordinates,
) {
	for ord := geopb.OrdinateX; ord <= geopb.OrdinateM; ord++ {
		if ords.HasOrdinate(ord) {
			dst.SetOrdinate(i, ord, src.Ordinate(j, ord))
		}
	}
}
