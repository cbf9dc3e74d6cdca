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

import "math"

// PrecisionModel snaps decoded X and Y ordinates onto a grid.
type PrecisionModel interface {
	// MakePrecise returns v rounded to the model's precision.
	MakePrecise(v float64) float64
}

// Floating is the full double precision model; it leaves values untouched.
type Floating struct{}

var _ PrecisionModel = Floating{}

// MakePrecise implements PrecisionModel.
func (Floating) MakePrecise(v float64) float64 {
	return v
}

// Fixed rounds values to a grid of 1/Scale, e.g. Scale 1000 keeps three
// decimal places.
type Fixed struct {
	Scale float64
}

var _ PrecisionModel = Fixed{}

// MakePrecise implements PrecisionModel.
func (p Fixed) MakePrecise(v float64) float64 {
	if p.Scale <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*p.Scale) / p.Scale
}
