// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package geopb

import (
	"math"

	"github.com/twpayne/go-geom"
)

// BoundingBox is the planar X/Y extent of a spatial object.
type BoundingBox struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// NewBoundingBox returns a properly initialized bounding box.
func NewBoundingBox() *BoundingBox {
	return &BoundingBox{
		MinX: math.MaxFloat64,
		MaxX: -math.MaxFloat64,
		MinY: math.MaxFloat64,
		MaxY: -math.MaxFloat64,
	}
}

// Update updates the BoundingBox coordinates.
func (b *BoundingBox) Update(x, y float64) {
	b.MinX = math.Min(b.MinX, x)
	b.MaxX = math.Max(b.MaxX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxY = math.Max(b.MaxY, y)
}

// BoundingBoxFromGeomT returns the bounding box of a geometry, or nil if the
// geometry is empty.
func BoundingBoxFromGeomT(t geom.T) *BoundingBox {
	bounds := t.Bounds()
	if bounds.IsEmpty() {
		return nil
	}
	b := NewBoundingBox()
	b.Update(bounds.Min(0), bounds.Min(1))
	b.Update(bounds.Max(0), bounds.Max(1))
	return b
}
