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
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
)

// Ordinate names a single coordinate axis.
type Ordinate int

// The coordinate axes. M is the non-spatial "measure" axis.
const (
	OrdinateX Ordinate = iota
	OrdinateY
	OrdinateZ
	OrdinateM
)

var ordinateNames = [...]string{"X", "Y", "Z", "M"}

func (o Ordinate) String() string {
	if o < OrdinateX || o > OrdinateM {
		return "?"
	}
	return ordinateNames[o]
}

// Ordinates is a set of coordinate axes.
//
// OrdinatesNone is distinguished: as a "handle ordinates" setting it means
// "transfer whatever the source or target naturally supports", not "transfer
// nothing". Any other set always contains X and Y.
type Ordinates uint8

// Ordinate sets.
const (
	OrdinatesNone Ordinates = 0
	OrdinatesX    Ordinates = 1 << OrdinateX
	OrdinatesY    Ordinates = 1 << OrdinateY
	OrdinatesZ    Ordinates = 1 << OrdinateZ
	OrdinatesM    Ordinates = 1 << OrdinateM

	OrdinatesXY   = OrdinatesX | OrdinatesY
	OrdinatesXYZ  = OrdinatesXY | OrdinatesZ
	OrdinatesXYM  = OrdinatesXY | OrdinatesM
	OrdinatesXYZM = OrdinatesXYZ | OrdinatesM
)

// EffectiveOrdinates computes the ordinates to transfer given what a sequence
// has (or what the wire carries) and what the caller asked to handle. A
// requested set of OrdinatesNone does no down-selection. X and Y are never
// dropped.
func EffectiveOrdinates(available, requested Ordinates) Ordinates {
	if requested == OrdinatesNone {
		return available
	}
	return available & (requested | OrdinatesXY)
}

// NormalizeHandleOrdinates returns the canonical form of a "handle
// ordinates" setting restricted to the allowed set: OrdinatesNone stays as
// is, anything else gains X and Y and loses what is not allowed.
func NormalizeHandleOrdinates(o, allowed Ordinates) Ordinates {
	if o == OrdinatesNone {
		return OrdinatesNone
	}
	return (o | OrdinatesXY) & (allowed | OrdinatesXY) & OrdinatesXYZM
}

// Has returns whether every ordinate of other is in o.
func (o Ordinates) Has(other Ordinates) bool {
	return o&other == other
}

// HasOrdinate returns whether the axis is in o.
func (o Ordinates) HasOrdinate(ord Ordinate) bool {
	return o&(1<<ord) != 0
}

// Dimension is the number of ordinates in the set.
func (o Ordinates) Dimension() int {
	n := 0
	for ord := OrdinateX; ord <= OrdinateM; ord++ {
		if o.HasOrdinate(ord) {
			n++
		}
	}
	return n
}

// Layout returns the go-geom layout storing these ordinates. OrdinatesNone
// maps to geom.NoLayout.
func (o Ordinates) Layout() geom.Layout {
	if o == OrdinatesNone {
		return geom.NoLayout
	}
	switch {
	case o.Has(OrdinatesZ | OrdinatesM):
		return geom.XYZM
	case o.Has(OrdinatesZ):
		return geom.XYZ
	case o.Has(OrdinatesM):
		return geom.XYM
	default:
		return geom.XY
	}
}

// OrdinatesFromLayout returns the ordinates a go-geom layout stores.
// geom.NoLayout is treated as XY, the layout of an empty untyped geometry.
func OrdinatesFromLayout(layout geom.Layout) Ordinates {
	switch layout {
	case geom.XYZ:
		return OrdinatesXYZ
	case geom.XYM:
		return OrdinatesXYM
	case geom.XYZM:
		return OrdinatesXYZM
	default:
		return OrdinatesXY
	}
}

// String implements fmt.Stringer, e.g. "XYZ" or "None".
func (o Ordinates) String() string {
	if o == OrdinatesNone {
		return "None"
	}
	var sb strings.Builder
	for ord := OrdinateX; ord <= OrdinateM; ord++ {
		if o.HasOrdinate(ord) {
			sb.WriteString(ord.String())
		}
	}
	return sb.String()
}

// SafeValue implements the redact.SafeValue interface.
func (Ordinates) SafeValue() {}

// ParseOrdinates parses "none" or any combination of the letters x, y, z and
// m, case insensitively.
func ParseOrdinates(s string) (Ordinates, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return OrdinatesNone, nil
	}
	var o Ordinates
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'X':
			o |= OrdinatesX
		case 'Y':
			o |= OrdinatesY
		case 'Z':
			o |= OrdinatesZ
		case 'M':
			o |= OrdinatesM
		default:
			return OrdinatesNone, errors.Newf("invalid ordinates %q: unexpected %q", s, r)
		}
	}
	return o, nil
}

// MarshalText implements encoding.TextMarshaler.
func (o Ordinates) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Ordinates) UnmarshalText(text []byte) error {
	parsed, err := ParseOrdinates(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Set implements pflag.Value.
func (o *Ordinates) Set(s string) error {
	return o.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (o *Ordinates) Type() string {
	return "ordinates"
}
