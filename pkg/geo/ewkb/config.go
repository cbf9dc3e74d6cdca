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
	"github.com/cockroachdb/ewkb/pkg/geo/geomfactory"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
)

// Config holds the settings of a Writer and a Reader. It can be loaded from
// YAML or TOML.
type Config struct {
	// ByteOrder is the order written by the Writer.
	ByteOrder ByteOrder `yaml:"byte_order" toml:"byte_order"`
	// HandleOrdinates restricts the ordinates written and stored.
	HandleOrdinates geopb.Ordinates `yaml:"handle_ordinates" toml:"handle_ordinates"`
	// RepairRings closes unclosed rings when reading.
	RepairRings bool `yaml:"repair_rings" toml:"repair_rings"`
}

// DefaultConfig returns the default settings: little endian, every ordinate,
// no ring repair.
func DefaultConfig() Config {
	return Config{
		ByteOrder:       DefaultByteOrder,
		HandleOrdinates: geopb.OrdinatesNone,
	}
}

// Validate returns a usage error if the settings are invalid.
func (c Config) Validate() error {
	if !c.ByteOrder.Valid() {
		return usageErrorf("invalid byte order %d", uint8(c.ByteOrder))
	}
	if c.HandleOrdinates&^geopb.OrdinatesXYZM != 0 {
		return usageErrorf("invalid handle ordinates %d", uint8(c.HandleOrdinates))
	}
	return nil
}

// NewWriter returns a Writer with these settings.
func (c Config) NewWriter() (*Writer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	w := NewWriter(c.ByteOrder)
	w.SetHandleOrdinates(c.HandleOrdinates)
	return w, nil
}

// NewReader returns a Reader with these settings using f, or the default
// factory if f is nil.
func (c Config) NewReader(f *geomfactory.Factory) (*Reader, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := NewReaderWithFactory(f)
	r.SetHandleOrdinates(c.HandleOrdinates)
	r.SetRepairRings(c.RepairRings)
	return r, nil
}
