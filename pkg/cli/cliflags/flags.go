// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package cliflags

import (
	"fmt"
	"strings"
)

// FlagInfo contains the static information for a CLI flag and helper
// to format the description.
type FlagInfo struct {
	// Name of the flag as used on the command line.
	Name string

	// Shorthand is the short form of the flag (optional).
	Shorthand string

	// EnvVar is the name of the environment variable through which the flag
	// can also be set (optional).
	EnvVar string

	// Description of the flag.
	Description string
}

// Usage returns a formatted usage string for the flag, including the
// environment variable if there is one.
func (f FlagInfo) Usage() string {
	s := "\n" + strings.TrimSpace(f.Description) + "\n"
	if f.EnvVar != "" {
		s += fmt.Sprintf("Environment variable: %s\n", f.EnvVar)
	}
	return s
}

// Flags shared by the codec commands.
var (
	ByteOrder = FlagInfo{
		Name:        "byte-order",
		EnvVar:      "EWKB_BYTE_ORDER",
		Description: `Byte order of the encoded output: ndr (little endian) or xdr (big endian).`,
	}

	Ordinates = FlagInfo{
		Name:   "ordinates",
		EnvVar: "EWKB_ORDINATES",
		Description: `
Ordinates to handle, e.g. xy, xyz, xym or xyzm. X and Y are always kept. The
default, none, keeps every ordinate the input carries.`,
	}

	SRID = FlagInfo{
		Name:        "srid",
		EnvVar:      "EWKB_SRID",
		Description: `SRID given to parsed geometries that do not specify one.`,
	}

	RepairRings = FlagInfo{
		Name:        "repair-rings",
		EnvVar:      "EWKB_REPAIR_RINGS",
		Description: `Close unclosed rings and pad short rings when decoding.`,
	}

	Format = FlagInfo{
		Name:      "format",
		Shorthand: "f",
		EnvVar:    "EWKB_FORMAT",
		Description: `
Output format: ewkt, wkt, geojson, kml, wkbhex, geohash or hex (upper case
EWKB hex).`,
	}

	MaxDecimalDigits = FlagInfo{
		Name:        "max-decimal-digits",
		EnvVar:      "EWKB_MAX_DECIMAL_DIGITS",
		Description: `Maximum number of decimal digits in text output. -1 prints full precision.`,
	}

	Config = FlagInfo{
		Name:      "config",
		Shorthand: "c",
		EnvVar:    "EWKB_CONFIG",
		Description: `
YAML (.yaml, .yml) or TOML (.toml) file with byte_order, handle_ordinates and
repair_rings settings. Flags given on the command line take precedence.`,
	}

	Verbose = FlagInfo{
		Name:        "verbose",
		Shorthand:   "v",
		Description: `Log the steps of each command to stderr.`,
	}

	LogFormat = FlagInfo{
		Name:        "log-format",
		EnvVar:      "EWKB_LOG_FORMAT",
		Description: `Format of log messages: text or json.`,
	}

	RedactableLogs = FlagInfo{
		Name:   "redactable-logs",
		EnvVar: "EWKB_REDACTABLE_LOGS",
		Description: `
Make log messages enclose values that may be sensitive, such as file paths
and input geometries, in redaction markers.`,
	}
)
