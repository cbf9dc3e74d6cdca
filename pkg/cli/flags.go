// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package cli

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/ewkb/pkg/cli/cliflags"
	"github.com/cockroachdb/ewkb/pkg/geo"
	"github.com/cockroachdb/ewkb/pkg/geo/ewkb"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/ewkb/pkg/util/log"
	"github.com/cockroachdb/redact"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// cliContext holds the flag values of one command tree.
type cliContext struct {
	byteOrder        ewkb.ByteOrder
	ordinates        geopb.Ordinates
	srid             int
	repairRings      bool
	format           string
	maxDecimalDigits int
	configFile       string
	verbose          bool
	logFormat        string
	redactableLogs   bool
}

func newCLIContext() *cliContext {
	return &cliContext{
		byteOrder:        ewkb.DefaultByteOrder,
		ordinates:        geopb.OrdinatesNone,
		maxDecimalDigits: geo.FullPrecision,
		logFormat:        log.FormatText,
	}
}

func setFlagFromEnv(f *pflag.FlagSet, flagInfo cliflags.FlagInfo) {
	if flagInfo.EnvVar != "" {
		if value, set := os.LookupEnv(flagInfo.EnvVar); set {
			if err := f.Set(flagInfo.Name, value); err != nil {
				panic(errors.Wrapf(err, "invalid value for %s", flagInfo.EnvVar))
			}
		}
	}
}

// StringFlag creates a string flag and registers it with the FlagSet.
func StringFlag(f *pflag.FlagSet, valPtr *string, flagInfo cliflags.FlagInfo, defaultVal string) {
	f.StringVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, defaultVal, flagInfo.Usage())

	setFlagFromEnv(f, flagInfo)
}

// IntFlag creates an int flag and registers it with the FlagSet.
func IntFlag(f *pflag.FlagSet, valPtr *int, flagInfo cliflags.FlagInfo, defaultVal int) {
	f.IntVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, defaultVal, flagInfo.Usage())

	setFlagFromEnv(f, flagInfo)
}

// BoolFlag creates a bool flag and registers it with the FlagSet.
func BoolFlag(f *pflag.FlagSet, valPtr *bool, flagInfo cliflags.FlagInfo, defaultVal bool) {
	f.BoolVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, defaultVal, flagInfo.Usage())

	setFlagFromEnv(f, flagInfo)
}

// VarFlag creates a custom-variable flag and registers it with the FlagSet.
func VarFlag(f *pflag.FlagSet, value pflag.Value, flagInfo cliflags.FlagInfo) {
	f.VarP(value, flagInfo.Name, flagInfo.Shorthand, flagInfo.Usage())

	setFlagFromEnv(f, flagInfo)
}

// loadConfigFile reads codec settings from a YAML or TOML file. Settings
// missing from the file keep their defaults.
func loadConfigFile(path string) (ewkb.Config, error) {
	cfg := ewkb.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing %s", path)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing %s", path)
		}
	default:
		return cfg, errors.Newf("unsupported config file extension %q: expected .yaml, .yml or .toml", ext)
	}
	return cfg, nil
}

// codecConfig returns the codec settings of cmd: the defaults, overridden
// by the config file, overridden by the flags that were set.
func (c *cliContext) codecConfig(ctx context.Context, cmd *cobra.Command) (ewkb.Config, error) {
	cfg := ewkb.DefaultConfig()
	fromFile := c.configFile != ""
	if fromFile {
		var err error
		if cfg, err = loadConfigFile(c.configFile); err != nil {
			return cfg, err
		}
		if log.V(1) {
			log.Infof(ctx, "loaded codec settings from %s", c.configFile)
		}
	}
	f := cmd.Flags()
	if f.Changed(cliflags.ByteOrder.Name) {
		if fromFile && cfg.ByteOrder != c.byteOrder {
			warnOverride(ctx, cliflags.ByteOrder, c.byteOrder, cfg.ByteOrder, c.configFile)
		}
		cfg.ByteOrder = c.byteOrder
	}
	if f.Changed(cliflags.Ordinates.Name) {
		if fromFile && cfg.HandleOrdinates != c.ordinates {
			warnOverride(ctx, cliflags.Ordinates, c.ordinates, cfg.HandleOrdinates, c.configFile)
		}
		cfg.HandleOrdinates = c.ordinates
	}
	if f.Changed(cliflags.RepairRings.Name) {
		if fromFile && cfg.RepairRings != c.repairRings {
			warnOverride(ctx, cliflags.RepairRings, c.repairRings, cfg.RepairRings, c.configFile)
		}
		cfg.RepairRings = c.repairRings
	}
	return cfg, cfg.Validate()
}

func warnOverride(
	ctx context.Context, flag cliflags.FlagInfo, flagVal, fileVal interface{}, path string,
) {
	log.Warningf(ctx, "--%s=%v overrides %v from %s",
		redact.Safe(flag.Name), flagVal, fileVal, path)
}

// defaultSRID returns the --srid value.
func (c *cliContext) defaultSRID() (geopb.SRID, error) {
	if c.srid < 0 || c.srid > math.MaxInt32 {
		return 0, errors.Newf("SRID %d out of range [0, %d]", c.srid, math.MaxInt32)
	}
	return geopb.SRID(c.srid), nil
}
