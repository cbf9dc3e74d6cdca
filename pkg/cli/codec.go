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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/ewkb/pkg/cli/cliflags"
	"github.com/cockroachdb/ewkb/pkg/geo"
	"github.com/cockroachdb/ewkb/pkg/geo/ewkb"
	"github.com/cockroachdb/ewkb/pkg/geo/geopb"
	"github.com/cockroachdb/ewkb/pkg/util/log"
	"github.com/spf13/cobra"
)

// The output formats.
const (
	formatHex     = "hex"
	formatEWKT    = "ewkt"
	formatWKT     = "wkt"
	formatGeoJSON = "geojson"
	formatKML     = "kml"
	formatWKBHex  = "wkbhex"
	formatGeoHash = "geohash"
)

// formatEWKB renders an encoding in the named output format.
func formatEWKB(b geopb.EWKB, format string, maxDecimalDigits int) (string, error) {
	switch strings.ToLower(format) {
	case formatHex:
		return string(geo.EWKBToEWKBHex(b)), nil
	case formatEWKT:
		s, err := geo.EWKBToEWKT(b, maxDecimalDigits)
		return string(s), err
	case formatWKT:
		s, err := geo.EWKBToWKT(b, maxDecimalDigits)
		return string(s), err
	case formatGeoJSON:
		s, err := geo.EWKBToGeoJSON(b, maxDecimalDigits, geo.EWKBToGeoJSONFlagShortCRSIfNot4326)
		return string(s), err
	case formatKML:
		return geo.EWKBToKML(b)
	case formatWKBHex:
		return geo.EWKBToWKBHex(b)
	case formatGeoHash:
		return geo.EWKBToGeoHash(b, geo.GeoHashAutoPrecision)
	default:
		return "", errors.Newf(
			"unknown format %q: expected one of ewkt, wkt, geojson, kml, wkbhex, geohash or hex", format)
	}
}

// decodeInput turns the input of decode and inspect into bytes. Input
// starting with an order byte is raw EWKB; anything else is hex, optionally
// with the \x prefix of the PostgreSQL bytea text format.
func decodeInput(in []byte) ([]byte, error) {
	if len(in) > 0 && (in[0] == byte(ewkb.XDR) || in[0] == byte(ewkb.NDR)) {
		return in, nil
	}
	s := strings.TrimSpace(string(in))
	s = strings.TrimPrefix(s, `\x`)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decoding hex input")
	}
	return b, nil
}

func addOutputFlags(cmd *cobra.Command, cliCtx *cliContext, defaultFormat string) {
	fs := cmd.Flags()
	StringFlag(fs, &cliCtx.format, cliflags.Format, defaultFormat)
	IntFlag(fs, &cliCtx.maxDecimalDigits, cliflags.MaxDecimalDigits, cliCtx.maxDecimalDigits)
	VarFlag(fs, &cliCtx.byteOrder, cliflags.ByteOrder)
	VarFlag(fs, &cliCtx.ordinates, cliflags.Ordinates)
}

func newEncodeCmd(cliCtx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [geometry]",
		Short: "encode a geometry given as (E)WKT or hex EWKB",
		Long: `
Encode a geometry as EWKB. The input is EWKT such as
'SRID=4326;POINT Z (10 10 20)', WKT, or hex EWKB to re-encode. It is read
from standard input if no argument is given.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			in, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			cfg, err := cliCtx.codecConfig(ctx, cmd)
			if err != nil {
				return err
			}
			srid, err := cliCtx.defaultSRID()
			if err != nil {
				return err
			}
			t, err := geo.ParseAmbiguousText(strings.TrimSpace(string(in)), srid)
			if err != nil {
				return err
			}
			w, err := cfg.NewWriter()
			if err != nil {
				return err
			}
			b, err := w.Write(t)
			if err != nil {
				return err
			}
			log.VEventf(ctx, 1, "encoded %d bytes in %s order with ordinates %s",
				len(b), cfg.ByteOrder, cfg.HandleOrdinates)
			return printEWKB(cmd, b, cliCtx)
		},
	}
	addOutputFlags(cmd, cliCtx, formatHex)
	IntFlag(cmd.Flags(), &cliCtx.srid, cliflags.SRID, 0)
	return cmd
}

func newDecodeCmd(cliCtx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [hex]",
		Short: "decode an EWKB value",
		Long: `
Decode hex or raw EWKB and print the geometry, by default as EWKT. The input
is read from standard input if no argument is given.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			in, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			raw, err := decodeInput(in)
			if err != nil {
				return err
			}
			cfg, err := cliCtx.codecConfig(ctx, cmd)
			if err != nil {
				return err
			}
			r, err := cfg.NewReader(nil)
			if err != nil {
				return err
			}
			t, err := r.Read(raw)
			if err != nil {
				return err
			}
			log.VEventf(ctx, 1, "decoded %d bytes with ordinates %s and SRID %d",
				len(raw), geopb.OrdinatesFromLayout(t.Layout()), geopb.SRID(t.SRID()))
			w, err := cfg.NewWriter()
			if err != nil {
				return err
			}
			b, err := w.Write(t)
			if err != nil {
				return err
			}
			return printEWKB(cmd, b, cliCtx)
		},
	}
	addOutputFlags(cmd, cliCtx, formatEWKT)
	BoolFlag(cmd.Flags(), &cliCtx.repairRings, cliflags.RepairRings, false)
	return cmd
}

func printEWKB(cmd *cobra.Command, b geopb.EWKB, cliCtx *cliContext) error {
	out, err := formatEWKB(b, cliCtx.format, cliCtx.maxDecimalDigits)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
