// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package cli implements the ewkb command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/ewkb/pkg/cli/cliflags"
	"github.com/cockroachdb/ewkb/pkg/util/log"
	"github.com/cockroachdb/logtags"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Main is the entry point for the cli, with a single line calling it from
// package main.
func Main() {
	mainWithArgs(os.Args[1:], os.Stderr)
}

// mainWithArgs runs the command tree with args. A failed command is logged
// to stderr at the FATAL severity, which exits the process.
func mainWithArgs(args []string, stderr io.Writer) {
	ctx := logtags.AddTag(context.Background(), "cmd", "ewkb")
	log.SetOutput(stderr)
	cmd := NewEWKBCommand()
	cmd.SetArgs(args)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Fatalf(ctx, "%v", err)
	}
}

// NewEWKBCommand returns the root command. Every call returns a fresh tree
// with its own flag values.
func NewEWKBCommand() *cobra.Command {
	cliCtx := newCLIContext()
	ewkbCmd := &cobra.Command{
		Use:   "ewkb [command] (flags)",
		Short: "PostGIS EWKB encoder, decoder and inspector",
		Long: `
Convert geometries between (E)WKT and the PostGIS extended well-known binary
format, and inspect the node structure of EWKB values.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level int32
			if cliCtx.verbose {
				level = 1
			}
			log.SetVerbosity(level)
			log.SetOutput(cmd.ErrOrStderr())
			log.SetRedactable(cliCtx.redactableLogs)
			return log.SetFormat(cliCtx.logFormat)
		},
	}
	f := ewkbCmd.PersistentFlags()
	StringFlag(f, &cliCtx.configFile, cliflags.Config, "")
	BoolFlag(f, &cliCtx.verbose, cliflags.Verbose, false)
	StringFlag(f, &cliCtx.logFormat, cliflags.LogFormat, cliCtx.logFormat)
	BoolFlag(f, &cliCtx.redactableLogs, cliflags.RedactableLogs, false)

	cobra.EnableCommandSorting = false
	ewkbCmd.AddCommand(
		newEncodeCmd(cliCtx),
		newDecodeCmd(cliCtx),
		newInspectCmd(),
		versionCmd,
	)
	return ewkbCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "output version information",
	Long: `
Output build version information.
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version := "(devel)"
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			version = info.Main.Version
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 1, 2, ' ', 0)
		fmt.Fprintf(tw, "Build Tag:\t%s\n", version)
		fmt.Fprintf(tw, "Platform:\t%s %s/%s\n", runtime.Compiler, runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(tw, "Go Version:\t%s\n", runtime.Version())
		_ = tw.Flush()
	},
}

// cmdContext returns a context tagged with the name of cmd.
func cmdContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logtags.AddTag(ctx, "cmd", cmd.Name())
}

// readInput returns the command's argument, or everything on its standard
// input if there is no argument. A terminal is never read from.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(args[0]), nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return nil, errors.New("no input: pass it as an argument or on standard input")
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return nil, errors.Wrap(err, "reading standard input")
	}
	if len(b) == 0 {
		return nil, errors.New("empty input")
	}
	return b, nil
}
