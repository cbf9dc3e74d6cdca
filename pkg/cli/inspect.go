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
	"fmt"
	"text/tabwriter"

	"github.com/cockroachdb/ewkb/pkg/geo/ewkb"
	"github.com/cockroachdb/ewkb/pkg/util/log"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [hex]",
		Short: "print the node structure of an EWKB value",
		Long: `
Print one line per node of hex or raw EWKB: its nesting depth, offset, byte
order, type, ordinates, SRID and count. The count is the number of tuples of
a point or line string, of rings of a polygon, or of members of a
collection. SRIDs of sub-nodes are shown even though decoders ignore them.
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
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "DEPTH\tOFFSET\tORDER\tTYPE\tORDINATES\tSRID\tCOUNT")
			var nodes int
			if err := ewkb.Walk(raw, func(n ewkb.NodeInfo) error {
				nodes++
				srid := "-"
				if n.HasSRID {
					srid = fmt.Sprint(int32(n.SRID))
				}
				_, err := fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%d\n",
					n.Depth, n.Offset, n.ByteOrder, n.Type, n.Ordinates, srid, n.Count)
				return err
			}); err != nil {
				_ = tw.Flush()
				log.Errorf(ctx, "inspect stopped after %d nodes", nodes)
				return err
			}
			log.VEventf(ctx, 1, "inspected %d nodes in %d bytes", nodes, len(raw))
			return tw.Flush()
		},
	}
}
