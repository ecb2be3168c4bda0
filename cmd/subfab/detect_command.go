package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"subfab/internal/subtitle"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect SUBTITLES",
		Short: "Preview mistimed segments that two-pass correction would re-transcribe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			track, err := subtitle.LoadSRT(args[0])
			if err != nil {
				return err
			}

			segments := p.FindSegments(track)
			out := cmd.OutOrStdout()
			if len(segments) == 0 {
				fmt.Fprintln(out, "No mistimed segments found.")
				return nil
			}

			rows := make([][]string, 0, len(segments))
			for i, seg := range segments {
				first, last := seg[0], seg[len(seg)-1]
				start := track.Line(first).Start
				end := track.Line(last).End
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					subtitle.NewRange(first, last).String(),
					fmt.Sprintf("%d", len(seg)),
					start.Truncate(time.Millisecond).String(),
					(end - start).Truncate(time.Millisecond).String(),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Lines", "Count", "Start", "Duration"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}
