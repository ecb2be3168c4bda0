package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subfab/internal/mistiming"
	"subfab/internal/pipeline"
	"subfab/internal/subtitle"
)

func newFixCommand(ctx *commandContext) *cobra.Command {
	var (
		segmentFlag string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "fix SUBTITLES",
		Short: "Merge and re-time mistimed subtitle lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			segment, err := parseSegmentFlag(segmentFlag)
			if err != nil {
				return err
			}
			track, err := subtitle.LoadSRT(args[0])
			if err != nil {
				return err
			}
			if segment, err = clampSegment(segment, track); err != nil {
				return err
			}
			initial := track.Len()

			mistiming.Fix(logger, track, pipeline.LineFixParams(cfg), segment)
			removed := track.RemoveEmpty(segment)

			dest := outputPath
			if dest == "" {
				dest = derivedName(args[0], "fixed")
			}
			if err := writeTrack(track, dest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fixed %s: %d lines in, %d lines out (%d emptied), wrote %s\n",
				args[0], initial, track.Len(), removed, dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&segmentFlag, "segment", "s", "", "Restrict correction to a one-based line range N-M")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (defaults to <input>.fixed.srt)")
	return cmd
}

func newPadCommand(ctx *commandContext) *cobra.Command {
	var (
		segmentFlag string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "pad SUBTITLES",
		Short: "Extend subtitle durations to readability standards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			segment, err := parseSegmentFlag(segmentFlag)
			if err != nil {
				return err
			}
			track, err := subtitle.LoadSRT(args[0])
			if err != nil {
				return err
			}
			if segment, err = clampSegment(segment, track); err != nil {
				return err
			}

			edits := mistiming.Pad(logger, track, pipeline.PadParams(cfg), segment)

			dest := outputPath
			if dest == "" {
				dest = derivedName(args[0], "padded")
			}
			if err := writeTrack(track, dest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Padded %s: %d lines adjusted, wrote %s\n", args[0], edits, dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&segmentFlag, "segment", "s", "", "Restrict padding to a one-based line range N-M")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (defaults to <input>.padded.srt)")
	return cmd
}

// derivedName inserts a stage tag before the subtitle extension:
// show.srt with tag "fixed" becomes show.fixed.srt.
func derivedName(input, tag string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + tag + ".srt"
}

// clampSegment restricts a requested line range to the loaded track and
// rejects selections entirely outside it.
func clampSegment(segment *subtitle.Range, track *subtitle.Track) (*subtitle.Range, error) {
	if segment == nil {
		return nil, nil
	}
	clamped, ok := segment.Clamp(track.Len())
	if !ok {
		return nil, fmt.Errorf("segment %s is outside the track (%d lines)", segment, track.Len())
	}
	return &clamped, nil
}

// writeTrack writes SRT, or plain text when the destination ends in .txt.
func writeTrack(track *subtitle.Track, dest string) error {
	if strings.EqualFold(filepath.Ext(dest), ".txt") {
		return subtitle.WriteText(track, dest)
	}
	return subtitle.WriteSRT(track, dest)
}
