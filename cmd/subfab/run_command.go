package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subfab/internal/pipeline"
	"subfab/internal/subtitle"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		langFrom    string
		langTo      string
		segmentFlag string
		contextPath string
		outputDir   string
	)

	cmd := &cobra.Command{
		Use:   "run SOURCE",
		Short: "Run the full pipeline on a video, audio, transcript, or subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			segment, err := parseSegmentFlag(segmentFlag)
			if err != nil {
				return err
			}

			result, err := p.Run(cmd.Context(), args[0], pipeline.RunOptions{
				LangFrom:    langFrom,
				LangTo:      langTo,
				ContextPath: contextPath,
				Segment:     segment,
				OutputDir:   outputDir,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Result", "Value"},
				[][]string{
					{"Lines", fmt.Sprintf("%d", result.Track.Len())},
					{"Output", result.Final},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&langFrom, "lang-from", "", "Source language (defaults to configuration)")
	cmd.Flags().StringVar(&langTo, "lang-to", "", "Target language (defaults to configuration)")
	cmd.Flags().StringVarP(&segmentFlag, "segment", "s", "", "Restrict processing to a one-based line range N-M")
	cmd.Flags().StringVar(&contextPath, "context", "", "Use a prepared translation context file")
	cmd.Flags().StringVarP(&outputDir, "directory", "d", "", "Artifact output directory (defaults to the input's)")
	return cmd
}

func parseSegmentFlag(value string) (*subtitle.Range, error) {
	if value == "" {
		return nil, nil
	}
	r, err := subtitle.ParseRange(value)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
