package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subfab/internal/pipeline"
	"subfab/internal/subtitle"
)

func newRetranscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		audioPath   string
		langFrom    string
		segmentFlag string
		outputDir   string
	)

	cmd := &cobra.Command{
		Use:   "retranscribe SUBTITLES",
		Short: "Re-transcribe mistimed segments from the source audio and splice them in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if audioPath == "" {
				return fmt.Errorf("--audio is required")
			}
			p, err := ctx.pipeline()
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

			cfg, _ := ctx.ensureConfig()
			art := pipeline.NewArtifacts(outputDir, args[0], cfg.Translation.DefaultLangTo, segment != nil)
			job, unlock, err := p.NewJob(art, segment)
			if err != nil {
				return err
			}
			defer unlock()

			lang := langFrom
			if lang == "" {
				lang = cfg.Transcription.DefaultLangFrom
			}
			track, err = job.Retranscribe(cmd.Context(), track, audioPath, lang)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Re-transcribed %s: %d lines, wrote %s\n",
				args[0], track.Len(), art.TwoPassSubs())
			return nil
		},
	}

	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "Audio file the subtitles were transcribed from")
	cmd.Flags().StringVar(&langFrom, "lang-from", "", "Source language (defaults to configuration)")
	cmd.Flags().StringVarP(&segmentFlag, "segment", "s", "", "Re-transcribe a specific one-based line range N-M")
	cmd.Flags().StringVarP(&outputDir, "directory", "d", "", "Artifact output directory (defaults to the input's)")
	return cmd
}
