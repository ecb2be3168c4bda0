package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subfab/internal/pipeline"
	"subfab/internal/subtitle"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var (
		langFrom    string
		langTo      string
		segmentFlag string
		contextPath string
		outputDir   string
	)

	cmd := &cobra.Command{
		Use:   "translate SUBTITLES",
		Short: "Translate subtitles in batches with context and resume support",
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
			track, err := subtitle.LoadSRT(args[0])
			if err != nil {
				return err
			}

			opts := pipeline.RunOptions{LangFrom: langFrom, LangTo: langTo}
			from, to := p.LangFrom(opts), p.LangTo(opts)

			art := pipeline.NewArtifacts(outputDir, args[0], to, segment != nil)
			job, unlock, err := p.NewJob(art, segment)
			if err != nil {
				return err
			}
			defer unlock()

			contextData, err := job.BuildContext(cmd.Context(), track, contextPath, from, to)
			if err != nil {
				return err
			}
			track, err = job.Translate(cmd.Context(), track, contextData, from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Translated %s to %s: %d lines, wrote %s\n",
				args[0], to, track.Len(), art.TranslatedSubs())
			return nil
		},
	}

	cmd.Flags().StringVar(&langFrom, "lang-from", "", "Source language (defaults to configuration)")
	cmd.Flags().StringVar(&langTo, "lang-to", "", "Target language (defaults to configuration)")
	cmd.Flags().StringVarP(&segmentFlag, "segment", "s", "", "Translate a specific one-based line range N-M")
	cmd.Flags().StringVar(&contextPath, "context", "", "Use a prepared translation context file")
	cmd.Flags().StringVarP(&outputDir, "directory", "d", "", "Artifact output directory (defaults to the input's)")
	return cmd
}

func newContextCommand(ctx *commandContext) *cobra.Command {
	var (
		langFrom  string
		langTo    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "context SUBTITLES",
		Short: "Generate (or show the cached) translation context and glossary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// The command's whole point is context generation, regardless of
			// the auto-context setting used by full runs.
			cfg.Translation.AutoContext = true

			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			track, err := subtitle.LoadSRT(args[0])
			if err != nil {
				return err
			}

			opts := pipeline.RunOptions{LangFrom: langFrom, LangTo: langTo}
			from, to := p.LangFrom(opts), p.LangTo(opts)

			art := pipeline.NewArtifacts(outputDir, args[0], to, false)
			job, unlock, err := p.NewJob(art, nil)
			if err != nil {
				return err
			}
			defer unlock()

			contextData, err := job.BuildContext(cmd.Context(), track, "", from, to)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, contextData)
			fmt.Fprintf(out, "\nContext file: %s\n", art.ContextText())
			return nil
		},
	}

	cmd.Flags().StringVar(&langFrom, "lang-from", "", "Source language (defaults to configuration)")
	cmd.Flags().StringVar(&langTo, "lang-to", "", "Target language (defaults to configuration)")
	cmd.Flags().StringVarP(&outputDir, "directory", "d", "", "Artifact output directory (defaults to the input's)")
	return cmd
}
