package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"subfab/internal/pipeline"
	"subfab/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		langFrom      string
		langTo        string
		outputDir     string
		maxConcurrent int
	)

	cmd := &cobra.Command{
		Use:   "watch DIRECTORY",
		Short: "Watch a drop folder and run the pipeline on new media files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			handler := func(ctx context.Context, path string) error {
				_, err := p.Run(ctx, path, pipeline.RunOptions{
					LangFrom:  langFrom,
					LangTo:    langTo,
					OutputDir: outputDir,
				})
				return err
			}

			w, err := watcher.New(args[0], handler, logger, watcher.Options{
				MaxConcurrent: maxConcurrent,
			})
			if err != nil {
				return err
			}
			if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&langFrom, "lang-from", "", "Source language (defaults to configuration)")
	cmd.Flags().StringVar(&langTo, "lang-to", "", "Target language (defaults to configuration)")
	cmd.Flags().StringVarP(&outputDir, "directory", "d", "", "Artifact output directory (defaults to each input's)")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 1, "Maximum files processed at once")
	return cmd
}
