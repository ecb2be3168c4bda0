package pipeline

import (
	"context"
	"fmt"

	"subfab/internal/logging"
	"subfab/internal/segmentation"
	"subfab/internal/services"
	"subfab/internal/services/elevenlabs"
	"subfab/internal/services/gemini"
	"subfab/internal/services/openrouter"
)

// textGenerator builds the configured completion provider for model.
// Construction is deferred to first use so commands that never call a
// provider work without credentials.
func (p *Pipeline) textGenerator(ctx context.Context, model string) (services.TextGenerator, error) {
	switch p.cfg.Providers.TextProvider {
	case "openrouter":
		or := p.cfg.Providers.OpenRouter
		if or.APIKey == "" {
			return nil, fmt.Errorf("openrouter api key is not configured")
		}
		return openrouter.NewClient(openrouter.Config{
			APIKey:         or.APIKey,
			BaseURL:        or.BaseURL,
			Model:          model,
			Referer:        or.Referer,
			Title:          or.Title,
			TimeoutSeconds: or.TimeoutSeconds,
		}, logging.WithComponent(p.logger, "openrouter")), nil
	case "gemini":
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:  p.cfg.Providers.Gemini.APIKey,
			BaseURL: p.cfg.Providers.Gemini.BaseURL,
			Model:   model,
		}, logging.WithComponent(p.logger, "gemini"))
	default:
		return nil, fmt.Errorf("unknown text provider %q", p.cfg.Providers.TextProvider)
	}
}

func (p *Pipeline) transcriber() (services.Transcriber, error) {
	el := p.cfg.Providers.ElevenLabs
	if el.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs api key is not configured")
	}
	return elevenlabs.NewClient(elevenlabs.Config{
		APIKey:         el.APIKey,
		BaseURL:        el.BaseURL,
		Model:          p.cfg.Transcription.Model,
		TimeoutSeconds: el.TimeoutSeconds,
		MaxChunkBytes:  int64(el.MaxChunkMiB) << 20,
	}, logging.WithComponent(p.logger, "elevenlabs")), nil
}

// engine builds the segmentation engine, attaching the semantic splitter only
// when a parsing model is configured.
func (p *Pipeline) engine(ctx context.Context) (*segmentation.Engine, error) {
	opts := []segmentation.Option{
		segmentation.WithLogger(logging.WithComponent(p.logger, "segmentation")),
	}
	if model := p.cfg.Parsing.ParsingModel; model != "" {
		gen, err := p.textGenerator(ctx, model)
		if err != nil {
			return nil, err
		}
		opts = append(opts, segmentation.WithSplitter(segmentation.NewLLMSplitter(gen)))
	}
	return segmentation.NewEngine(SegmentationParams(p.cfg), opts...), nil
}
