package pipeline

import (
	"time"

	"subfab/internal/config"
	"subfab/internal/mistiming"
	"subfab/internal/segmentation"
	"subfab/internal/translate"
)

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// SegmentationParams maps the parsing config onto the segmentation engine.
func SegmentationParams(cfg *config.Config) segmentation.Params {
	return segmentation.Params{
		Delimiters:       cfg.Parsing.Delimiters,
		SoftDelimiters:   cfg.Parsing.SoftDelimiters,
		SoftMaxLen:       cfg.Parsing.SoftMaxChars,
		HardMaxLen:       cfg.Parsing.HardMaxChars,
		HardCarryoverLen: cfg.Parsing.HardMaxCarryover,
	}
}

// SegmentDetectParams drives mistimed-segment discovery for two-pass
// re-transcription.
func SegmentDetectParams(cfg *config.Config) mistiming.DetectParams {
	return mistiming.DetectParams{
		Threshold:        seconds(cfg.MistimedSegs.ThresholdSec),
		MinGroupLines:    cfg.MistimedSegs.MinLines,
		BacktraceLimit:   cfg.MistimedSegs.BacktraceLimit,
		ForetraceLimit:   cfg.MistimedSegs.ForetraceLimit,
		BoundaryDuration: seconds(cfg.MistimedSegs.MinDelaySec),
		MaxGapLines:      cfg.MistimedSegs.MaxGapLines,
	}
}

// LineFixParams drives the fix stage: the line threshold comes from its own
// section while the grouping limits are shared with segment discovery.
func LineFixParams(cfg *config.Config) mistiming.DetectParams {
	p := SegmentDetectParams(cfg)
	p.Threshold = seconds(cfg.MistimedLines.ThresholdSec)
	return p
}

// PadParams maps the padding config onto the timing-standards pass.
func PadParams(cfg *config.Config) mistiming.PadParams {
	return mistiming.PadParams{
		MaxLeadOut:  seconds(cfg.Padding.MaxLeadOutSec),
		MaxLeadIn:   seconds(cfg.Padding.MaxLeadInSec),
		MaxCPS:      cfg.Padding.MaxCPS,
		MinDuration: seconds(cfg.Padding.MinSec),
	}
}

// TranslateParams maps the translation config onto the orchestrator,
// keeping the default retry backoff.
func TranslateParams(cfg *config.Config) translate.Params {
	p := translate.DefaultParams()
	p.ContextLines = cfg.Translation.ContextLines
	p.BatchLines = cfg.Translation.BatchLines
	p.LookaheadDiscard = cfg.Translation.DiscardLines
	p.TranslateRetries = cfg.Translation.TranslateRetries
	p.ServerRetries = cfg.Translation.ServerRetries
	p.MaxContinuationLines = cfg.Translation.MaxContLines
	return p
}
