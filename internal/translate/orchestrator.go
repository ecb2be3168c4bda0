package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"subfab/internal/fileutil"
	"subfab/internal/services"
	"subfab/internal/subtitle"
)

// Free-tier OpenRouter models share a one-request-per-minute pool.
const (
	freeTierPrefix   = "google/gemini-2.5-pro-exp"
	freeTierInterval = 61 * time.Second
)

// Params tunes the batching and retry behavior of a translation run.
type Params struct {
	// ContextLines is how many previous translations are quoted for continuity.
	ContextLines int
	// BatchLines is the nominal lines per request before continuation extension.
	BatchLines int
	// LookaheadDiscard is how many extra source lines are appended for context
	// and dropped from the reply.
	LookaheadDiscard int
	// TranslateRetries bounds corrective re-prompts after count mismatches.
	TranslateRetries int
	// ServerRetries bounds transport-level retries per request.
	ServerRetries int
	// MaxContinuationLines bounds how far a batch grows to avoid splitting a
	// continued sentence across requests.
	MaxContinuationLines int

	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DefaultParams mirrors the tuning the correction presets ship with.
func DefaultParams() Params {
	return Params{
		ContextLines:         100,
		BatchLines:           50,
		LookaheadDiscard:     10,
		TranslateRetries:     3,
		ServerRetries:        5,
		MaxContinuationLines: 5,
		RetryBaseDelay:       2 * time.Second,
		RetryMaxDelay:        65 * time.Second,
	}
}

// Orchestrator drives batched subtitle translation through a text generator,
// persisting partial results after every batch so an interrupted run resumes
// at the next line.
type Orchestrator struct {
	logger *slog.Logger
	gen    services.TextGenerator
	params Params

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	lastRequest time.Time
}

// Option adjusts orchestrator construction.
type Option func(*Orchestrator)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithSleeper overrides the sleep function, for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		o.sleep = sleep
	}
}

// New builds a translation orchestrator.
func New(logger *slog.Logger, gen services.TextGenerator, params Params, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		logger: logger,
		gen:    gen,
		params: params,
		now:    time.Now,
		sleep:  services.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Translate produces one translated text per line of track, batching requests
// and writing the running result to partialPath after every batch. When
// segment is non-nil only that inclusive index range is translated; lines
// before it pass through untranslated. An existing partial file sets the
// resume cursor by its line count.
func (o *Orchestrator) Translate(ctx context.Context, track *subtitle.Track, contextPrompt, langFrom, langTo, partialPath string, segment *subtitle.Range) ([]string, error) {
	total := track.Len()
	start := 0
	var translated []string

	if segment != nil {
		start = segment.Start
		for _, line := range track.Lines()[:start] {
			translated = append(translated, line.Text)
		}
	}
	if partialPath != "" && fileutil.Exists(partialPath) {
		existing, err := fileutil.ReadLines(partialPath)
		if err != nil {
			o.logger.Warn("failed to load partial translation, starting over", "path", partialPath, "error", err)
		} else {
			translated = existing
			start = len(existing)
		}
	}

	end := total
	if segment != nil && segment.End+1 < end {
		end = segment.End + 1
	}
	if start >= end {
		o.logger.Warn("all lines already translated", "lines", start)
		return translated, nil
	}

	system := systemPrompt(langFrom, langTo)
	freeTier := strings.HasPrefix(o.gen.Model(), freeTierPrefix)
	batchNum := 0

	for i := start; i < end; {
		batchEnd := min(i+o.params.BatchLines, end)
		extended := 0
		for batchEnd < end && track.Line(batchEnd-1).Continues() && extended < o.params.MaxContinuationLines {
			batchEnd++
			extended++
		}
		batchSize := batchEnd - i

		lookahead := min(o.params.LookaheadDiscard, end-batchEnd)
		batch := track.Slice(subtitle.Range{Start: i, End: batchEnd + lookahead - 1})

		batchNum++
		remaining := (end - batchEnd + o.params.BatchLines - 1) / o.params.BatchLines
		o.logger.Info("translating batch",
			"batch", batchNum,
			"batches_left", remaining,
			"lines", fmt.Sprintf("%d-%d/%d", i+1, batchEnd, end))

		prompt := batchPrompt(translated, contextPrompt, batch, langFrom, langTo, o.params.ContextLines)

		var newLines []string
		for attempt := 1; attempt <= o.params.TranslateRetries; attempt++ {
			reply, err := o.complete(ctx, services.CompletionRequest{System: system, Prompt: prompt}, freeTier)
			if err != nil {
				return translated, fmt.Errorf("translate lines %d-%d: %w", i+1, batchEnd, err)
			}

			newLines = splitReply(reply)
			if isNumbered(newLines) {
				newLines = removeNumbering(newLines)
			}
			newLines = cleanEllipses(newLines)

			if len(newLines) == len(batch) {
				break
			}
			o.logger.Warn("translation line count mismatch",
				"attempt", attempt,
				"expected", len(batch),
				"got", len(newLines))
			prompt = retryPrompt(newLines, batch, langFrom, langTo)
		}

		if len(newLines) != len(batch) {
			o.logger.Warn("proceeding with best-effort line count",
				"expected", len(batch),
				"got", len(newLines))
			newLines = forceLineCount(newLines, len(batch))
		}

		// Drop the lookahead tail; it was context only.
		translated = append(translated, newLines[:batchSize]...)

		if partialPath != "" {
			if err := fileutil.WriteLines(partialPath, translated); err != nil {
				return translated, fmt.Errorf("write partial translation: %w", err)
			}
		}
		i = batchEnd
	}

	return translated, nil
}

// GenerateContext produces a synopsis and bilingual glossary for the track
// through one grounded completion.
func (o *Orchestrator) GenerateContext(ctx context.Context, track *subtitle.Track, filename, langFrom, langTo string) (string, error) {
	reply, err := o.complete(ctx, services.CompletionRequest{
		System:    "You must follow prompt instructions.",
		Prompt:    contextGenPrompt(track, filename, langFrom, langTo),
		Grounding: true,
	}, false)
	if err != nil {
		return "", fmt.Errorf("generate context: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// complete issues one request with transport-level retries. Non-transient
// errors and retry exhaustion surface to the caller.
func (o *Orchestrator) complete(ctx context.Context, req services.CompletionRequest, freeTier bool) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= o.params.ServerRetries; attempt++ {
		if freeTier {
			if err := o.awaitInterval(ctx); err != nil {
				return "", err
			}
		}

		reply, err := o.gen.Complete(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if !services.IsTransient(err) || attempt == o.params.ServerRetries {
			return "", err
		}
		delay := services.RetryDelay(err, attempt, o.params.RetryBaseDelay, o.params.RetryMaxDelay)
		o.logger.Warn("transient completion failure, retrying",
			"attempt", attempt,
			"retries", o.params.ServerRetries,
			"delay", delay,
			"error", err)
		if err := o.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

// awaitInterval enforces the free-tier minimum spacing between requests.
func (o *Orchestrator) awaitInterval(ctx context.Context) error {
	if !o.lastRequest.IsZero() {
		elapsed := o.now().Sub(o.lastRequest)
		if wait := freeTierInterval - elapsed; wait > 0 {
			o.logger.Debug("rate limiting free-tier request", "wait", wait)
			if err := o.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	o.lastRequest = o.now()
	return nil
}

// ApplyTexts overwrites each line's text with the corresponding translated
// string, keeping timing, speaker, and style.
func ApplyTexts(track *subtitle.Track, texts []string) error {
	if len(texts) != track.Len() {
		return fmt.Errorf("apply texts: %d texts for %d lines", len(texts), track.Len())
	}
	for i := range texts {
		track.Line(i).Text = texts[i]
	}
	return nil
}
