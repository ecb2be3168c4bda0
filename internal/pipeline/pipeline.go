// Package pipeline drives the subtitle synthesis chain: audio extraction,
// transcription, segmentation, two-pass correction, timing fixes, padding,
// and translation. Every stage persists its artifact and skips itself when
// the artifact already exists, so an interrupted run resumes where it
// stopped.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"subfab/internal/config"
	"subfab/internal/fileutil"
	"subfab/internal/logging"
	"subfab/internal/media"
	"subfab/internal/mistiming"
	"subfab/internal/services"
	"subfab/internal/subtitle"
	"subfab/internal/transcript"
	"subfab/internal/translate"
	"subfab/internal/twopass"
)

// Pipeline wires configuration, providers, and the processing stages.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	audio  *media.FFmpeg
}

// New constructs a pipeline. Provider clients are built lazily so commands
// that never reach a provider run without credentials.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		audio: media.NewFFmpeg(
			logging.WithComponent(logger, "media"),
			media.WithBinaries(cfg.Paths.FFmpegBinary, cfg.Paths.FFprobeBinary),
		),
	}
}

// RunOptions selects languages, scope, and context source for a run.
type RunOptions struct {
	LangFrom string
	LangTo   string
	// ContextPath points at a prepared context file; empty generates or
	// reuses the cached one when auto-context is enabled.
	ContextPath string
	// Segment restricts correction and translation to an inclusive line
	// range. Stage artifacts get "_custom" names.
	Segment *subtitle.Range
	// OutputDir overrides the artifact directory; empty uses the input's.
	OutputDir string
}

// RunResult reports what a run produced.
type RunResult struct {
	Artifacts Artifacts
	Track     *subtitle.Track
	Final     string
}

// LangFrom resolves the source language from options and config.
func (p *Pipeline) LangFrom(opts RunOptions) string {
	if opts.LangFrom != "" {
		return opts.LangFrom
	}
	return p.cfg.Transcription.DefaultLangFrom
}

// LangTo resolves the target language from options and config.
func (p *Pipeline) LangTo(opts RunOptions) string {
	if opts.LangTo != "" {
		return opts.LangTo
	}
	return p.cfg.Translation.DefaultLangTo
}

// Run executes the full chain on input, which may be a video, an audio file,
// a transcript JSON, or an existing subtitle file. Later entry points skip
// the earlier stages.
func (p *Pipeline) Run(ctx context.Context, input string, opts RunOptions) (*RunResult, error) {
	langFrom := p.LangFrom(opts)
	langTo := p.LangTo(opts)

	art := NewArtifacts(opts.OutputDir, input, langTo, opts.Segment != nil)
	job, unlock, err := p.NewJob(art, opts.Segment)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		audioPath string
		tr        *transcript.Transcript
		track     *subtitle.Track
	)
	switch {
	case IsVideo(input):
		var detected string
		audioPath, detected, err = job.ExtractAudio(ctx, input)
		if err != nil {
			return nil, err
		}
		// Stream tags beat the config default but never an explicit flag.
		if opts.LangFrom == "" && detected != "" {
			langFrom = detected
		}
	case IsAudio(input):
		audioPath = input
	case IsTranscript(input):
		tr, err = loadTranscript(input)
		if err != nil {
			return nil, err
		}
	case IsSubtitles(input):
		track, err = subtitle.LoadSRT(input)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unrecognized input type: %s", input)
	}

	if track == nil {
		if tr == nil {
			tr, err = job.Transcribe(ctx, audioPath, langFrom)
			if err != nil {
				return nil, err
			}
		}
		track, err = job.Convert(ctx, tr)
		if err != nil {
			return nil, err
		}
	}

	if audioPath != "" {
		track, err = job.Retranscribe(ctx, track, audioPath, langFrom)
		if err != nil {
			return nil, err
		}
	} else {
		job.logger.Info("skipping two-pass correction, no audio available")
	}

	track, err = job.Fix(track)
	if err != nil {
		return nil, err
	}
	track, err = job.Pad(track)
	if err != nil {
		return nil, err
	}

	contextData, err := job.BuildContext(ctx, track, opts.ContextPath, langFrom, langTo)
	if err != nil {
		return nil, err
	}
	track, err = job.Translate(ctx, track, contextData, langFrom, langTo)
	if err != nil {
		return nil, err
	}

	job.logger.Info("run complete", "output", art.TranslatedSubs())
	return &RunResult{Artifacts: art, Track: track, Final: art.TranslatedSubs()}, nil
}

// Job threads one run's artifacts and segment scope through the stages. The
// segment range is adjusted in place whenever a stage changes the line count
// inside it.
type Job struct {
	*Pipeline
	logger  *slog.Logger
	runID   string
	art     Artifacts
	segment *subtitle.Range
}

// NewJob acquires the run lock for the artifact set and returns the job plus
// its unlock function.
func (p *Pipeline) NewJob(art Artifacts, segment *subtitle.Range) (*Job, func(), error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	lock := flock.New(art.LockFile())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, nil, fmt.Errorf("another run is already processing %s", art.Root)
	}

	job := &Job{Pipeline: p, logger: logger, runID: runID, art: art, segment: segment}
	unlock := func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", "path", art.LockFile(), "error", err)
		}
	}
	return job, unlock, nil
}

// stageContext annotates ctx with the run and stage identifiers so provider
// calls can correlate their logs with the run.
func (j *Job) stageContext(ctx context.Context, stage string) context.Context {
	return services.WithStage(services.WithRunID(ctx, j.runID), stage)
}

// ExtractAudio pulls the audio stream out of a video container, reusing an
// existing extraction. The second return is the source language read from
// the stream's metadata tags, empty when untagged.
func (j *Job) ExtractAudio(ctx context.Context, input string) (string, string, error) {
	ctx = j.stageContext(ctx, "extract")
	info, err := j.audio.Probe(ctx, input)
	if err != nil {
		return "", "", err
	}
	if info.Language != "" {
		j.logger.Info("source language read from stream tags", "lang", info.Language)
	}
	path, err := j.audio.ExtractAudio(ctx, input, "")
	if err != nil {
		return "", "", err
	}
	return path, info.Language, nil
}

// Transcribe produces the word-level transcript for the audio, chunking when
// the file exceeds the provider upload limit, and persists it as the
// transcript artifact.
func (j *Job) Transcribe(ctx context.Context, audioPath, lang string) (*transcript.Transcript, error) {
	ctx = j.stageContext(ctx, "transcribe")
	path := j.art.TranscriptJSON()
	if fileutil.Exists(path) {
		j.logger.Info("transcription skipped, artifact exists", "path", path)
		return loadTranscript(path)
	}
	if audioPath == "" {
		return nil, fmt.Errorf("transcription requires an audio file")
	}

	stt, err := j.transcriber()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("stat audio: %w", err)
	}

	var tr *transcript.Transcript
	if max := stt.MaxChunkBytes(); max > 0 && info.Size() > max {
		j.logger.Info("audio exceeds provider limit, transcribing in chunks",
			"size", info.Size(), "max", max)
		probe, err := j.audio.Probe(ctx, audioPath)
		if err != nil {
			return nil, err
		}
		engine, err := j.engine(ctx)
		if err != nil {
			return nil, err
		}
		splicer := twopass.NewSplicer(j.logger, j.audio, stt, engine,
			twopass.WithChunkConcurrency(j.cfg.Transcription.ChunkConcurrency))
		tr, err = splicer.TranscribeWindow(ctx, audioPath, 0, probe.Duration, lang)
		if err != nil {
			return nil, err
		}
	} else {
		audio, err := os.ReadFile(audioPath)
		if err != nil {
			return nil, fmt.Errorf("read audio: %w", err)
		}
		raw, err := stt.Transcribe(ctx, audio, lang)
		if err != nil {
			return nil, err
		}
		tr, err = stt.Parse(raw)
		if err != nil {
			return nil, err
		}
	}

	if err := saveTranscript(tr, path); err != nil {
		return nil, err
	}
	j.logger.Info("audio transcribed", "path", path)
	return tr, nil
}

// Convert segments the transcript into the raw subtitle track.
func (j *Job) Convert(ctx context.Context, tr *transcript.Transcript) (*subtitle.Track, error) {
	ctx = j.stageContext(ctx, "convert")
	path := j.art.RawSubs()
	if fileutil.Exists(path) {
		j.logger.Info("conversion skipped, artifact exists", "path", path)
		return subtitle.LoadSRT(path)
	}

	engine, err := j.engine(ctx)
	if err != nil {
		return nil, err
	}
	track := engine.Segment(ctx, tr)
	if err := subtitle.WriteSRT(track, path); err != nil {
		return nil, err
	}
	j.logger.Info("transcript converted", "path", path, "lines", track.Len())
	return track, nil
}

// Retranscribe re-transcribes mistimed segments (or the scoped range) from
// the source audio and splices the results back into the track.
func (j *Job) Retranscribe(ctx context.Context, track *subtitle.Track, audioPath, lang string) (*subtitle.Track, error) {
	ctx = j.stageContext(ctx, "retranscribe")
	path := j.art.TwoPassSubs()
	initial := track.Len()

	if fileutil.Exists(path) {
		j.logger.Info("retranscription skipped, artifact exists", "path", path)
		loaded, err := subtitle.LoadSRT(path)
		if err != nil {
			return nil, err
		}
		j.growSegment(loaded.Len() - initial)
		return loaded, nil
	}

	var segments [][]int
	if j.segment != nil {
		segments = [][]int{{j.segment.Start, j.segment.End}}
		j.logger.Info("retranscribing requested segment", "range", j.segment.String())
	} else {
		segments = twopass.FindSegments(j.logger, track, SegmentDetectParams(j.cfg))
		if len(segments) == 0 {
			return track, nil
		}
		segments = twopass.PadSegments(track, segments)
	}

	stt, err := j.transcriber()
	if err != nil {
		return nil, err
	}
	engine, err := j.engine(ctx)
	if err != nil {
		return nil, err
	}
	splicer := twopass.NewSplicer(j.logger, j.audio, stt, engine,
		twopass.WithChunkConcurrency(j.cfg.Transcription.ChunkConcurrency))
	if _, err := splicer.TranscribeSegments(ctx, track, segments, audioPath, lang); err != nil {
		return nil, err
	}
	track.RemoveEmpty(nil)

	j.growSegment(track.Len() - initial)
	if err := subtitle.WriteSRT(track, path); err != nil {
		return nil, err
	}
	j.logger.Info("retranscription processed", "path", path)
	return track, nil
}

// Fix merges and re-times mistimed lines, then drops emptied ones.
func (j *Job) Fix(track *subtitle.Track) (*subtitle.Track, error) {
	path := j.art.FixedSubs()
	initial := track.Len()

	if fileutil.Exists(path) {
		j.logger.Info("mistimed-line fix skipped, artifact exists", "path", path)
		loaded, err := subtitle.LoadSRT(path)
		if err != nil {
			return nil, err
		}
		j.growSegment(loaded.Len() - initial)
		return loaded, nil
	}

	mistiming.Fix(j.logger, track, LineFixParams(j.cfg), j.segment)
	track.RemoveEmpty(j.segment)

	j.growSegment(track.Len() - initial)
	if err := subtitle.WriteSRT(track, path); err != nil {
		return nil, err
	}
	j.logger.Info("mistimed lines fixed", "path", path)
	return track, nil
}

// Pad applies readability timing standards.
func (j *Job) Pad(track *subtitle.Track) (*subtitle.Track, error) {
	path := j.art.PaddedSubs()
	if fileutil.Exists(path) {
		j.logger.Info("padding skipped, artifact exists", "path", path)
		return subtitle.LoadSRT(path)
	}

	edits := mistiming.Pad(j.logger, track, PadParams(j.cfg), j.segment)
	if err := subtitle.WriteSRT(track, path); err != nil {
		return nil, err
	}
	j.logger.Info("subtitles padded", "path", path, "edits", edits)
	return track, nil
}

// BuildContext resolves the translation context: an explicit file wins, then
// the cached artifact, then grounded generation when auto-context is on.
func (j *Job) BuildContext(ctx context.Context, track *subtitle.Track, contextPath, langFrom, langTo string) (string, error) {
	ctx = j.stageContext(ctx, "context")
	if contextPath != "" {
		data, err := os.ReadFile(contextPath)
		if err != nil {
			return "", fmt.Errorf("read context: %w", err)
		}
		// Cache beside the other artifacts so a resumed run finds it
		// without the flag.
		if cache := j.art.ContextText(); contextPath != cache && !fileutil.Exists(cache) {
			if err := fileutil.CopyFile(contextPath, cache); err != nil {
				return "", fmt.Errorf("cache context: %w", err)
			}
			j.logger.Info("context cached", "path", cache)
		}
		j.logger.Info("context loaded", "path", contextPath)
		return string(data), nil
	}
	if !j.cfg.Translation.AutoContext {
		return "", nil
	}

	path := j.art.ContextText()
	if fileutil.Exists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read context: %w", err)
		}
		j.logger.Info("context loaded", "path", path)
		return string(data), nil
	}

	orch, err := j.orchestrator(ctx, j.cfg.Translation.WebsearchModel)
	if err != nil {
		return "", err
	}
	data, err := orch.GenerateContext(ctx, track, filepath.Base(j.art.Root), langFrom, langTo)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFileAtomic(path, []byte(data), 0o644); err != nil {
		return "", err
	}
	j.logger.Info("context generated", "path", path)
	return data, nil
}

// Translate replaces each line's text with its translation, batching through
// the configured provider with partial-file resume.
func (j *Job) Translate(ctx context.Context, track *subtitle.Track, contextData, langFrom, langTo string) (*subtitle.Track, error) {
	ctx = j.stageContext(ctx, "translate")
	path := j.art.TranslatedSubs()
	if fileutil.Exists(path) {
		j.logger.Info("translation skipped, artifact exists", "path", path)
		return subtitle.LoadSRT(path)
	}

	orch, err := j.orchestrator(ctx, j.cfg.Translation.DefaultModel)
	if err != nil {
		return nil, err
	}
	texts, err := orch.Translate(ctx, track, contextData, langFrom, langTo, j.art.PartialText(), j.segment)
	if err != nil {
		return nil, err
	}
	// A segment-scoped run translates only up to the segment end; lines
	// after it keep their source text.
	for i := len(texts); i < track.Len(); i++ {
		texts = append(texts, track.Line(i).Text)
	}
	if err := translate.ApplyTexts(track, texts); err != nil {
		return nil, err
	}
	if err := subtitle.WriteSRT(track, path); err != nil {
		return nil, err
	}
	j.logger.Info("subtitles translated", "path", path)
	return track, nil
}

// Segment returns the job's current scoped range, nil for full-track jobs.
func (j *Job) Segment() *subtitle.Range {
	return j.segment
}

func (j *Job) orchestrator(ctx context.Context, model string) (*translate.Orchestrator, error) {
	gen, err := j.textGenerator(ctx, model)
	if err != nil {
		return nil, err
	}
	return translate.New(logging.WithComponent(j.logger, "translate"), gen, TranslateParams(j.cfg)), nil
}

// growSegment widens the scoped range after a stage changed the line count
// inside it. The end never moves before the start.
func (j *Job) growSegment(delta int) {
	if j.segment == nil || delta == 0 {
		return
	}
	updated := j.segment.Grow(delta)
	j.logger.Debug("segment range adjusted", "delta", delta, "range", updated.String())
	*j.segment = updated
}

// FindSegments exposes mistimed-segment discovery for previews.
func (p *Pipeline) FindSegments(track *subtitle.Track) [][]int {
	return twopass.FindSegments(logging.WithComponent(p.logger, "mistiming"), track, SegmentDetectParams(p.cfg))
}

func loadTranscript(path string) (*transcript.Transcript, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var tr transcript.Transcript
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	if err := tr.Validate(); err != nil {
		return nil, fmt.Errorf("transcript %s: %w", path, err)
	}
	return &tr, nil
}

func saveTranscript(tr *transcript.Transcript, path string) error {
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
