package twopass

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"subfab/internal/mistiming"
	"subfab/internal/segmentation"
	"subfab/internal/services"
	"subfab/internal/subtitle"
)

// Splicer re-transcribes mistimed segments from the source audio and splices
// the fresh lines back into the track.
type Splicer struct {
	logger      *slog.Logger
	audio       services.AudioSource
	stt         services.Transcriber
	engine      *segmentation.Engine
	concurrency int
}

// Option configures a Splicer.
type Option func(*Splicer)

// WithChunkConcurrency sets how many audio chunks may be transcribed at once
// when a window exceeds the provider upload limit. Values below 1 are
// ignored; the default is sequential.
func WithChunkConcurrency(n int) Option {
	return func(s *Splicer) {
		if n >= 1 {
			s.concurrency = n
		}
	}
}

// NewSplicer constructs a two-pass splicer over the given capabilities.
func NewSplicer(logger *slog.Logger, audio services.AudioSource, stt services.Transcriber, engine *segmentation.Engine, opts ...Option) *Splicer {
	s := &Splicer{
		logger:      logger,
		audio:       audio,
		stt:         stt,
		engine:      engine,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindSegments detects mistimed line groups large enough to be worth
// re-transcribing and logs a timing preview for each.
func FindSegments(logger *slog.Logger, track *subtitle.Track, p mistiming.DetectParams) [][]int {
	indices := mistiming.Detect(logger, track, p)
	segments := mistiming.Groups(indices, p.MinGroupLines)
	if len(segments) == 0 {
		logger.Info("no mistimed segments found")
		return segments
	}
	for _, segment := range segments {
		start := track.Line(segment[0]).Start
		end := track.Line(segment[len(segment)-1]).End
		logger.Info("mistimed segment",
			"first_line", segment[0]+1,
			"last_line", segment[len(segment)-1]+1,
			"lines", len(segment),
			"start", start,
			"duration", end-start)
	}
	return segments
}

// PadSegments expands each segment by one line on each side as a boundary
// buffer for audio extraction, clamped to the track. Segments are returned in
// descending start order, ready for splicing.
func PadSegments(track *subtitle.Track, segments [][]int) [][]int {
	padded := make([][]int, 0, len(segments))
	ordered := make([][]int, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i][0] > ordered[j][0] })

	for _, segment := range ordered {
		expanded := append([]int(nil), segment...)
		sort.Ints(expanded)
		if expanded[0] > 0 {
			expanded = append([]int{expanded[0] - 1}, expanded...)
		}
		if last := expanded[len(expanded)-1]; last < track.Len()-1 {
			expanded = append(expanded, last+1)
		}
		padded = append(padded, expanded)
	}
	return padded
}

// SpliceDelta records one window replacement: the index range that was
// replaced and how far every later index moved.
type SpliceDelta struct {
	Replaced subtitle.Range
	Delta    int
}

// TranscribeSegments re-transcribes each segment's audio window and splices
// the result into the track in place. Segments are processed in descending
// start order so pending indices stay valid when replacement counts differ
// from the originals. Each window's shifted result is cached next to the
// audio file, keyed by the window boundaries, so re-running is a no-op read.
func (s *Splicer) TranscribeSegments(ctx context.Context, track *subtitle.Track, segments [][]int, audioPath, lang string) ([]SpliceDelta, error) {
	ordered := make([][]int, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i][0] > ordered[j][0] })

	var deltas []SpliceDelta
	for _, segment := range ordered {
		r := subtitle.NewRange(segment[0], segment[len(segment)-1])
		delta, err := s.transcribeSegment(ctx, track, r, audioPath, lang)
		if err != nil {
			return deltas, err
		}
		deltas = append(deltas, SpliceDelta{Replaced: r, Delta: delta})
	}
	if len(ordered) > 0 {
		s.logger.Info("two-pass transcription complete", "segments", len(ordered))
	}
	return deltas, nil
}

func (s *Splicer) transcribeSegment(ctx context.Context, track *subtitle.Track, r subtitle.Range, audioPath, lang string) (int, error) {
	start := track.Line(r.Start).Start
	end := track.Line(r.End).End

	cachePath := windowCachePath(audioPath, start, end)
	if _, err := os.Stat(cachePath); err == nil {
		cached, err := subtitle.LoadSRT(cachePath)
		if err != nil {
			return 0, fmt.Errorf("window cache %s: %w", cachePath, err)
		}
		s.logger.Info("reusing cached window transcription", "path", cachePath)
		return track.Splice(r, cached.Lines())
	}

	tr, err := s.TranscribeWindow(ctx, audioPath, start, end-start, lang)
	if err != nil {
		return 0, fmt.Errorf("window [%v, %v]: %w", start, end, err)
	}

	fresh := s.engine.Segment(ctx, tr)
	fresh.Shift(start)

	if err := subtitle.WriteSRT(fresh, cachePath); err != nil {
		return 0, fmt.Errorf("window cache %s: %w", cachePath, err)
	}

	delta, err := track.Splice(r, fresh.Lines())
	if err != nil {
		return 0, err
	}
	s.logger.Info("spliced re-transcribed window",
		"first_line", r.Start+1,
		"removed", r.Len(),
		"inserted", fresh.Len())
	return delta, nil
}

func windowCachePath(audioPath string, start, end time.Duration) string {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	return fmt.Sprintf("%s.%d-%d.srt", base, start.Milliseconds(), end.Milliseconds())
}
