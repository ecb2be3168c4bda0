package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"subfab/internal/language"
	"subfab/internal/media/ffprobe"
	"subfab/internal/services"
)

// codecExtensions maps an audio codec name to the container extension used
// when extracting the stream without re-encoding.
var codecExtensions = map[string]string{
	"aac":       "m4a",
	"mp3":       "mp3",
	"opus":      "ogg",
	"vorbis":    "ogg",
	"flac":      "flac",
	"ac3":       "ac3",
	"eac3":      "eac3",
	"pcm_s16le": "wav",
	"pcm_s24le": "wav",
	"pcm_f32le": "wav",
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// FFmpeg accesses source audio through the ffmpeg and ffprobe binaries.
// It implements services.AudioSource.
type FFmpeg struct {
	logger     *slog.Logger
	ffmpegBin  string
	ffprobeBin string
	run        commandRunner
}

// Option configures an FFmpeg audio source.
type Option func(*FFmpeg)

// WithBinaries overrides the ffmpeg and ffprobe binary paths. Empty values
// keep the defaults.
func WithBinaries(ffmpegBin, ffprobeBin string) Option {
	return func(f *FFmpeg) {
		if strings.TrimSpace(ffmpegBin) != "" {
			f.ffmpegBin = ffmpegBin
		}
		if strings.TrimSpace(ffprobeBin) != "" {
			f.ffprobeBin = ffprobeBin
		}
	}
}

// WithCommandRunner injects a custom command runner for tests.
func WithCommandRunner(run commandRunner) Option {
	return func(f *FFmpeg) {
		if run != nil {
			f.run = run
		}
	}
}

// NewFFmpeg constructs an ffmpeg-backed audio source.
func NewFFmpeg(logger *slog.Logger, opts ...Option) *FFmpeg {
	f := &FFmpeg{
		logger:     logger,
		ffmpegBin:  "ffmpeg",
		ffprobeBin: "ffprobe",
		run:        defaultCommandRunner,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Probe inspects the media file and reports duration, audio codec, and size.
func (f *FFmpeg) Probe(ctx context.Context, path string) (services.MediaInfo, error) {
	output, err := f.run(ctx, f.ffprobeBin,
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path)
	if err != nil {
		return services.MediaInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}
	result, err := ffprobe.Parse(output)
	if err != nil {
		return services.MediaInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}
	if n := result.AudioStreamCount(); n > 1 {
		f.logger.Debug("container has multiple audio streams, using the first", "path", path, "streams", n)
	}
	info := services.MediaInfo{
		Duration:   time.Duration(result.DurationSeconds() * float64(time.Second)),
		AudioCodec: result.AudioCodec(),
		SizeBytes:  result.SizeBytes(),
	}
	if stream, ok := result.FirstAudioStream(); ok {
		info.Language = language.ExtractFromTags(stream.Tags)
	}
	return info, nil
}

// ExtractAudio copies the first audio stream out of a video container without
// re-encoding. When dest is empty the destination is derived from the source
// name and the stream's codec. An existing destination is reused as-is.
func (f *FFmpeg) ExtractAudio(ctx context.Context, source, dest string) (string, error) {
	if dest == "" {
		info, err := f.Probe(ctx, source)
		if err != nil {
			return "", err
		}
		if info.AudioCodec == "" {
			return "", fmt.Errorf("extract audio: no audio stream in %s", source)
		}
		ext, ok := codecExtensions[info.AudioCodec]
		if !ok {
			return "", fmt.Errorf("extract audio: no container mapping for codec %q", info.AudioCodec)
		}
		base := strings.TrimSuffix(source, filepath.Ext(source))
		dest = base + "." + ext
	}

	if _, err := os.Stat(dest); err == nil {
		f.logger.Info("audio already extracted", "path", dest)
		return dest, nil
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-c:a", "copy",
		dest,
	}
	if _, err := f.run(ctx, f.ffmpegBin, args...); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	f.logger.Info("extracted audio stream", "source", source, "path", dest)
	return dest, nil
}

// CutWindow re-encodes [start, start+duration) of the source audio to Opus
// and returns the encoded bytes.
func (f *FFmpeg) CutWindow(ctx context.Context, path string, start, duration time.Duration) ([]byte, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("cut window: invalid duration %v", duration)
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", path,
		"-vn",
		"-c:a", "libopus",
		"-f", "ogg",
		"pipe:1",
	}
	output, err := f.run(ctx, f.ffmpegBin, args...)
	if err != nil {
		return nil, fmt.Errorf("cut window [%v, %v): %w", start, start+duration, err)
	}
	f.logger.Debug("cut audio window",
		"start", start,
		"duration", duration,
		"bytes", len(output))
	return output, nil
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
