package services

import (
	"context"
	"time"

	"subfab/internal/transcript"
)

// CompletionRequest describes one text-generation call.
type CompletionRequest struct {
	System string
	Prompt string
	// Prefill seeds the assistant turn on providers that support it.
	Prefill string
	// Grounding requests web-search augmentation on providers that support it.
	Grounding bool
}

// TextGenerator produces a completion for a prompt. Calls are synchronous and
// bounded by the implementation's configured timeout.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Model returns the provider model identifier for logging and rate-limit
	// heuristics.
	Model() string
}

// Transcriber converts audio bytes into a word-level transcript.
type Transcriber interface {
	// Transcribe returns the provider's native JSON payload. lang may be empty
	// for auto-detection.
	Transcribe(ctx context.Context, audio []byte, lang string) ([]byte, error)
	// Parse converts provider-native JSON into the canonical transcript.
	Parse(raw []byte) (*transcript.Transcript, error)
	// MaxChunkBytes is the provider upload limit; 0 means unlimited.
	MaxChunkBytes() int64
}

// MediaInfo describes a probed media file.
type MediaInfo struct {
	Duration   time.Duration
	AudioCodec string
	SizeBytes  int64
	// Language is the normalized two-letter code from the audio stream's
	// metadata tags, empty when untagged.
	Language string
}

// AudioSource provides windowed access to source audio.
type AudioSource interface {
	Probe(ctx context.Context, path string) (MediaInfo, error)
	// CutWindow extracts [startSec, startSec+durationSec) re-encoded to a
	// compact codec suitable for transcription uploads.
	CutWindow(ctx context.Context, path string, start, duration time.Duration) ([]byte, error)
}
