package pipeline

import (
	"path/filepath"
	"strings"
)

// Artifacts computes the on-disk names for every stage output of one run.
// All artifacts share a root derived from the input file name; a run scoped
// to a line range writes "_custom" variants so full-track artifacts are
// never clobbered by partial work.
type Artifacts struct {
	// Root is the output directory joined with the input base name, without
	// extension.
	Root string
	// Lang is the translation target used in the final artifact name.
	Lang string
	// Custom marks a run scoped to a line range.
	Custom bool
}

// NewArtifacts derives artifact names for input, writing into dir. When dir
// is empty the input's own directory is used.
func NewArtifacts(dir, input, lang string, custom bool) Artifacts {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return Artifacts{
		Root:   filepath.Join(dir, base),
		Lang:   lang,
		Custom: custom,
	}
}

// TranscriptJSON is the canonical word-level transcript.
func (a Artifacts) TranscriptJSON() string {
	return a.Root + ".json"
}

// RawSubs is the first segmentation of the transcript.
func (a Artifacts) RawSubs() string {
	if a.Custom {
		return a.Root + ".raw_custom.srt"
	}
	return a.Root + ".raw.srt"
}

// TwoPassSubs is the track after mistimed segments were re-transcribed.
func (a Artifacts) TwoPassSubs() string {
	if a.Custom {
		return a.Root + ".2pass_custom.srt"
	}
	return a.Root + ".2pass.srt"
}

// FixedSubs is the track after mistimed-line correction.
func (a Artifacts) FixedSubs() string {
	if a.Custom {
		return a.Root + ".fixed_custom.srt"
	}
	return a.Root + ".fixed.srt"
}

// PaddedSubs is the track after readability padding.
func (a Artifacts) PaddedSubs() string {
	if a.Custom {
		return a.Root + ".padded_custom.srt"
	}
	return a.Root + ".padded.srt"
}

// TranslatedSubs is the final translated track.
func (a Artifacts) TranslatedSubs() string {
	if a.Custom {
		return a.Root + ".tr_custom.srt"
	}
	return a.Root + "." + a.Lang + ".srt"
}

// PartialText holds per-batch translation progress for resume.
func (a Artifacts) PartialText() string {
	if a.Custom {
		return a.Root + ".partial.tr_custom.txt"
	}
	return a.Root + ".partial." + a.Lang + ".txt"
}

// ContextText is the cached translation context and glossary.
func (a Artifacts) ContextText() string {
	return a.Root + ".context.txt"
}

// LockFile guards the artifact set against concurrent runs.
func (a Artifacts) LockFile() string {
	return a.Root + ".lock"
}

var videoExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".m4v": {}, ".mov": {}, ".webm": {}, ".avi": {}, ".ts": {},
}

var audioExtensions = map[string]struct{}{
	".flac": {}, ".mp3": {}, ".m4a": {}, ".aac": {}, ".ogg": {}, ".opus": {},
	".wav": {}, ".ac3": {}, ".eac3": {}, ".wma": {},
}

// IsVideo reports whether path looks like a video container.
func IsVideo(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsAudio reports whether path looks like an audio file.
func IsAudio(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsTranscript reports whether path looks like a transcript JSON.
func IsTranscript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// IsSubtitles reports whether path looks like a subtitle file.
func IsSubtitles(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".srt")
}
