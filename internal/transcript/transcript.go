// Package transcript holds the canonical word-level model produced by
// speech-to-text providers and consumed by the segmentation engine.
package transcript

import (
	"fmt"
	"time"
)

// Kind classifies a transcribed item.
type Kind string

const (
	KindWord       Kind = "word"
	KindSpacing    Kind = "spacing"
	KindAudioEvent Kind = "audio_event"
)

// Word is a single timestamped token from a provider. Durations marshal as
// nanoseconds in persisted artifacts.
type Word struct {
	Text       string        `json:"text"`
	Start      time.Duration `json:"start"`
	End        time.Duration `json:"end"`
	Kind       Kind          `json:"kind"`
	Speaker    string        `json:"speaker,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
}

// Segment is an ordered run of words sharing a speaker or grouping boundary.
type Segment struct {
	Speaker string `json:"speaker,omitempty"`
	Words   []Word `json:"words"`
}

// Transcript is the full provider output: ordered segments plus the detected
// language, immutable once parsed.
type Transcript struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language,omitempty"`
}

// Validate checks the invariants the segmentation engine relies on: word
// timestamps ordered within each segment and start <= end per word.
func (t *Transcript) Validate() error {
	for si, seg := range t.Segments {
		var prevStart time.Duration
		for wi, w := range seg.Words {
			if w.End < w.Start {
				return fmt.Errorf("transcript: segment %d word %d: end before start", si, wi)
			}
			if w.Start < prevStart {
				return fmt.Errorf("transcript: segment %d word %d: out of order", si, wi)
			}
			prevStart = w.Start
		}
	}
	return nil
}

// Shift moves every word timestamp by the given offset. Used when splicing
// chunked or windowed transcriptions back into absolute time.
func (t *Transcript) Shift(offset time.Duration) {
	for si := range t.Segments {
		for wi := range t.Segments[si].Words {
			t.Segments[si].Words[wi].Start += offset
			t.Segments[si].Words[wi].End += offset
		}
	}
}

// Append merges another transcript after this one. Caller is responsible for
// having shifted the other transcript into absolute time first.
func (t *Transcript) Append(other *Transcript) {
	if other == nil {
		return
	}
	if t.Language == "" {
		t.Language = other.Language
	}
	t.Segments = append(t.Segments, other.Segments...)
}
