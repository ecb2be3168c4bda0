package twopass

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"subfab/internal/transcript"
)

// TranscribeWindow transcribes [start, start+duration) of the audio at path.
// When the encoded clip exceeds the provider's upload limit the window is cut
// into evenly sized chunks, each transcribed separately with its offset added
// back, and the results merged in chunk order. Returned timestamps are
// relative to the window start.
func (s *Splicer) TranscribeWindow(ctx context.Context, path string, start, duration time.Duration, lang string) (*transcript.Transcript, error) {
	clip, err := s.audio.CutWindow(ctx, path, start, duration)
	if err != nil {
		return nil, err
	}

	maxBytes := s.stt.MaxChunkBytes()
	if maxBytes <= 0 || int64(len(clip)) <= maxBytes {
		raw, err := s.stt.Transcribe(ctx, clip, lang)
		if err != nil {
			return nil, err
		}
		return s.stt.Parse(raw)
	}

	offsets := chunkOffsets(int64(len(clip)), maxBytes, duration)
	s.logger.Info("chunking oversized audio window",
		"clip_bytes", len(clip),
		"max_bytes", maxBytes,
		"chunks", len(offsets))

	results := make([]*transcript.Transcript, len(offsets))
	errs := make([]error, len(offsets))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i, offset := range offsets {
		length := duration - offset
		if i+1 < len(offsets) {
			length = offsets[i+1] - offset
		}
		wg.Add(1)
		go func(i int, offset, length time.Duration) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = s.transcribeChunk(ctx, path, start+offset, length, offset, lang)
		}(i, offset, length)
	}
	wg.Wait()

	merged := &transcript.Transcript{}
	for i := range offsets {
		if errs[i] != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(offsets), errs[i])
		}
		merged.Append(results[i])
	}
	return merged, nil
}

func (s *Splicer) transcribeChunk(ctx context.Context, path string, absStart, length, offset time.Duration, lang string) (*transcript.Transcript, error) {
	chunk, err := s.audio.CutWindow(ctx, path, absStart, length)
	if err != nil {
		return nil, err
	}
	raw, err := s.stt.Transcribe(ctx, chunk, lang)
	if err != nil {
		return nil, err
	}
	tr, err := s.stt.Parse(raw)
	if err != nil {
		return nil, err
	}
	tr.Shift(offset)
	return tr, nil
}

// chunkOffsets computes evenly distributed chunk start offsets for a clip of
// clipBytes spanning duration. Chunk length is derived from the clip's
// average byte rate with a 5% safety margin under the provider limit.
func chunkOffsets(clipBytes, maxBytes int64, duration time.Duration) []time.Duration {
	safeMax := float64(maxBytes) * 0.95
	bytesPerSecond := float64(clipBytes) / duration.Seconds()
	maxChunkSeconds := safeMax / bytesPerSecond

	numChunks := int(math.Ceil(duration.Seconds() / maxChunkSeconds))
	if numChunks < 2 {
		numChunks = 2
	}
	chunkLength := time.Duration(math.Ceil(duration.Seconds()/float64(numChunks)*1000)) * time.Millisecond

	var offsets []time.Duration
	for offset := time.Duration(0); offset < duration; offset += chunkLength {
		offsets = append(offsets, offset)
	}
	return offsets
}
