package ffprobe

import "testing"

func TestParseExtractsAudioMetadata(t *testing.T) {
	payload := []byte(`{
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264"},
			{"index": 1, "codec_type": "audio", "codec_name": "aac", "channels": 2},
			{"index": 2, "codec_type": "audio", "codec_name": "opus", "channels": 6}
		],
		"format": {"filename": "movie.mkv", "duration": "123.45", "size": "1000"}
	}`)

	result, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.AudioCodec() != "aac" {
		t.Fatalf("expected first audio codec aac, got %q", result.AudioCodec())
	}
	stream, ok := result.FirstAudioStream()
	if !ok || stream.Index != 1 {
		t.Fatalf("expected first audio stream at index 1, got %+v ok=%v", stream, ok)
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
		},
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.AudioCodec() != "" {
		t.Fatalf("expected no audio codec, got %q", result.AudioCodec())
	}
}
