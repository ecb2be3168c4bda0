package elevenlabs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"subfab/internal/services"
	"subfab/internal/transcript"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTranscribeUploadsMultipartForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get("xi-api-key"); key != "test-key" {
			t.Errorf("unexpected api key header %q", key)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("model_id"); got != "scribe_v1" {
			t.Errorf("unexpected model_id %q", got)
		}
		if got := r.FormValue("language_code"); got != "ja" {
			t.Errorf("unexpected language_code %q", got)
		}
		if got := r.FormValue("timestamps_granularity"); got != "word" {
			t.Errorf("unexpected granularity %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			data, _ := io.ReadAll(file)
			if string(data) != "opus-bytes" {
				t.Errorf("unexpected audio payload %q", data)
			}
		}
		io.WriteString(w, `{"language_code":"ja","words":[]}`)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "scribe_v1"}, testLogger())
	raw, err := client.Transcribe(context.Background(), []byte("opus-bytes"), "ja")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected raw payload")
	}
}

func TestTranscribeSurfacesStatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "overloaded")
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "scribe_v1"}, testLogger())
	_, err := client.Transcribe(context.Background(), []byte("audio"), "")

	var statusErr *services.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !services.IsTransient(err) {
		t.Fatal("expected 503 to classify as transient")
	}
}

func TestParseGroupsFlatWordsBySpeakerRuns(t *testing.T) {
	raw := []byte(`{
		"language_code": "ja",
		"words": [
			{"text": "Hi", "start": 0.0, "end": 0.5, "type": "word", "speaker_id": "speaker_0"},
			{"text": " ", "start": 0.5, "end": 0.5, "type": "spacing", "speaker_id": "speaker_0"},
			{"text": "there.", "start": 0.5, "end": 1.2, "type": "word", "speaker_id": "speaker_0"},
			{"text": "Hello.", "start": 1.5, "end": 2.0, "type": "word", "speaker_id": "speaker_1"}
		]
	}`)

	client := NewClient(Config{APIKey: "k"}, testLogger())
	tr, err := client.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tr.Language != "ja" {
		t.Fatalf("unexpected language %q", tr.Language)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("expected 2 speaker segments, got %d", len(tr.Segments))
	}
	first := tr.Segments[0]
	if first.Speaker != "speaker_0" || len(first.Words) != 3 {
		t.Fatalf("unexpected first segment %+v", first)
	}
	if first.Words[1].Kind != transcript.KindSpacing {
		t.Fatalf("expected spacing kind, got %q", first.Words[1].Kind)
	}
	if first.Words[2].End != 1200*time.Millisecond {
		t.Fatalf("unexpected end %v", first.Words[2].End)
	}
	if tr.Segments[1].Speaker != "speaker_1" {
		t.Fatalf("unexpected second segment speaker %q", tr.Segments[1].Speaker)
	}
}

func TestParseAcceptsSegmentedResponses(t *testing.T) {
	raw := []byte(`{
		"language_code": "en",
		"segments": [
			{"speaker_id": "speaker_0", "words": [
				{"text": "One.", "start": 0.0, "end": 1.0, "type": "word"}
			]},
			{"speaker_id": "speaker_1", "words": []}
		]
	}`)

	client := NewClient(Config{APIKey: "k"}, testLogger())
	tr, err := client.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tr.Segments) != 1 {
		t.Fatalf("expected empty segment dropped, got %d segments", len(tr.Segments))
	}
	if tr.Segments[0].Words[0].Text != "One." {
		t.Fatalf("unexpected word %+v", tr.Segments[0].Words[0])
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	client := NewClient(Config{APIKey: "k"}, testLogger())
	if _, err := client.Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMaxChunkBytesDefaultsWhenUnset(t *testing.T) {
	client := NewClient(Config{APIKey: "k"}, testLogger())
	if client.MaxChunkBytes() != defaultMaxChunkBytes {
		t.Fatalf("unexpected default %d", client.MaxChunkBytes())
	}
	client = NewClient(Config{APIKey: "k", MaxChunkBytes: 42}, testLogger())
	if client.MaxChunkBytes() != 42 {
		t.Fatalf("expected override 42, got %d", client.MaxChunkBytes())
	}
}
