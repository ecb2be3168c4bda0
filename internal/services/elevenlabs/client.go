// Package elevenlabs implements the transcription capability against the
// ElevenLabs speech-to-text API with word-level timestamps and speaker
// diarization.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"subfab/internal/services"
	"subfab/internal/transcript"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1/speech-to-text"

const defaultHTTPTimeout = time.Hour

// defaultMaxChunkBytes is the documented upload ceiling for the speech-to-text
// endpoint; clips above it must be transcribed in chunks.
const defaultMaxChunkBytes = 1 << 30

// Config captures the runtime settings for the speech-to-text client.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	MaxChunkBytes  int64
}

// Client wraps the ElevenLabs speech-to-text endpoint. It implements
// services.Transcriber.
type Client struct {
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a speech-to-text client.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:        strings.TrimSpace(cfg.APIKey),
			BaseURL:       strings.TrimSpace(cfg.BaseURL),
			Model:         strings.TrimSpace(cfg.Model),
			MaxChunkBytes: cfg.MaxChunkBytes,
		},
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.MaxChunkBytes <= 0 {
		client.cfg.MaxChunkBytes = defaultMaxChunkBytes
	}
	return client
}

// MaxChunkBytes returns the provider upload limit.
func (c *Client) MaxChunkBytes() int64 {
	return c.cfg.MaxChunkBytes
}

// Transcribe uploads audio and returns the provider's raw JSON payload.
// lang may be empty for auto-detection.
func (c *Client) Transcribe(ctx context.Context, audio []byte, lang string) ([]byte, error) {
	if len(audio) == 0 {
		return nil, errors.New("elevenlabs transcribe: empty audio")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("elevenlabs transcribe: api key required")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := map[string]string{
		"model_id":               c.cfg.Model,
		"diarize":                "true",
		"diarization_threshold":  "0.1",
		"tag_audio_events":       "false",
		"timestamps_granularity": "word",
	}
	if lang != "" {
		fields["language_code"] = lang
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("elevenlabs transcribe: form field %s: %w", key, err)
		}
	}
	part, err := form.CreateFormFile("file", "audio")
	if err != nil {
		return nil, fmt.Errorf("elevenlabs transcribe: form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("elevenlabs transcribe: write audio: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("elevenlabs transcribe: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, &body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs transcribe: new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())
	ctx = services.WithRequestID(ctx, uuid.NewString())
	req = req.WithContext(ctx)
	if id, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-ID", id)
	}

	attrs := append([]any{
		"model", c.cfg.Model,
		"bytes", len(audio),
		"lang", lang,
	}, services.ContextAttrs(ctx)...)
	c.logger.Debug("speech-to-text request", attrs...)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs transcribe: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs transcribe: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := services.ParseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &services.StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
			RetryAfter: retryAfter,
		}
	}
	return payload, nil
}

// wordPayload is one timestamped item in the provider response.
type wordPayload struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Type      string  `json:"type"`
	SpeakerID string  `json:"speaker_id"`
	LogProb   float64 `json:"logprob"`
}

// responsePayload covers both provider response shapes: the flat word list
// and the segmented variant produced for long inputs.
type responsePayload struct {
	LanguageCode string        `json:"language_code"`
	Words        []wordPayload `json:"words"`
	Segments     []struct {
		SpeakerID string        `json:"speaker_id"`
		Words     []wordPayload `json:"words"`
	} `json:"segments"`
}

// Parse converts a provider JSON payload into the canonical transcript.
// Flat word lists are grouped into segments by consecutive speaker runs.
func (c *Client) Parse(raw []byte) (*transcript.Transcript, error) {
	var payload responsePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("elevenlabs parse: %w", err)
	}

	tr := &transcript.Transcript{Language: payload.LanguageCode}
	if len(payload.Segments) > 0 {
		for _, seg := range payload.Segments {
			words := convertWords(seg.Words)
			if len(words) == 0 {
				continue
			}
			tr.Segments = append(tr.Segments, transcript.Segment{Speaker: seg.SpeakerID, Words: words})
		}
		return tr, nil
	}

	var current []transcript.Word
	currentSpeaker := ""
	flush := func() {
		if len(current) > 0 {
			tr.Segments = append(tr.Segments, transcript.Segment{Speaker: currentSpeaker, Words: current})
			current = nil
		}
	}
	for _, w := range payload.Words {
		if w.SpeakerID != currentSpeaker {
			flush()
			currentSpeaker = w.SpeakerID
		}
		current = append(current, convertWord(w))
	}
	flush()
	return tr, nil
}

func convertWords(words []wordPayload) []transcript.Word {
	out := make([]transcript.Word, 0, len(words))
	for _, w := range words {
		out = append(out, convertWord(w))
	}
	return out
}

func convertWord(w wordPayload) transcript.Word {
	kind := transcript.Kind(w.Type)
	switch kind {
	case transcript.KindWord, transcript.KindSpacing, transcript.KindAudioEvent:
	default:
		kind = transcript.KindWord
	}
	return transcript.Word{
		Text:       w.Text,
		Start:      time.Duration(w.Start * float64(time.Second)),
		End:        time.Duration(w.End * float64(time.Second)),
		Kind:       kind,
		Speaker:    w.SpeakerID,
		Confidence: w.LogProb,
	}
}
