// Package gemini provides a text generation client backed by the Google
// Gemini API. Requests are single-shot; transport retries belong to the
// orchestrator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"subfab/internal/services"
)

// Config captures the settings needed to talk to the Gemini API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client generates text through the Gemini API. It implements
// services.TextGenerator.
type Client struct {
	cfg    Config
	logger *slog.Logger
	client *genai.Client
}

// Option adjusts client construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the HTTP client used by the SDK.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// NewClient builds a Gemini client from configuration.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini: model is required")
	}

	settings := &options{}
	for _, opt := range opts {
		opt(settings)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if settings.httpClient != nil {
		clientCfg.HTTPClient = settings.httpClient
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	inner, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{cfg: cfg, logger: logger, client: inner}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends a single prompt and returns the generated text. Safety
// filters are disabled so dialogue containing profanity or violence is not
// silently dropped mid-track.
func (c *Client) Complete(ctx context.Context, req services.CompletionRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("gemini: prompt is required")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}
	if req.Prefill != "" {
		contents = append(contents, genai.NewContentFromText(req.Prefill, genai.RoleModel))
	}

	config := &genai.GenerateContentConfig{
		SafetySettings: permissiveSafetySettings(),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Grounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	ctx = services.WithRequestID(ctx, uuid.NewString())
	attrs := append([]any{
		"model", c.cfg.Model,
		"prompt_bytes", len(req.Prompt),
		"grounding", req.Grounding,
	}, services.ContextAttrs(ctx)...)
	c.logger.Debug("generate content request", attrs...)

	result, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, config)
	if err != nil {
		return "", translateError(err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: empty completion response")
	}
	if req.Prefill != "" {
		text = req.Prefill + text
	}
	return text, nil
}

func permissiveSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}
	return settings
}

// translateError maps SDK errors onto StatusError so the orchestrator's
// transient detection and backoff apply uniformly across providers.
func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &services.StatusError{
			StatusCode: apiErr.Code,
			Body:       apiErr.Message,
		}
	}
	return fmt.Errorf("gemini: generate content: %w", err)
}
