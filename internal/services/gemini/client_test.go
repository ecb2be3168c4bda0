package gemini

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"subfab/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func candidateResponse(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
			},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gemini-2.5-pro",
	}, testLogger(), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestCompleteSendsSafetySettingsAndSystemInstruction(t *testing.T) {
	var body string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, candidateResponse("Bonjour."))
	})

	text, err := client.Complete(context.Background(), services.CompletionRequest{
		System: "You are a subtitle translator.",
		Prompt: "Translate: Hello.",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Bonjour." {
		t.Fatalf("text = %q, want %q", text, "Bonjour.")
	}

	for _, want := range []string{"Translate: Hello.", "You are a subtitle translator.", "BLOCK_NONE", "HARM_CATEGORY_SEXUALLY_EXPLICIT"} {
		if !strings.Contains(body, want) {
			t.Errorf("request body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "googleSearch") {
		t.Errorf("grounding tool sent without being requested:\n%s", body)
	}
}

func TestCompleteGroundingAddsSearchTool(t *testing.T) {
	var body string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, candidateResponse("ok"))
	})

	if _, err := client.Complete(context.Background(), services.CompletionRequest{
		Prompt:    "Summarize the show.",
		Grounding: true,
	}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(body, "googleSearch") {
		t.Errorf("request body missing search tool:\n%s", body)
	}
}

func TestCompletePrependsPrefill(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, candidateResponse(" 2. Second line"))
	})

	text, err := client.Complete(context.Background(), services.CompletionRequest{
		Prompt:  "Continue the list.",
		Prefill: "1. First line",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "1. First line 2. Second line" {
		t.Fatalf("text = %q", text)
	}
}

func TestCompleteRejectsEmptyResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[]}`)
	})

	if _, err := client.Complete(context.Background(), services.CompletionRequest{Prompt: "hi"}); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestCompleteRequiresPrompt(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	if _, err := client.Complete(context.Background(), services.CompletionRequest{}); err == nil {
		t.Fatal("expected error for missing prompt")
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{Model: "gemini-2.5-pro"}, testLogger()); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewClient(context.Background(), Config{APIKey: "k"}, testLogger()); err == nil {
		t.Fatal("expected error for missing model")
	}
}
