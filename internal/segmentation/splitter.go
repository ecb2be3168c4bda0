package segmentation

import (
	"context"
	"fmt"
	"strings"

	"subfab/internal/services"
)

// Splitter proposes a two-line break for text that exceeds the hard length
// limit. Implementations must not alter wording or punctuation; the engine
// validates the result against the source text regardless.
type Splitter interface {
	Split(ctx context.Context, text string) (first, second string, err error)
}

const splitterSystemPrompt = "Provide only the requested text without commentary or special formatting."

// LLMSplitter implements Splitter through a text-generation capability.
type LLMSplitter struct {
	gen services.TextGenerator
}

// NewLLMSplitter wraps a text generator as a line splitter.
func NewLLMSplitter(gen services.TextGenerator) *LLMSplitter {
	return &LLMSplitter{gen: gen}
}

// Split requests a logical two-line break for the given text.
func (s *LLMSplitter) Split(ctx context.Context, text string) (string, string, error) {
	prompt := fmt.Sprintf(
		"Split the following text into two lines at a logical point without modifications to the text or punctuation:\n%s",
		text,
	)
	reply, err := s.gen.Complete(ctx, services.CompletionRequest{
		System: splitterSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return "", "", fmt.Errorf("split line: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(reply), "\n")
	if len(lines) != 2 {
		return "", "", fmt.Errorf("split line: expected 2 lines, got %d", len(lines))
	}
	return lines[0], lines[1], nil
}
