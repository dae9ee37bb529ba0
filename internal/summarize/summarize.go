// Package summarize generates concise company summaries from website text.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthub/outreach-agent/internal/llm"
	"github.com/agenthub/outreach-agent/internal/prompts"
)

// GenerationError represents a failure to produce a summary.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summary generation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("summary generation error: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Summarizer produces company summaries via the LLM.
type Summarizer struct {
	client llm.Client
	logger *zap.Logger
}

// New creates a Summarizer.
func New(client llm.Client, logger *zap.Logger) *Summarizer {
	return &Summarizer{client: client, logger: logger}
}

// Summarize asks the model for a sub-75-word value-proposition summary of
// the excerpt. The word bound is advisory to the model, not enforced.
func (s *Summarizer) Summarize(ctx context.Context, excerpt string) (string, error) {
	template := prompts.MustGet("outreach.json", "summarize-company")
	prompt := prompts.Format(template, map[string]string{
		"Content": excerpt,
	})

	text, err := s.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", &GenerationError{Message: "model call failed", Cause: err}
	}

	summary := strings.TrimSpace(text)
	if summary == "" {
		return "", &GenerationError{Message: "model returned empty summary"}
	}

	s.logger.Debug("generated summary", zap.Int("chars", len(summary)))
	return summary, nil
}
