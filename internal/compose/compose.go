// Package compose generates personalized outreach subject lines and bodies.
package compose

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthub/outreach-agent/internal/llm"
	"github.com/agenthub/outreach-agent/internal/prompts"
)

// ComposeError represents a failure to produce either part of a message.
type ComposeError struct {
	Part    string
	Message string
	Cause   error
}

func (e *ComposeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("compose error (%s): %s: %v", e.Part, e.Message, e.Cause)
	}
	return fmt.Sprintf("compose error (%s): %s", e.Part, e.Message)
}

func (e *ComposeError) Unwrap() error {
	return e.Cause
}

// Message is a composed outreach email.
type Message struct {
	Subject string
	Body    string
}

// Composer produces outreach messages via the LLM. Subject and body are
// generated with two independent model calls.
type Composer struct {
	client llm.Client
	logger *zap.Logger
}

// New creates a Composer.
func New(client llm.Client, logger *zap.Logger) *Composer {
	return &Composer{client: client, logger: logger}
}

// Subject generates a 3-4 word attention-grabbing subject mentioning the
// company name and "partnership".
func (c *Composer) Subject(ctx context.Context, summary, organization, firstName, lastName string) (string, error) {
	template := prompts.MustGet("outreach.json", "email-subject")
	prompt := prompts.Format(template, map[string]string{
		"Summary":      summary,
		"Organization": organization,
		"FirstName":    firstName,
		"LastName":     lastName,
	})

	text, err := c.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", &ComposeError{Part: "subject", Message: "model call failed", Cause: err}
	}

	subject := strings.TrimSpace(text)
	if subject == "" {
		return "", &ComposeError{Part: "subject", Message: "model returned empty subject"}
	}

	c.logger.Debug("generated subject", zap.String("subject", subject))
	return subject, nil
}

// Body generates a terse cold-email body matching the template's example
// emails, closing with the fixed signature block.
func (c *Composer) Body(ctx context.Context, summary, firstName, lastName string) (string, error) {
	template := prompts.MustGet("outreach.json", "email-body")
	prompt := prompts.Format(template, map[string]string{
		"Summary":   summary,
		"FirstName": firstName,
		"LastName":  lastName,
	})

	text, err := c.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", &ComposeError{Part: "body", Message: "model call failed", Cause: err}
	}

	body := strings.TrimSpace(text)
	if body == "" {
		return "", &ComposeError{Part: "body", Message: "model returned empty body"}
	}

	c.logger.Debug("generated body", zap.Int("chars", len(body)))
	return body, nil
}

// Compose generates the full message. Either part failing fails the whole
// composition.
func (c *Composer) Compose(ctx context.Context, summary, organization, firstName, lastName string) (*Message, error) {
	body, err := c.Body(ctx, summary, firstName, lastName)
	if err != nil {
		return nil, err
	}

	subject, err := c.Subject(ctx, summary, organization, firstName, lastName)
	if err != nil {
		return nil, err
	}

	return &Message{Subject: subject, Body: body}, nil
}
