// Package drafts stages outreach emails as Gmail drafts.
package drafts

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
)

// PublishError represents a failure to create a draft.
type PublishError struct {
	To      string
	Message string
	Cause   error
}

func (e *PublishError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("draft publish error for %s: %s: %v", e.To, e.Message, e.Cause)
	}
	return fmt.Sprintf("draft publish error for %s: %s", e.To, e.Message)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}

// BuildRawMessage assembles an RFC 2822 message with To and Subject headers
// and encodes it as URL-safe base64 over UTF-8 bytes, as required by the
// Gmail API's raw-message field.
func BuildRawMessage(to, subject, body string) string {
	var sb strings.Builder
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(sb.String()))
}

// Publisher creates drafts via the Gmail API.
type Publisher struct {
	svc    *gmail.Service
	logger *zap.Logger
}

// NewPublisher creates a Publisher.
func NewPublisher(svc *gmail.Service, logger *zap.Logger) *Publisher {
	return &Publisher{svc: svc, logger: logger}
}

// CreateDraft stages a message as a draft (not sent) and returns the draft
// ID assigned by the mail API.
func (p *Publisher) CreateDraft(ctx context.Context, to, subject, body string) (string, error) {
	draft := &gmail.Draft{
		Message: &gmail.Message{
			Raw: BuildRawMessage(to, subject, body),
		},
	}

	created, err := p.svc.Users.Drafts.Create("me", draft).Context(ctx).Do()
	if err != nil {
		return "", &PublishError{To: to, Message: "drafts.create failed", Cause: err}
	}

	p.logger.Info("created draft",
		zap.String("to", to), zap.String("draft_id", created.Id))
	return created.Id, nil
}
