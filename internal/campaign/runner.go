// Package campaign orchestrates the outbound-sales pipeline: one pass over
// the company list, driving fetch, extraction, summarization, contact
// lookup, composition, draft publishing, and outcome logging in fixed order.
package campaign

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthub/outreach-agent/internal/compose"
	"github.com/agenthub/outreach-agent/internal/contacts"
)

// ContentFetcher retrieves raw markup for a company URL.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TextExtractor strips non-content markup and returns a plain-text excerpt.
type TextExtractor interface {
	Extract(html string) (string, error)
}

// Summarizer produces a company summary from an excerpt.
type Summarizer interface {
	Summarize(ctx context.Context, excerpt string) (string, error)
}

// ContactFinder looks up known addresses for a company's domain. It never
// fails: an empty email list with a populated domain is the failure shape.
type ContactFinder interface {
	FindContacts(ctx context.Context, companyURL string) *contacts.Lookup
}

// Composer produces the outreach subject and body.
type Composer interface {
	Compose(ctx context.Context, summary, organization, firstName, lastName string) (*compose.Message, error)
}

// DraftPublisher stages a message as a mail draft and returns its ID.
type DraftPublisher interface {
	CreateDraft(ctx context.Context, to, subject, body string) (string, error)
}

// OutcomeLog appends per-company rows to the campaign spreadsheet.
type OutcomeLog interface {
	AppendSuccess(ctx context.Context, companyURL, contactEmail, contactName string) error
	AppendFailure(ctx context.Context, domain string) error
}

// RunHistory optionally persists per-company results.
type RunHistory interface {
	RecordOutcome(ctx context.Context, runID uuid.UUID, res CompanyResult) error
}

// Runner drives the campaign. All collaborators are injected; every field
// except History and RunID is required.
type Runner struct {
	Fetcher    ContentFetcher
	Extractor  TextExtractor
	Summarizer Summarizer
	Contacts   ContactFinder
	Composer   Composer
	Publisher  DraftPublisher
	Log        OutcomeLog
	History    RunHistory
	RunID      uuid.UUID
	Logger     *zap.Logger
}

// Run processes every company URL in input order, sequentially. A single
// company's failure never aborts the campaign; cancellation between
// companies does, returning the context error with the partial tally.
func (r *Runner) Run(ctx context.Context, companyURLs []string) (*Tally, error) {
	tally := &Tally{}

	for i, companyURL := range companyURLs {
		if err := ctx.Err(); err != nil {
			return tally, err
		}

		r.Logger.Info("processing company",
			zap.Int("index", i+1),
			zap.Int("total", len(companyURLs)),
			zap.String("url", companyURL))

		res := r.processCompany(ctx, companyURL)
		tally.apply(res)

		if r.History != nil {
			if err := r.History.RecordOutcome(ctx, r.RunID, res); err != nil {
				r.Logger.Warn("failed to record outcome", zap.Error(err))
			}
		}
	}

	r.Logger.Info("campaign completed",
		zap.Int("total", len(companyURLs)),
		zap.Int("processed", tally.Processed),
		zap.Int("successes", tally.Successes),
		zap.Int("failures", tally.Failures),
		zap.Int("errors", tally.Errors))

	return tally, nil
}

// processCompany runs the fixed step sequence for one company and returns
// its terminal classification. A panic anywhere in the steps is recovered
// here and classified as an error.
func (r *Runner) processCompany(ctx context.Context, companyURL string) (res CompanyResult) {
	res = CompanyResult{CompanyURL: companyURL}

	defer func() {
		if p := recover(); p != nil {
			r.Logger.Error("panic while processing company",
				zap.String("url", companyURL), zap.Any("panic", p))
			res.Outcome = OutcomeError
			res.Stage = StagePanic
			res.Reason = fmt.Sprint(p)
			res.Processed = false
		}
	}()

	html, err := r.Fetcher.Fetch(ctx, companyURL)
	if err != nil {
		r.Logger.Warn("skipping company: fetch failed",
			zap.String("url", companyURL), zap.Error(err))
		res.Outcome = OutcomeError
		res.Stage = StageFetch
		res.Reason = err.Error()
		return res
	}

	excerpt, err := r.Extractor.Extract(html)
	if err != nil || excerpt == "" {
		r.Logger.Warn("skipping company: no usable text",
			zap.String("url", companyURL), zap.Error(err))
		res.Outcome = OutcomeError
		res.Stage = StageExtract
		if err != nil {
			res.Reason = err.Error()
		} else {
			res.Reason = "no usable content"
		}
		return res
	}

	summary, err := r.Summarizer.Summarize(ctx, excerpt)
	if err != nil {
		r.Logger.Warn("skipping company: summarization failed",
			zap.String("url", companyURL), zap.Error(err))
		res.Outcome = OutcomeError
		res.Stage = StageSummarize
		res.Reason = err.Error()
		return res
	}

	lookup := r.Contacts.FindContacts(ctx, companyURL)
	res.Domain = lookup.Domain
	res.Processed = true

	if len(lookup.Emails) == 0 {
		r.Logger.Info("no emails found",
			zap.String("url", companyURL), zap.String("domain", lookup.Domain))
		if logErr := r.Log.AppendFailure(ctx, lookup.Domain); logErr != nil {
			r.Logger.Warn("failed to write failure log", zap.Error(logErr))
		}
		res.Outcome = OutcomeFailure
		return res
	}

	// Only the first discovered address is used; no ranking, no dedup.
	first := lookup.Emails[0]
	res.ContactEmail = first.Value
	res.ContactName = strings.TrimSpace(first.FirstName + " " + first.LastName)

	msg, err := r.Composer.Compose(ctx, summary, lookup.Organization, first.FirstName, first.LastName)
	if err != nil {
		r.Logger.Warn("failed to compose message",
			zap.String("url", companyURL), zap.Error(err))
		res.Outcome = OutcomeError
		res.Stage = StageCompose
		res.Reason = err.Error()
		return res
	}

	draftID, err := r.Publisher.CreateDraft(ctx, first.Value, msg.Subject, msg.Body)
	if err != nil {
		r.Logger.Warn("failed to publish draft",
			zap.String("url", companyURL), zap.Error(err))
		res.Outcome = OutcomeError
		res.Stage = StagePublish
		res.Reason = err.Error()
		return res
	}
	res.DraftID = draftID

	// The success stands even if the log append fails.
	if logErr := r.Log.AppendSuccess(ctx, companyURL, res.ContactEmail, res.ContactName); logErr != nil {
		r.Logger.Warn("failed to write success log", zap.Error(logErr))
	}

	r.Logger.Info("company completed",
		zap.String("url", companyURL),
		zap.String("contact", res.ContactEmail),
		zap.String("draft_id", draftID))
	res.Outcome = OutcomeSuccess
	return res
}
