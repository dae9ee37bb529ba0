package campaign

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agenthub/outreach-agent/internal/compose"
	"github.com/agenthub/outreach-agent/internal/contacts"
)

// Collaborator fakes. Hook functions allow per-URL behavior; unset hooks
// return the happy-path defaults.

type fakeFetcher struct {
	calls  []string
	onPage func(url string) (string, error)
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if f.onPage != nil {
		return f.onPage(url)
	}
	return "<html><body>company site</body></html>", nil
}

type fakeExtractor struct {
	calls  int
	onText func(html string) (string, error)
}

func (f *fakeExtractor) Extract(html string) (string, error) {
	f.calls++
	if f.onText != nil {
		return f.onText(html)
	}
	return "extracted text", nil
}

type fakeSummarizer struct {
	calls     int
	onSummary func(excerpt string) (string, error)
}

func (f *fakeSummarizer) Summarize(_ context.Context, excerpt string) (string, error) {
	f.calls++
	if f.onSummary != nil {
		return f.onSummary(excerpt)
	}
	return "a fine company", nil
}

type fakeContacts struct {
	calls    int
	onLookup func(companyURL string) *contacts.Lookup
}

func (f *fakeContacts) FindContacts(_ context.Context, companyURL string) *contacts.Lookup {
	f.calls++
	if f.onLookup != nil {
		return f.onLookup(companyURL)
	}
	return &contacts.Lookup{
		Domain:       contacts.DeriveDomain(companyURL),
		Organization: "Example Inc",
		Emails: []contacts.Email{
			{Value: "a@x.com", FirstName: "A", LastName: "B"},
		},
	}
}

type fakeComposer struct {
	calls     int
	onCompose func() (*compose.Message, error)
}

func (f *fakeComposer) Compose(_ context.Context, _, _, _, _ string) (*compose.Message, error) {
	f.calls++
	if f.onCompose != nil {
		return f.onCompose()
	}
	return &compose.Message{Subject: "subject", Body: "body"}, nil
}

type publishCall struct {
	to, subject, body string
}

type fakePublisher struct {
	calls     []publishCall
	onPublish func() (string, error)
}

func (f *fakePublisher) CreateDraft(_ context.Context, to, subject, body string) (string, error) {
	f.calls = append(f.calls, publishCall{to, subject, body})
	if f.onPublish != nil {
		return f.onPublish()
	}
	return "draft-1", nil
}

type successRow struct {
	companyURL, email, name string
}

type fakeLog struct {
	successes  []successRow
	failures   []string
	successErr error
	failureErr error
}

func (f *fakeLog) AppendSuccess(_ context.Context, companyURL, contactEmail, contactName string) error {
	f.successes = append(f.successes, successRow{companyURL, contactEmail, contactName})
	return f.successErr
}

func (f *fakeLog) AppendFailure(_ context.Context, domain string) error {
	f.failures = append(f.failures, domain)
	return f.failureErr
}

type fakeHistory struct {
	records []CompanyResult
}

func (f *fakeHistory) RecordOutcome(_ context.Context, _ uuid.UUID, res CompanyResult) error {
	f.records = append(f.records, res)
	return nil
}

// testRunner bundles a runner with its fakes for assertions.
type testRunner struct {
	runner     *Runner
	fetcher    *fakeFetcher
	extractor  *fakeExtractor
	summarizer *fakeSummarizer
	contacts   *fakeContacts
	composer   *fakeComposer
	publisher  *fakePublisher
	log        *fakeLog
	history    *fakeHistory
}

func newTestRunner() *testRunner {
	tr := &testRunner{
		fetcher:    &fakeFetcher{},
		extractor:  &fakeExtractor{},
		summarizer: &fakeSummarizer{},
		contacts:   &fakeContacts{},
		composer:   &fakeComposer{},
		publisher:  &fakePublisher{},
		log:        &fakeLog{},
		history:    &fakeHistory{},
	}
	tr.runner = &Runner{
		Fetcher:    tr.fetcher,
		Extractor:  tr.extractor,
		Summarizer: tr.summarizer,
		Contacts:   tr.contacts,
		Composer:   tr.composer,
		Publisher:  tr.publisher,
		Log:        tr.log,
		History:    tr.history,
		RunID:      uuid.New(),
		Logger:     zap.NewNop(),
	}
	return tr
}

func TestRun_SuccessPath(t *testing.T) {
	tr := newTestRunner()

	tally, err := tr.runner.Run(context.Background(), []string{"https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Successes)
	assert.Equal(t, 0, tally.Failures)
	assert.Equal(t, 0, tally.Errors)
	assert.Equal(t, 1, tally.Processed)

	// Success log receives exactly one row with the full contact name
	require.Len(t, tr.log.successes, 1)
	assert.Equal(t, successRow{"https://example.com", "a@x.com", "A B"}, tr.log.successes[0])
	assert.Empty(t, tr.log.failures)

	// Draft was published to the first discovered address
	require.Len(t, tr.publisher.calls, 1)
	assert.Equal(t, "a@x.com", tr.publisher.calls[0].to)
}

func TestRun_NoEmailsIsFailureNotError(t *testing.T) {
	tr := newTestRunner()
	tr.contacts.onLookup = func(string) *contacts.Lookup {
		return &contacts.Lookup{Domain: "example.com"}
	}

	tally, err := tr.runner.Run(context.Background(), []string{"https://www.example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Failures)
	assert.Equal(t, 0, tally.Errors)
	assert.Equal(t, 1, tally.Processed)

	// Failure log receives exactly one row keyed by domain
	assert.Equal(t, []string{"example.com"}, tr.log.failures)
	assert.Empty(t, tr.log.successes)
	assert.Equal(t, 0, tr.composer.calls)
	assert.Empty(t, tr.publisher.calls)
}

func TestRun_FetchFailureShortCircuits(t *testing.T) {
	tr := newTestRunner()
	tr.fetcher.onPage = func(string) (string, error) {
		return "", fmt.Errorf("timeout")
	}

	tally, err := tr.runner.Run(context.Background(), []string{"https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Errors)
	assert.Equal(t, 0, tally.Processed)

	// No downstream component runs for a company that failed to fetch
	assert.Equal(t, 0, tr.extractor.calls)
	assert.Equal(t, 0, tr.summarizer.calls)
	assert.Equal(t, 0, tr.contacts.calls)
	assert.Equal(t, 0, tr.composer.calls)
	assert.Empty(t, tr.publisher.calls)
	assert.Empty(t, tr.log.successes)
	assert.Empty(t, tr.log.failures)

	require.Len(t, tr.history.records, 1)
	assert.Equal(t, StageFetch, tr.history.records[0].Stage)
}

func TestRun_EmptyExtractIsError(t *testing.T) {
	tr := newTestRunner()
	tr.extractor.onText = func(string) (string, error) { return "", nil }

	tally, err := tr.runner.Run(context.Background(), []string{"https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Errors)
	assert.Equal(t, 0, tally.Processed)
	assert.Equal(t, 0, tr.summarizer.calls)
}

func TestRun_SummarizeFailureIsError(t *testing.T) {
	tr := newTestRunner()
	tr.summarizer.onSummary = func(string) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}

	tally, err := tr.runner.Run(context.Background(), []string{"https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Errors)
	assert.Equal(t, 0, tally.Processed)
	assert.Equal(t, 0, tr.contacts.calls)
}

func TestRun_ComposeFailureIsError(t *testing.T) {
	tr := newTestRunner()
	tr.composer.onCompose = func() (*compose.Message, error) {
		return nil, fmt.Errorf("empty subject")
	}

	tally, err := tr.runner.Run(context.Background(), []string{"https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Errors)
	// The company reached the contact branch, so it counts as processed
	assert.Equal(t, 1, tally.Processed)
	assert.Empty(t, tr.publisher.calls)

	require.Len(t, tr.history.records, 1)
	assert.Equal(t, StageCompose, tr.history.records[0].Stage)
}

func TestRun_PublishFailureIsNamedError(t *testing.T) {
	tr := newTestRunner()
	tr.publisher.onPublish = func() (string, error) {
		return "", fmt.Errorf("insufficient scope")
	}

	tally, err := tr.runner.Run(context.Background(), []string{"https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Errors)
	assert.Equal(t, 1, tally.Processed)

	// Neither log receives a row: the failure range records lookup misses
	// only, and the success log requires a staged draft
	assert.Empty(t, tr.log.successes)
	assert.Empty(t, tr.log.failures)

	require.Len(t, tr.history.records, 1)
	assert.Equal(t, OutcomeError, tr.history.records[0].Outcome)
	assert.Equal(t, StagePublish, tr.history.records[0].Stage)
}

func TestRun_SuccessLogFailureDoesNotDemoteSuccess(t *testing.T) {
	tr := newTestRunner()
	tr.log.successErr = fmt.Errorf("sheet unavailable")

	tally, err := tr.runner.Run(context.Background(), []string{"https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Successes)
	assert.Equal(t, 0, tally.Errors)
}

func TestRun_PanicIsRecoveredAndLoopContinues(t *testing.T) {
	tr := newTestRunner()
	tr.summarizer.onSummary = func(excerpt string) (string, error) {
		if tr.summarizer.calls == 1 {
			panic("boom")
		}
		return "summary", nil
	}

	tally, err := tr.runner.Run(context.Background(),
		[]string{"https://first.com", "https://second.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Errors)
	assert.Equal(t, 1, tally.Successes)
	assert.Equal(t, 1, tally.Processed)

	require.Len(t, tr.history.records, 2)
	assert.Equal(t, StagePanic, tr.history.records[0].Stage)
	assert.Equal(t, OutcomeSuccess, tr.history.records[1].Outcome)
}

func TestRun_OutcomePartitionInvariant(t *testing.T) {
	// Mixed batch: one success, one failure, two distinct errors
	tr := newTestRunner()
	tr.fetcher.onPage = func(url string) (string, error) {
		if url == "https://fetch-fails.com" {
			return "", fmt.Errorf("connection refused")
		}
		return "<html><body>site</body></html>", nil
	}
	tr.contacts.onLookup = func(companyURL string) *contacts.Lookup {
		lookup := &contacts.Lookup{Domain: contacts.DeriveDomain(companyURL)}
		if companyURL == "https://has-contact.com" {
			lookup.Emails = []contacts.Email{{Value: "a@x.com", FirstName: "A", LastName: "B"}}
		}
		return lookup
	}
	tr.composer.onCompose = func() (*compose.Message, error) {
		return &compose.Message{Subject: "s", Body: "b"}, nil
	}

	urls := []string{
		"https://has-contact.com",
		"https://no-contact.com",
		"https://fetch-fails.com",
	}
	tally, err := tr.runner.Run(context.Background(), urls)
	require.NoError(t, err)

	// Every company yields exactly one terminal outcome
	assert.Equal(t, len(urls), tally.Successes+tally.Failures+tally.Errors)
	assert.Equal(t, 1, tally.Successes)
	assert.Equal(t, 1, tally.Failures)
	assert.Equal(t, 1, tally.Errors)
	assert.Len(t, tr.history.records, len(urls))
}

func TestRun_CancellationStopsBetweenCompanies(t *testing.T) {
	tr := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	tr.summarizer.onSummary = func(string) (string, error) {
		cancel() // Cancel mid-company; the current company still finishes
		return "summary", nil
	}

	tally, err := tr.runner.Run(ctx, []string{"https://first.com", "https://second.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// Only the first company ran
	assert.Len(t, tr.fetcher.calls, 1)
	assert.Equal(t, 1, tally.Successes)
}

func TestRun_NoHistoryConfigured(t *testing.T) {
	tr := newTestRunner()
	tr.runner.History = nil

	tally, err := tr.runner.Run(context.Background(), []string{"https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Successes)
}
