// Package fetch provides URL fetching and HTML-to-text processing for
// company websites.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0"

// MaxExcerptLength caps extracted text to stay within model token budgets.
// Truncation may cut mid-sentence; this is accepted behavior.
const MaxExcerptLength = 5000

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// URL retrieves HTML content from a URL, following redirects.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := &http.Client{
		Timeout: opts.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// ExtractPageText parses HTML and returns a whitespace-normalized plain-text
// excerpt capped at MaxExcerptLength characters. Script, style, and chrome
// elements (nav, header, footer) are removed before extraction; the body
// subtree is preferred when present.
func ExtractPageText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, noscript").Remove()

	content := doc.Find("body")
	if content.Length() == 0 {
		content = doc.Selection
	}

	text := strings.Join(strings.Fields(content.Text()), " ")

	if runes := []rune(text); len(runes) > MaxExcerptLength {
		text = string(runes[:MaxExcerptLength])
	}

	return text, nil
}

// Fetcher retrieves page HTML for the campaign, optionally falling back to
// a headless browser for pages that render their content with JavaScript.
type Fetcher struct {
	opts       *Options
	useBrowser bool
	logger     *zap.Logger
}

// NewFetcher creates a Fetcher. A nil opts uses DefaultOptions.
func NewFetcher(opts *Options, useBrowser bool, logger *zap.Logger) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Fetcher{
		opts:       opts,
		useBrowser: useBrowser,
		logger:     logger,
	}
}

// Fetch retrieves the HTML for a company URL.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (string, error) {
	result, err := URL(ctx, urlStr, f.opts)
	if err != nil {
		return "", err
	}

	html := result.HTML
	if f.useBrowser {
		text, extractErr := ExtractPageText(html)
		if extractErr == nil && ShouldUseBrowser(text) {
			f.logger.Debug("content too short, rendering with browser",
				zap.String("url", urlStr), zap.Int("chars", len(text)))
			rendered, browserErr := WithBrowser(ctx, urlStr, BrowserTimeout)
			if browserErr != nil {
				f.logger.Warn("browser rendering failed, using HTTP content",
					zap.String("url", urlStr), zap.Error(browserErr))
			} else {
				html = rendered
			}
		}
	}

	return html, nil
}

// PageExtractor adapts ExtractPageText for the campaign runner.
type PageExtractor struct{}

// Extract returns the plain-text excerpt for a page.
func (PageExtractor) Extract(html string) (string, error) {
	return ExtractPageText(html)
}
