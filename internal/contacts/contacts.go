// Package contacts looks up known email addresses for a company domain via
// the Hunter.io domain-search API.
package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the Hunter.io API root.
const DefaultBaseURL = "https://api.hunter.io/v2"

// DefaultTimeout bounds a single domain-search request.
const DefaultTimeout = 10 * time.Second

// Email is one discovered address for a domain.
type Email struct {
	Value     string `json:"value"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Lookup is the result of a domain search. An empty Emails slice is a valid,
// non-exceptional outcome; Domain is always populated so the failure path
// can log it.
type Lookup struct {
	Domain       string
	Organization string
	Emails       []Email
}

// domainSearchResponse mirrors the Hunter.io domain-search payload.
type domainSearchResponse struct {
	Data struct {
		Organization string  `json:"organization"`
		Emails       []Email `json:"emails"`
	} `json:"data"`
}

// Options configures the client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// Client queries the contact-directory service.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a contact-directory client. A nil opts uses defaults.
func NewClient(apiKey string, logger *zap.Logger, opts *Options) *Client {
	baseURL := DefaultBaseURL
	timeout := DefaultTimeout
	if opts != nil {
		if opts.BaseURL != "" {
			baseURL = opts.BaseURL
		}
		if opts.Timeout != 0 {
			timeout = opts.Timeout
		}
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// DeriveDomain extracts the bare domain from a company URL: the host
// component (falling back to the path for scheme-less input) with a leading
// "www." stripped.
func DeriveDomain(companyURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(companyURL))
	if err != nil {
		return strings.TrimPrefix(strings.TrimSpace(companyURL), "www.")
	}

	domain := parsed.Host
	if domain == "" {
		domain = parsed.Path
	}
	return strings.TrimPrefix(domain, "www.")
}

// FindContacts searches the directory for addresses at the company's domain.
// The domain is derived before any network call so it is always populated,
// including on the failure path. Any API failure yields an empty email list,
// never an error.
func (c *Client) FindContacts(ctx context.Context, companyURL string) *Lookup {
	domain := DeriveDomain(companyURL)
	lookup := &Lookup{Domain: domain}

	reqURL := fmt.Sprintf("%s/domain-search?domain=%s&api_key=%s",
		c.baseURL, url.QueryEscape(domain), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		c.logger.Warn("failed to build domain-search request",
			zap.String("domain", domain), zap.Error(err))
		return lookup
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("domain search failed",
			zap.String("domain", domain), zap.Error(err))
		return lookup
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read domain-search response",
			zap.String("domain", domain), zap.Error(err))
		return lookup
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("domain search returned non-OK status",
			zap.String("domain", domain), zap.Int("status", resp.StatusCode))
		return lookup
	}

	var parsed domainSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("failed to parse domain-search response",
			zap.String("domain", domain), zap.Error(err))
		return lookup
	}

	lookup.Organization = parsed.Data.Organization
	lookup.Emails = parsed.Data.Emails

	c.logger.Info("domain search completed",
		zap.String("domain", domain), zap.Int("emails", len(lookup.Emails)))
	return lookup
}
