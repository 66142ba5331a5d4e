// Package crtsh enumerates subdomains from the crt.sh certificate transparency search.
package crtsh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/projectdiscovery/cidrx/pkg"
	"github.com/projectdiscovery/cidrx/pkg/client"
	"github.com/projectdiscovery/cidrx/pkg/version"
	sliceutil "github.com/projectdiscovery/utils/slice"
	"github.com/tidwall/gjson"
)

const (
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 5
	DefaultRetryDelay = 200 * time.Millisecond
)

// Client queries crt.sh for certificates issued under a domain.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another crt.sh compatible endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetries sets how many attempts are made and the pause between them.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxRetries = attempts
		}
		c.retryDelay = delay
	}
}

// New creates a crt.sh client
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(pkg.CrtShURL, "/"),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = client.CreateClient(DefaultTimeout, version.UserAgent())
	}
	return c
}

// Enumerate returns the sorted, deduplicated names found in certificates for domain.
func (c *Client) Enumerate(ctx context.Context, domain string) ([]string, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, errors.New("empty domain")
	}

	body, err := c.fetch(ctx, domain)
	if err != nil {
		return nil, err
	}
	return ParseNames(body, domain)
}

// ParseNames extracts names ending in domain from a crt.sh JSON response.
func ParseNames(body []byte, domain string) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json response from crt.sh")
	}
	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, fmt.Errorf("unexpected crt.sh response: expected array")
	}

	var names []string
	result.ForEach(func(_, entry gjson.Result) bool {
		for _, line := range strings.Split(entry.Get("name_value").String(), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && strings.HasSuffix(line, domain) {
				names = append(names, line)
			}
		}
		return true
	})

	names = sliceutil.Dedupe(names)
	sort.Strings(names)
	return names, nil
}

func (c *Client) fetch(ctx context.Context, domain string) ([]byte, error) {
	apiURL := fmt.Sprintf("%s/?q=%s&output=json", c.baseURL, url.QueryEscape("%."+domain))

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("error sending request: %w", err)
			slog.Warn("crt.sh request failed, retrying",
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"domain", domain,
				"error", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("error reading response: %w", err)
			slog.Warn("error reading crt.sh response, retrying",
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"domain", domain,
				"error", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			slog.Warn("crt.sh returned non-OK status, retrying",
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"domain", domain,
				"status_code", resp.StatusCode)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("crt.sh request failed after %d attempts: %w", c.maxRetries, lastErr)
}
