package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultRiotUserAgent = "league-timeline/1.0"
	defaultHostFormat    = "https://%s.api.riotgames.com"
	defaultHTTPTimeout   = 30 * time.Second
	errorBodyLimit       = 400
)

type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "riot request failed"
	}
	return fmt.Sprintf("request %s failed: status %d body %q", e.URL, e.StatusCode, e.Body)
}

// Client calls the Riot web API. Each call is a single attempt; requests are
// paced by the client's rate limits.
type Client struct {
	apiKey     string
	httpClient *http.Client
	hostFormat string
	userAgent  string
	limits     *RateLimits
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithHostFormat overrides the routing host template; %s receives the
// platform or continent, e.g. "https://%s.api.riotgames.com".
func WithHostFormat(format string) Option {
	return func(c *Client) {
		if strings.Contains(format, "%s") {
			c.hostFormat = strings.TrimSuffix(format, "/")
		}
	}
}

func WithRateLimits(limits *RateLimits) Option {
	return func(c *Client) {
		if limits != nil {
			c.limits = limits
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey, err := requireNonEmpty("riot api key", apiKey)
	if err != nil {
		return nil, err
	}
	c := &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		hostFormat: defaultHostFormat,
		userAgent:  defaultRiotUserAgent,
		limits:     DefaultRateLimits(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) endpoint(host, path string) string {
	return fmt.Sprintf(c.hostFormat, strings.ToLower(host)) + path
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	if target == nil {
		return fmt.Errorf("target is nil")
	}
	if err := c.limits.Wait(ctx, endpoint); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &HTTPStatusError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func requireNonEmpty(name, value string) (string, error) {
	if value = strings.TrimSpace(value); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("%s is required", name)
}
