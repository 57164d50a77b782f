package yahoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/omarshaarawi/fantasywrapped/internal/observability"
)

const DefaultBaseURL = "https://fantasysports.yahooapis.com/fantasy/v2"

type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	HTTPClient  *http.Client
	Metrics     *observability.Metrics
}

// Client issues authenticated GETs against the Fantasy API and decodes the
// XML body. Safe for concurrent use; all metrics of one run share it.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	tokens      *TokenSource
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	metrics     *observability.Metrics
	requests    atomic.Int64
}

func NewClient(cfg ClientConfig, tokens *TokenSource) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 500 * time.Millisecond
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff < baseBackoff {
		maxBackoff = 8 * baseBackoff
	}
	if tokens != nil && cfg.Metrics != nil {
		tokens.onRefresh = cfg.Metrics.TokenRefreshed
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		tokens:      tokens,
		maxRetries:  max(cfg.MaxRetries, 0),
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
		metrics:     cfg.Metrics,
	}
}

// Requests is the number of upstream requests issued by this client.
func (c *Client) Requests() int64 {
	return c.requests.Load()
}

// Get fetches path (relative to the API base) and returns the decoded body.
// 5xx responses and transport failures are retried with capped exponential
// backoff; a 401 triggers one token refresh and replay of the same request.
func (c *Client) Get(ctx context.Context, path string) (any, error) {
	raw, err := c.fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	body, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("error decoding response %s: %w", path, err)
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	refreshed := false
	delay := c.baseBackoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, c.maxBackoff)
		}

		raw, status, sent, err := c.do(ctx, path)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, ErrAuth):
			return nil, err
		case err != nil:
			lastErr = fmt.Errorf("error making request: %w", err)
			slog.Warn("Upstream request failed", "path", path, "attempt", attempt+1, "error", err)
			continue
		case status == http.StatusUnauthorized && !refreshed:
			refreshed = true
			if c.tokens == nil || !c.tokens.Invalidate(sent) {
				return nil, fmt.Errorf("%w: upstream rejected credentials", ErrAuth)
			}
			attempt--
			continue
		case status == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: upstream rejected refreshed credentials", ErrAuth)
		case status >= 500:
			lastErr = &UpstreamError{Path: path, StatusCode: status, Body: abbreviate(raw)}
			slog.Warn("Upstream returned server error", "path", path, "status", status, "attempt", attempt+1)
			continue
		case status < 200 || status > 299:
			return nil, &UpstreamError{Path: path, StatusCode: status, Body: abbreviate(raw)}
		}
		return raw, nil
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// do issues one request and reports the access token it was sent with.
func (c *Client) do(ctx context.Context, path string) ([]byte, int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, "", fmt.Errorf("error creating request: %w", err)
	}

	var sent string
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, 0, "", err
		}
		tok.SetAuthHeader(req)
		sent = tok.AccessToken
	}
	req.Header.Set("Accept", "application/xml")

	c.requests.Add(1)
	countRequest(ctx)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest("error", time.Since(start))
		return nil, 0, sent, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	c.metrics.UpstreamRequest(statusClass(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, resp.StatusCode, sent, fmt.Errorf("error reading response: %w", err)
	}
	return raw, resp.StatusCode, sent, nil
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
