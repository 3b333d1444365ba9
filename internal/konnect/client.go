package konnect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kong/mcp-konnect/internal/metrics"
)

const (
	defaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 32 << 20
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	Logger     *slog.Logger
	BaseURL    string
	APIKey     string
	UserAgent  string
	HTTPClient HTTPClient
	Clock      clockwork.Clock
}

func (c *ClientConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.BaseURL == "" {
		return errors.New("base url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base url %q", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.UserAgent == "" {
		c.UserAgent = "mcp-konnect"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Client performs authenticated calls against the Konnect API. It is safe for
// concurrent use and holds no per-call state.
type Client struct {
	log *slog.Logger
	cfg ClientConfig
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		cfg.Logger.Warn("konnect: no API key configured, requests will fail with 401")
	}
	return &Client{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

func (c *Client) setCommonHeaders(req *http.Request, hasBody bool) {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// do sends one request and decodes a successful JSON response into out.
// endpoint is a stable label for metrics, path is the concrete request path.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body, out any) error {
	err := c.doRequest(ctx, endpoint, method, path, query, body, out)
	if err != nil {
		var (
			apiErr *APIError
			netErr *NetworkError
			reqErr *RequestError
		)
		category := "decode"
		switch {
		case errors.As(err, &apiErr):
			category = CategoryUpstream
		case errors.As(err, &netErr):
			category = CategoryNetwork
		case errors.As(err, &reqErr):
			category = CategoryRequest
		}
		metrics.BackendErrorsTotal.WithLabelValues(endpoint, category).Inc()
		c.log.Debug("konnect: request failed", "endpoint", endpoint, "category", category, "error", err)
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, endpoint, method, path string, query url.Values, body, out any) error {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &RequestError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	c.setCommonHeaders(req, body != nil)

	start := c.cfg.Clock.Now()
	resp, err := c.cfg.HTTPClient.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(c.cfg.Clock.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	metrics.BackendRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
