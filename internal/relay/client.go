package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leapstack-labs/relayui/internal/fetch"
)

// Config holds configuration for a Client.
type Config struct {
	BaseURL string
	Paths   Paths
	Timeout time.Duration
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one relay instance. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	paths  Paths
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client for cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("relay base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid relay URL %q: scheme must be http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		base:   base,
		paths:  cfg.Paths.withDefaults(),
		http:   hc,
		logger: logger,
	}, nil
}

// Paths returns the endpoint layout in use.
func (c *Client) Paths() Paths {
	return c.paths
}

// URL returns the absolute URL the client requests for resource.
func (c *Client) URL(resource string) string {
	return c.resolve(resource)
}

// Fetch GETs resource (a path relative to the base URL) and returns the
// envelope's data. It implements fetch.Fetcher.
func (c *Client) Fetch(ctx context.Context, resource string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(resource), nil)
	if err != nil {
		return nil, fetch.TransportError(err)
	}
	req.Header.Set("Accept", "application/json")

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Render posts in to the render endpoint and returns the rendered markdown.
func (c *Client) Render(ctx context.Context, in RenderRequest) (string, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encoding render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(c.paths.Render), bytes.NewReader(body))
	if err != nil {
		return "", fetch.TransportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	data, err := c.do(req)
	if err != nil {
		return "", err
	}

	var result RenderResult
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			return "", fetch.DecodeError(fmt.Errorf("decoding render result: %w", err))
		}
	}
	return result.Markdown, nil
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("relay request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fetch.TransportError(ctxErr)
		}
		return nil, fetch.TransportError(err)
	}
	c.logger.Debug("relay request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return unwrap(resp)
}

func (c *Client) resolve(resource string) string {
	if strings.HasPrefix(resource, "http://") || strings.HasPrefix(resource, "https://") {
		return resource
	}
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(resource, "/")
	return u.String()
}
