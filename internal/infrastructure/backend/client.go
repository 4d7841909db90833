// Package backend is the HTTP client abstraction over the coffee-shop REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/api/metrics"
	"github.com/kopinusa/storefront/internal/core/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Config holds client configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues JSON requests against the backend. The zero token means
// anonymous calls.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ ports.Backend = (*Client)(nil)

// New creates a Client for cfg.BaseURL.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend: base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		log:        log.With().Str("component", "backend").Logger(),
	}, nil
}

// WithToken returns a copy of c that sends "Authorization: Bearer <token>".
func (c *Client) WithToken(token string) ports.Backend {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Ping checks that the backend answers at all; any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend ping: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend %s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	c.setHeaders(req, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, "error", start)
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(method, strconv.Itoa(resp.StatusCode), start)
	if err != nil {
		return fmt.Errorf("backend %s %s: read body: %w", method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode >= http.StatusBadRequest {
		return newRemoteError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("backend %s %s: decode body: %w", method, path, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) observe(method, status string, start time.Time) {
	metrics.BackendRequestsTotal.WithLabelValues(method, status).Inc()
	metrics.BackendRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
