// Package transport performs the bridge's outbound HTTP calls.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "hookbridge/1.0"

const maxResponseBody = 1 << 20 // 1MB cap on buffered response bodies

// Response is a completed HTTP exchange. Any status code counts as completed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	LatencyMs  int
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport performs outbound POST and GET requests. An error means no
// response was received; HTTP error statuses are returned as responses.
type Transport interface {
	Post(ctx context.Context, url string, body []byte, headers map[string]string, timeout time.Duration) (*Response, error)
	Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*Response, error)
}

// compile-time interface check
var _ Transport = (*HTTP)(nil)

// HTTP is the net/http Transport.
type HTTP struct {
	client    *http.Client
	userAgent string
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithClient replaces the underlying http.Client.
func WithClient(c *http.Client) Option {
	return func(h *HTTP) { h.client = c }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) { h.userAgent = ua }
}

// NewHTTP creates an HTTP transport.
func NewHTTP(opts ...Option) *HTTP {
	h := &HTTP{
		client:    &http.Client{},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Post sends body with the given headers.
func (h *HTTP) Post(ctx context.Context, url string, body []byte, headers map[string]string, timeout time.Duration) (*Response, error) {
	return h.do(ctx, http.MethodPost, url, body, headers, timeout)
}

// Get fetches url with the given headers.
func (h *HTTP) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*Response, error) {
	return h.do(ctx, http.MethodGet, url, nil, headers, timeout)
}

func (h *HTTP) do(ctx context.Context, method, url string, body []byte, headers map[string]string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := h.client.Do(req) //nolint:gosec // G704: URL is a configured webhook destination.
	latency := int(time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		LatencyMs:  latency,
	}, nil
}
