// Package api is the HTTP client for the emoji backend.
//
// The backend exposes three endpoints: POST /api/emojis translates a message
// into emojis, GET /api/sample returns a sample sentence and GET /health is
// used for liveness. Every failure (transport error, non-2xx status, bad JSON)
// is returned as *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"emojichat/internal/logging"
)

const (
	emojisPath = "/api/emojis"
	samplePath = "/api/sample"
	healthPath = "/health"
)

// Client talks to one emoji backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the transport timeout. Zero means no timeout. A client
// passed to WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// New creates a client for the backend at baseURL. An empty baseURL yields
// relative paths, which only work behind a custom transport.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// GenerateEmojis asks the backend to translate message into emojis.
func (c *Client) GenerateEmojis(ctx context.Context, message string, disableModeration bool) (*EmojiResponse, error) {
	req := MessageRequest{Message: message, DisableModeration: disableModeration}
	var resp EmojiResponse
	if err := c.do(ctx, http.MethodPost, emojisPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SampleSentence fetches one sample sentence.
func (c *Client) SampleSentence(ctx context.Context) (*SampleResponse, error) {
	var resp SampleResponse
	if err := c.do(ctx, http.MethodGet, samplePath, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health fetches and decodes the backend health document.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, healthPath, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthCheck reports whether the backend answers /health with a 2xx status.
// The body is not inspected.
func (c *Client) HealthCheck(ctx context.Context) bool {
	return c.do(ctx, http.MethodGet, healthPath, nil, nil) == nil
}

// do performs one JSON round trip. out may be nil when the body is ignored.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Message: fmt.Sprintf("failed to encode request: %v", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	logging.APIDebug("%s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Get(logging.CategoryAPI).Warn("%s %s failed after %v: %v", method, path, time.Since(start), err)
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Message: fmt.Sprintf("failed to read response: %v", err), Status: resp.StatusCode}
	}
	logging.API("%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Message: fmt.Sprintf("invalid response from %s: %v", path, err), Status: resp.StatusCode}
	}
	return nil
}

// newStatusError builds the error for a non-2xx response: the body's detail,
// else its error field, else "HTTP <status>".
func newStatusError(status int, data []byte) *Error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)

	msg := eb.Detail
	if msg == "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	logging.Get(logging.CategoryAPI).Warn("backend returned %d: %s", status, msg)
	return &Error{Message: msg, Status: status}
}
