// Package client calls endpoints of the running process over loopback. It
// offers a blocking Get and a non-blocking GetAsync that returns a future.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/viant/asyncweb/service/future"
	"github.com/viant/asyncweb/tracing"
)

// DefaultTimeout bounds a single outbound request.
const DefaultTimeout = time.Minute

var (
	// ErrUnexpectedStatus is wrapped when the callee answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("client: unexpected status")

	// ErrShortBody is wrapped when a body is shorter than the requested prefix.
	ErrShortBody = errors.New("client: body shorter than prefix")
)

// Client issues GET requests against a base URL
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises the client
type Option func(*Client)

// WithHTTPClient sets the underlying http client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the timeout of the default http client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// New creates a client for baseURL, e.g. http://localhost:8080
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches path and returns the response body as text.
func (c *Client) Get(ctx context.Context, path string) (body string, err error) {
	URL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	ctx, span := tracing.StartSpan(ctx, "GET "+path, tracing.KindClient)
	span.WithAttributes(map[string]string{"http.method": http.MethodGet, "http.url": URL})
	defer func() { tracing.EndSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request %v: %w", URL, err)
	}
	tracing.Inject(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %v: %w", URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response from %v: %w", URL, err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: %v %v: %s", ErrUnexpectedStatus, URL, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return string(data), nil
}

// GetAsync fetches path on a separate goroutine and returns a future of the body.
func (c *Client) GetAsync(ctx context.Context, path string) *future.Future[string] {
	return future.Go(ctx, func(ctx context.Context) (string, error) {
		return c.Get(ctx, path)
	})
}

// Prefix returns the first n characters of s. A shorter s is an error rather
// than a silent truncation.
func Prefix(s string, n int) (string, error) {
	runes := []rune(s)
	if len(runes) < n {
		return "", fmt.Errorf("%w: want %d characters, got %d (%q)", ErrShortBody, n, len(runes), s)
	}
	return string(runes[:n]), nil
}
