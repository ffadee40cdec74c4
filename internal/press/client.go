package press

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/billmal071/epubpress/internal/logfields"
)

// Version is the release of this client compared against the server's
// minimum compatible version when no explicit version is configured.
const Version = "0.9.0"

// Doer is the transport collaborator. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs the publishing service operations on a Book. It holds no
// per-book state, so one Client may serve many books concurrently.
type Client struct {
	baseURL    string
	versionURL string
	userAgent  string
	version    string
	http       Doer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the service root stamped onto books built by NewBook.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithVersionURL sets the manifest endpoint used by CheckForUpdates.
func WithVersionURL(u string) Option {
	return func(c *Client) { c.versionURL = u }
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithVersion sets the local version compared by CheckForUpdates.
func WithVersion(v string) Option {
	return func(c *Client) { c.version = v }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the publishing service.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		versionURL: DefaultVersionURL,
		userAgent:  "epubpress-go/" + Version,
		version:    Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// NewBook builds a Book, defaulting its base url to the client's.
func (c *Client) NewBook(p Props) *Book {
	if p.BaseURL == "" {
		p.BaseURL = c.baseURL
	}
	return NewBook(p)
}

// send issues one request. A non-nil body is encoded as JSON. Transport
// failures come back as KindTransport; the caller interprets the status.
func (c *Client) send(ctx context.Context, op, method, url string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, transportError(op, fmt.Errorf("encode request: %w", err))
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, transportError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed",
			logfields.Op(op), logfields.Method(method), logfields.URL(url), logfields.Error(err))
		return nil, transportError(op, err)
	}
	c.logger.DebugContext(ctx, "request",
		logfields.Op(op), logfields.Method(method), logfields.URL(url),
		logfields.StatusCode(resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// decode reads a JSON body into v and closes it.
func decode(op string, resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return transportError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// discard drains and closes a body so the connection can be reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
