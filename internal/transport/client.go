package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id so server logs can be matched
// with client logs.
const RequestIDHeader = "X-Request-Id"

// maxErrorBody bounds how much of an unexpected response is kept in a
// StatusError.
const maxErrorBody = 512

// Client is an Executor over net/http.
type Client struct {
	base     *url.URL
	http     *http.Client
	user     string
	password string
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth sets credentials sent with every request.
func WithBasicAuth(user, password string) Option {
	return func(c *Client) {
		c.user = user
		c.password = password
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the server at baseURL,
// e.g. "http://localhost:10035".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server URL the client was created with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Do sends a request and checks its status against req.Expect.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target, err := c.resolve(req.Path)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newHTTPRequest(ctx, req, target)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	RequestDuration.WithLabelValues(httpReq.Method).Observe(elapsed.Seconds())
	if err != nil {
		RequestsTotal.WithLabelValues(httpReq.Method, "error").Inc()
		c.logger.Debug("request failed",
			"method", httpReq.Method,
			"url", target.Redacted(),
			"request_id", requestID,
			"error", err)
		return nil, fmt.Errorf("%s %s: %w", httpReq.Method, target.Redacted(), err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	RequestsTotal.WithLabelValues(httpReq.Method, strconv.Itoa(httpResp.StatusCode)).Inc()
	c.logger.Debug("request",
		"method", httpReq.Method,
		"url", target.Redacted(),
		"status", httpResp.StatusCode,
		"duration", elapsed,
		"request_id", requestID)

	if !statusOK(httpResp.StatusCode, req.Expect) {
		return nil, &StatusError{
			Method: httpReq.Method,
			URL:    target.Redacted(),
			Got:    httpResp.StatusCode,
			Want:   req.Expect,
			Body:   truncate(strings.TrimSpace(string(body)), maxErrorBody),
		}
	}

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   body,
	}, nil
}

// newHTTPRequest encodes params as a form body for POST requests without
// an explicit body, and into the query string otherwise.
func (c *Client) newHTTPRequest(ctx context.Context, req Request, target *url.URL) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	contentType := req.ContentType
	switch {
	case req.Body != nil:
		body = bytes.NewReader(req.Body)
		if len(req.Params) > 0 {
			target.RawQuery = req.Params.Encode()
		}
	case method == http.MethodPost && len(req.Params) > 0:
		body = strings.NewReader(req.Params.Encode())
		contentType = "application/x-www-form-urlencoded"
	case len(req.Params) > 0:
		target.RawQuery = req.Params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	}
	if c.user != "" {
		httpReq.SetBasicAuth(c.user, c.password)
	}
	return httpReq, nil
}

// resolve joins a relative path onto the base URL. Absolute URLs are used
// as is, since session URLs may point at a different port.
func (c *Client) resolve(path string) (*url.URL, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	if u.IsAbs() {
		return u, nil
	}
	return c.base.JoinPath(strings.TrimPrefix(path, "/")), nil
}

func statusOK(got, want int) bool {
	if want != 0 {
		return got == want
	}
	return got >= 200 && got < 300
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
