package transport

import (
	"context"
	"net/http"
	"net/url"
)

// Request describes one request to the store.
type Request struct {
	Method string
	// Path is relative to the client's base URL, or absolute.
	Path   string
	Params url.Values

	// Body is sent as is; when set, Params go to the query string.
	Body        []byte
	ContentType string
	Accept      string

	// Expect is the required status code; 0 accepts any 2xx.
	Expect int
}

// Response is a completed request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Executor runs requests.
type Executor interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req Request) (*Response, error)

// Do calls f.
func (f ExecutorFunc) Do(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
