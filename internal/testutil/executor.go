package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/roach88/agraph/internal/transport"
)

// RecordingExecutor is a transport.Executor that records every request and
// answers from a script.
//
// Responses are matched by "METHOD path" key; unmatched requests get
// 204 No Content. Status checking follows transport.Client, so tests see
// the same *transport.StatusError a real server would produce.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type RecordingExecutor struct {
	mu        sync.Mutex
	requests  []transport.Request
	responses map[string]transport.Response
	errs      map[string]error
}

// NewRecordingExecutor creates an executor with an empty script.
func NewRecordingExecutor() *RecordingExecutor {
	return &RecordingExecutor{
		responses: make(map[string]transport.Response),
		errs:      make(map[string]error),
	}
}

// Respond scripts the response for method and path.
func (e *RecordingExecutor) Respond(method, path string, status int, body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responses[key(method, path)] = transport.Response{Status: status, Body: []byte(body)}
}

// Fail scripts a transport error for method and path.
func (e *RecordingExecutor) Fail(method, path string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs[key(method, path)] = err
}

// Do records the request and returns the scripted response.
func (e *RecordingExecutor) Do(_ context.Context, req transport.Request) (*transport.Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.requests = append(e.requests, req)

	k := key(req.Method, req.Path)
	if err, ok := e.errs[k]; ok {
		return nil, err
	}
	resp, ok := e.responses[k]
	if !ok {
		resp = transport.Response{Status: http.StatusNoContent}
	}

	expectOK := resp.Status == req.Expect || (req.Expect == 0 && resp.Status >= 200 && resp.Status < 300)
	if !expectOK {
		return nil, &transport.StatusError{
			Method: req.Method,
			URL:    req.Path,
			Got:    resp.Status,
			Want:   req.Expect,
			Body:   string(resp.Body),
		}
	}
	return &resp, nil
}

// Requests returns a copy of the recorded requests in order.
func (e *RecordingExecutor) Requests() []transport.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]transport.Request(nil), e.requests...)
}

// Paths returns "METHOD path" for each recorded request.
func (e *RecordingExecutor) Paths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	paths := make([]string, len(e.requests))
	for i, r := range e.requests {
		paths[i] = key(r.Method, r.Path)
	}
	return paths
}

// Reset clears recorded requests, keeping the script.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = nil
}

func key(method, path string) string {
	return fmt.Sprintf("%s %s", method, path)
}
