package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/roach88/agraph/internal/ir"
	"github.com/roach88/agraph/internal/prolog"
	"github.com/roach88/agraph/internal/repository"
	"github.com/roach88/agraph/internal/transport"
)

// Options configures Open.
type Options struct {
	// AutoCommit commits after every update when true.
	AutoCommit bool

	// Lifetime is the idle time after which the server ends the session.
	// Zero leaves the server default.
	Lifetime time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Session is a stateful connection to one repository.
//
// Not safe for concurrent use except NextID, which is atomic.
type Session struct {
	conn   *repository.Repository
	ids    *IDAllocator
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Open asks the store for a new session on repo.
func Open(ctx context.Context, repo *repository.Repository, opts Options) (*Session, error) {
	params := url.Values{"autoCommit": {strconv.FormatBool(opts.AutoCommit)}}
	if opts.Lifetime > 0 {
		params.Set("lifetime", strconv.FormatInt(int64(opts.Lifetime/time.Second), 10))
	}

	resp, err := repo.Executor().Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   repo.Path("session"),
		Params: params,
		Accept: "application/json",
		Expect: http.StatusOK,
	})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	sessionURL, err := parseSessionURL(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	conn := repository.New(repo.Executor(), sessionURL, repo.Namespaces())
	s := Attach(conn, 0, opts.Logger)
	s.logger.Info("session opened", "url", sessionURL)
	return s, nil
}

// parseSessionURL accepts the URL as a JSON string or as bare text.
func parseSessionURL(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal([]byte(text), &text); err != nil {
			return "", fmt.Errorf("decode session URL: %w", err)
		}
	}
	u, err := url.Parse(text)
	if err != nil || !u.IsAbs() {
		return "", fmt.Errorf("invalid session URL %q", text)
	}
	return text, nil
}

// Attach wraps an existing session connection. lastUniqueID is the counter
// of the last identifier already issued for it (0 for a fresh session).
func Attach(conn *repository.Repository, lastUniqueID int64, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		conn:   conn,
		ids:    NewIDAllocatorAt(lastUniqueID),
		logger: logger,
	}
}

// URL returns the session's root URL.
func (s *Session) URL() string {
	return s.conn.Path("")
}

// Closed reports whether Close has completed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) checkOpen() error {
	if s.Closed() {
		return ErrSessionClosed
	}
	return nil
}

// NextID allocates a fresh identifier for a server-side resource.
func (s *Session) NextID() string {
	return s.ids.Next()
}

// LastUniqueID returns the counter of the most recently issued identifier.
func (s *Session) LastUniqueID() int64 {
	return s.ids.Last()
}

// Commit commits the session's transaction. The session stays open.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.conn.Commit(ctx); err != nil {
		return err
	}
	s.logger.Debug("session committed", "url", s.URL())
	return nil
}

// Rollback discards the session's transaction. The session stays open.
func (s *Session) Rollback(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.conn.Rollback(ctx); err != nil {
		return err
	}
	s.logger.Debug("session rolled back", "url", s.URL())
	return nil
}

// Close ends the session on the server. It does not commit or roll back;
// what happens to uncommitted changes is up to the server.
//
// If the server does not acknowledge with 204 the session stays open.
func (s *Session) Close(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.conn.Executor().Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   s.conn.Path("session/close"),
		Expect: http.StatusNoContent,
	}); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.logger.Info("session closed", "url", s.URL())
	return nil
}

// Generator registers a link-traversal generator and returns a reference to
// it for use in queries, e.g. as the generator argument of
// Query.EgoGroupMember. The reference renders as the bare id.
//
// An id is allocated before the options are validated, so a failed
// registration still consumes it.
func (s *Session) Generator(ctx context.Context, opts GeneratorOptions) (prolog.Literal, error) {
	if err := s.checkOpen(); err != nil {
		return prolog.Literal{}, err
	}

	id := s.NextID()

	gen, err := NewGenerator(opts, s.Namespaces())
	if err != nil {
		return prolog.Literal{}, fmt.Errorf("generator %s: %w", id, err)
	}

	if _, err := s.conn.Executor().Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   s.conn.Path("snaGenerators/" + id),
		Params: gen.Params(),
		Expect: http.StatusNoContent,
	}); err != nil {
		return prolog.Literal{}, fmt.Errorf("register generator %s: %w", id, err)
	}

	s.logger.Debug("generator registered", "id", id, "url", s.URL())
	return prolog.Raw(id), nil
}

// Query creates an empty query executed on this session.
func (s *Session) Query() *prolog.Query {
	return prolog.NewQuery(s)
}

// Namespaces implements prolog.Runner.
func (s *Session) Namespaces() ir.Namespaces {
	return s.conn.Namespaces()
}

// RunProlog implements prolog.Runner.
func (s *Session) RunProlog(ctx context.Context, query string) ([]ir.Solution, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.conn.RunProlog(ctx, query)
}
