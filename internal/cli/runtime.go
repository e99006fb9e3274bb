package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/agraph/internal/config"
	"github.com/roach88/agraph/internal/ir"
	"github.com/roach88/agraph/internal/repository"
	"github.com/roach88/agraph/internal/session"
	"github.com/roach88/agraph/internal/store"
	"github.com/roach88/agraph/internal/transport"
)

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig loads configuration and applies flag overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, &configError{err}
	}
	if o.Server != "" {
		cfg.Server = o.Server
	}
	if o.Catalog != "" {
		cfg.Catalog = o.Catalog
	}
	if o.Repository != "" {
		cfg.Repository = o.Repository
	}
	if o.StatePath != "" {
		cfg.StatePath = o.StatePath
	}
	if o.Verbose {
		cfg.Debug = true
	}
	return cfg, nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// runtime bundles what a command needs to reach the server and the state
// file.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	state  *store.Store
}

func (o *RootOptions) newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.StatePath)
	if err != nil {
		return nil, &stateError{err}
	}
	return &runtime{
		cfg:    cfg,
		logger: newLogger(cmd.ErrOrStderr(), cfg.Debug),
		state:  st,
	}, nil
}

func (r *runtime) Close() error {
	return r.state.Close()
}

func (r *runtime) client() (*transport.Client, error) {
	opts := []transport.Option{
		transport.WithTimeout(r.cfg.Timeout),
		transport.WithLogger(r.logger),
	}
	if r.cfg.User != "" {
		opts = append(opts, transport.WithBasicAuth(r.cfg.User, r.cfg.Password))
	}
	c, err := transport.NewClient(r.cfg.Server, opts...)
	if err != nil {
		return nil, &configError{err}
	}
	return c, nil
}

// repository connects to the configured repository.
func (r *runtime) repository(ns ir.Namespaces) (*repository.Repository, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, &configError{err}
	}
	c, err := r.client()
	if err != nil {
		return nil, err
	}
	return repository.ForCatalog(c, r.cfg.Catalog, r.cfg.Repository, ns), nil
}

// attach reconnects to the session remembered under name, continuing its
// identifier counter.
func (r *runtime) attach(ctx context.Context, name string, ns ir.Namespaces) (*session.Session, error) {
	rec, err := r.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if rec.Closed {
		return nil, fmt.Errorf("session %q: %w", name, session.ErrSessionClosed)
	}
	c, err := r.client()
	if err != nil {
		return nil, err
	}
	conn := repository.New(c, rec.URL, ns)
	return session.Attach(conn, rec.LastUniqueID, r.logger), nil
}

func (r *runtime) lookup(ctx context.Context, name string) (store.SessionRecord, error) {
	rec, err := r.state.GetSession(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return store.SessionRecord{}, fmt.Errorf("%w named %q; run \"agq session open\" first", errNoSession, name)
	}
	if err != nil {
		return store.SessionRecord{}, &stateError{err}
	}
	return rec, nil
}
