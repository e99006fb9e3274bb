package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/agraph/internal/session"
	"github.com/roach88/agraph/internal/store"
)

// SessionView is the output form of a remembered session.
type SessionView struct {
	Name         string          `json:"name"`
	URL          string          `json:"url"`
	Repository   string          `json:"repository"`
	LastUniqueID int64           `json:"last_unique_id"`
	Closed       bool            `json:"closed"`
	Generators   []GeneratorView `json:"generators,omitempty"`
}

// GeneratorView is the output form of a registered generator.
type GeneratorView struct {
	ID     string              `json:"id"`
	Params map[string][]string `json:"params"`
}

func newSessionView(rec store.SessionRecord, gens []store.GeneratorRecord) SessionView {
	view := SessionView{
		Name:         rec.Name,
		URL:          rec.URL,
		Repository:   rec.Repository,
		LastUniqueID: rec.LastUniqueID,
		Closed:       rec.Closed,
	}
	for _, g := range gens {
		view.Generators = append(view.Generators, GeneratorView{ID: g.ID, Params: g.Params})
	}
	return view
}

func (v SessionView) text() string {
	state := "open"
	if v.Closed {
		state = "closed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (%s)\n", v.Name, state)
	fmt.Fprintf(&b, "  url:            %s\n", v.URL)
	fmt.Fprintf(&b, "  repository:     %s\n", v.Repository)
	fmt.Fprintf(&b, "  last unique id: %d", v.LastUniqueID)
	for _, g := range v.Generators {
		fmt.Fprintf(&b, "\n  generator %s", g.ID)
		for _, key := range []string{"objectOf", "subjectOf", "undirected"} {
			if preds := g.Params[key]; len(preds) > 0 {
				fmt.Fprintf(&b, " %s=%s", key, strings.Join(preds, ","))
			}
		}
	}
	return b.String()
}

// SessionOpenOptions holds flags for "session open".
type SessionOpenOptions struct {
	*RootOptions
	AutoCommit bool
	Lifetime   time.Duration
}

// NewSessionCommand creates the session command group.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Open, close, inspect and forget sessions",
	}
	cmd.AddCommand(newSessionOpenCommand(rootOpts))
	cmd.AddCommand(newSessionCloseCommand(rootOpts))
	cmd.AddCommand(newSessionStatusCommand(rootOpts))
	cmd.AddCommand(newSessionForgetCommand(rootOpts))
	return cmd
}

func newSessionOpenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOpenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a session on the configured repository",
		Long: `Open a session on the configured repository and remember it under the
--session name. Generator ids for the session start at id1.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionOpen(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.AutoCommit, "auto-commit", false, "commit after every update")
	cmd.Flags().DurationVar(&opts.Lifetime, "lifetime", 0, "idle time before the server ends the session (0 = server default)")

	return cmd
}

func runSessionOpen(opts *SessionOpenOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	rt, err := opts.newRuntime(cmd)
	if err != nil {
		return fail(formatter, err)
	}
	defer rt.Close()

	existing, err := rt.state.GetSession(ctx, opts.Session)
	switch {
	case err == nil && !existing.Closed:
		return fail(formatter, fmt.Errorf("%w: %q at %s; close it first", errSessionOpen, opts.Session, existing.URL))
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fail(formatter, &stateError{err})
	}

	repo, err := rt.repository(rt.cfg.Namespaces)
	if err != nil {
		return fail(formatter, err)
	}
	sess, err := session.Open(ctx, repo, session.Options{
		AutoCommit: opts.AutoCommit,
		Lifetime:   opts.Lifetime,
		Logger:     rt.logger,
	})
	if err != nil {
		return fail(formatter, err)
	}

	rec := store.SessionRecord{
		Name:       opts.Session,
		URL:        sess.URL(),
		Repository: repo.Path(""),
	}
	if err := rt.state.SaveSession(ctx, rec); err != nil {
		// Nothing would remember the session; do not leave it on the server.
		if closeErr := sess.Close(ctx); closeErr != nil {
			rt.logger.Warn("close unrecorded session", "url", rec.URL, "error", closeErr)
		}
		return fail(formatter, &stateError{err})
	}

	view := newSessionView(rec, nil)
	return formatter.Success(view, fmt.Sprintf("Opened session %s: %s", rec.Name, rec.URL))
}

func newSessionCloseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the session",
		Long: `Close the session on the server. Uncommitted changes are neither
committed nor rolled back by agq; run commit or rollback first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionClose(rootOpts, cmd)
		},
	}
}

func runSessionClose(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	rt, err := opts.newRuntime(cmd)
	if err != nil {
		return fail(formatter, err)
	}
	defer rt.Close()

	sess, err := rt.attach(ctx, opts.Session, rt.cfg.Namespaces)
	if err != nil {
		return fail(formatter, err)
	}
	if err := sess.Close(ctx); err != nil {
		return fail(formatter, err)
	}
	if err := rt.state.MarkClosed(ctx, opts.Session); err != nil {
		return fail(formatter, &stateError{err})
	}

	return formatter.Success(map[string]string{"name": opts.Session, "url": sess.URL()},
		fmt.Sprintf("Closed session %s", opts.Session))
}

func newSessionStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Show the remembered session and its generators",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionStatus(rootOpts, cmd)
		},
	}
}

func runSessionStatus(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	rt, err := opts.newRuntime(cmd)
	if err != nil {
		return fail(formatter, err)
	}
	defer rt.Close()

	rec, err := rt.lookup(ctx, opts.Session)
	if err != nil {
		return fail(formatter, err)
	}
	gens, err := rt.state.ListGenerators(ctx, opts.Session)
	if err != nil {
		return fail(formatter, &stateError{err})
	}

	view := newSessionView(rec, gens)
	return formatter.Success(view, view.text())
}

// SessionForgetOptions holds flags for "session forget".
type SessionForgetOptions struct {
	*RootOptions
	Force bool
}

func newSessionForgetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionForgetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Remove the remembered session from the state file",
		Long: `Remove the session and its recorded generators from the local state
file. No request is sent to the server.

A session that is still open is only forgotten with --force; the server
then ends it when its lifetime runs out.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionForget(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "forget the session even if it is still open")

	return cmd
}

func runSessionForget(opts *SessionForgetOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	rt, err := opts.newRuntime(cmd)
	if err != nil {
		return fail(formatter, err)
	}
	defer rt.Close()

	rec, err := rt.lookup(ctx, opts.Session)
	if err != nil {
		return fail(formatter, err)
	}
	if !rec.Closed && !opts.Force {
		return fail(formatter, fmt.Errorf("%w: %q at %s; close it or pass --force", errSessionOpen, rec.Name, rec.URL))
	}
	if err := rt.state.DeleteSession(ctx, rec.Name); err != nil {
		return fail(formatter, &stateError{err})
	}

	return formatter.Success(map[string]string{"name": rec.Name, "url": rec.URL},
		fmt.Sprintf("Forgot session %s", rec.Name))
}
