package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/agraph/internal/session"
)

// NewCommitCommand creates the commit command.
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "commit",
		Short:         "Commit the session's transaction",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransaction(rootOpts, cmd, "Committed", (*session.Session).Commit)
		},
	}
}

// NewRollbackCommand creates the rollback command.
func NewRollbackCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rollback",
		Short:         "Discard the session's uncommitted changes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransaction(rootOpts, cmd, "Rolled back", (*session.Session).Rollback)
		},
	}
}

func runTransaction(opts *RootOptions, cmd *cobra.Command, verb string, action func(*session.Session, context.Context) error) error {
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
	if err := action(sess, ctx); err != nil {
		return fail(formatter, err)
	}

	return formatter.Success(map[string]string{"name": opts.Session, "url": sess.URL()},
		fmt.Sprintf("%s session %s", verb, opts.Session))
}
