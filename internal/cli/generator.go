package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/agraph/internal/session"
)

// GeneratorAddOptions holds flags for "generator add".
type GeneratorAddOptions struct {
	*RootOptions
	ObjectOf   []string
	SubjectOf  []string
	Undirected []string
}

// NewGeneratorCommand creates the generator command group.
func NewGeneratorCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generator",
		Short: "Register link-traversal generators on the session",
	}
	cmd.AddCommand(newGeneratorAddCommand(rootOpts))
	return cmd
}

func newGeneratorAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GeneratorAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a generator and print its id",
		Long: `Register a generator on the session and print the id queries use to
refer to it, e.g. as the generator of an ego_group_member entry.

Predicates are IRIs (<http://...> or bare) or prefixed names declared in
the config namespaces. Each flag may be repeated.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeneratorAdd(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.ObjectOf, "object-of", nil, "follow predicate from object to subject")
	cmd.Flags().StringArrayVar(&opts.SubjectOf, "subject-of", nil, "follow predicate from subject to object")
	cmd.Flags().StringArrayVar(&opts.Undirected, "undirected", nil, "follow predicate in both directions")

	return cmd
}

func (o *GeneratorAddOptions) generatorOptions() session.GeneratorOptions {
	opts := session.GeneratorOptions{}
	if len(o.ObjectOf) > 0 {
		opts["object_of"] = o.ObjectOf
	}
	if len(o.SubjectOf) > 0 {
		opts["subject_of"] = o.SubjectOf
	}
	if len(o.Undirected) > 0 {
		opts["undirected"] = o.Undirected
	}
	return opts
}

func runGeneratorAdd(opts *GeneratorAddOptions, cmd *cobra.Command) error {
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

	genOpts := opts.generatorOptions()
	ref, genErr := sess.Generator(ctx, genOpts)

	// The id is consumed even when registration fails.
	if err := rt.state.SaveLastUniqueID(ctx, opts.Session, sess.LastUniqueID()); err != nil {
		return fail(formatter, &stateError{err})
	}
	if genErr != nil {
		return fail(formatter, genErr)
	}

	gen, err := session.NewGenerator(genOpts, sess.Namespaces())
	if err != nil {
		return fail(formatter, err)
	}
	id := ref.String()
	params := gen.Params()
	if err := rt.state.RecordGenerator(ctx, opts.Session, id, params); err != nil {
		return fail(formatter, &stateError{err})
	}

	formatter.VerboseLog("Registered generator %s on %s", id, sess.URL())
	return formatter.Success(GeneratorView{ID: id, Params: params}, id)
}
