package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/agraph/internal/ir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Lazy bool
}

// QueryResult is the JSON output of the query command. Each solution maps
// variable names to N-Triples terms; unbound variables are absent.
type QueryResult struct {
	Variables []string            `json:"variables"`
	Solutions []map[string]string `json:"solutions"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query-file>",
		Short: "Run a query file on the session",
		Long: `Compile a query file and run it on the session. Text output is one
tab-separated row per solution under a header of variables.

With --lazy, text rows are written one at a time as the solution sequence
yields them rather than after the whole table is rendered. The server
response is still read in full before the first row. JSON output ignores
--lazy.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Lazy, "lazy", false, "write text rows as the solution sequence yields them")

	return cmd
}

func runQuery(opts *QueryOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	qf, err := LoadQueryFile(path)
	if err != nil {
		return fail(formatter, err)
	}

	rt, err := opts.newRuntime(cmd)
	if err != nil {
		return fail(formatter, err)
	}
	defer rt.Close()

	ns := rt.cfg.Namespaces.Merge(qf.Namespaces)
	sess, err := rt.attach(ctx, opts.Session, ns)
	if err != nil {
		return fail(formatter, err)
	}
	q, err := qf.Build(sess, ns)
	if err != nil {
		return fail(formatter, err)
	}
	text, err := q.Compile(nil)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("%s", text)

	vars, err := q.Variables()
	if err != nil {
		return fail(formatter, err)
	}

	if opts.Lazy && formatter.Format == "text" {
		w := formatter.Writer
		writeHeader(w, vars)
		for sol, err := range q.Each(ctx) {
			if err != nil {
				return fail(formatter, err)
			}
			if err := writeRow(w, vars, sol, ns); err != nil {
				return fail(formatter, err)
			}
		}
		return nil
	}

	solutions, err := q.All(ctx)
	if err != nil {
		return fail(formatter, err)
	}

	if formatter.Format == "json" {
		result := QueryResult{
			Variables: make([]string, len(vars)),
			Solutions: make([]map[string]string, 0, len(solutions)),
		}
		for i, v := range vars {
			result.Variables[i] = v.Name()
		}
		for _, sol := range solutions {
			row := make(map[string]string, len(vars))
			for _, v := range vars {
				t, ok := sol.Get(v)
				if !ok {
					continue
				}
				s, err := ir.Serialize(t, nil)
				if err != nil {
					return fail(formatter, err)
				}
				row[v.Name()] = s
			}
			result.Solutions = append(result.Solutions, row)
		}
		return formatter.Success(result, "")
	}

	w := formatter.Writer
	writeHeader(w, vars)
	for _, sol := range solutions {
		if err := writeRow(w, vars, sol, ns); err != nil {
			return fail(formatter, err)
		}
	}
	formatter.VerboseLog("%d solution(s)", len(solutions))
	return nil
}

func writeHeader(w io.Writer, vars []ir.Variable) {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.String()
	}
	fmt.Fprintln(w, strings.Join(names, "\t"))
}

// writeRow prints one solution, compacting IRIs with ns. Unbound cells
// are empty.
func writeRow(w io.Writer, vars []ir.Variable, sol ir.Solution, ns ir.Namespaces) error {
	cells := make([]string, len(vars))
	for i, v := range vars {
		t, ok := sol.Get(v)
		if !ok {
			continue
		}
		s, err := ir.Serialize(t, ns)
		if err != nil {
			return fmt.Errorf("render ?%s: %w", v.Name(), err)
		}
		cells[i] = s
	}
	_, err := fmt.Fprintln(w, strings.Join(cells, "\t"))
	return err
}
