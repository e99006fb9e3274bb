package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/agraph/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output  string // output file path
	Compact bool   // shorten IRIs with the known prefixes
}

// CompileResult is the output of the compile command.
type CompileResult struct {
	Query     string   `json:"query"`
	Variables []string `json:"variables"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query-file>",
		Short: "Compile a query file to Prolog select text",
		Long: `Compile a YAML, JSON or CUE query file to the Prolog select text that
"agq query" would send. No server or session is needed.

Resources are written as full IRIs, exactly as they are sent to the server.
With --compact, IRIs under a known namespace are shortened to prefix:local
for reading; compact text is not meant to be sent.

Namespaces declared in the config file are merged with the file's own;
the file wins on conflicts.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the compiled text to this file")
	cmd.Flags().BoolVar(&opts.Compact, "compact", false, "shorten IRIs with known namespace prefixes")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result, err := compileFile(opts.RootOptions, path, opts.Compact)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("Compiled %s: %d variable(s)", path, len(result.Variables))

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(result.Query+"\n"), 0644); err != nil {
			return fail(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err)})
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	return formatter.Success(result, result.Query)
}

func compileFile(opts *RootOptions, path string, compact bool) (*CompileResult, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	qf, err := LoadQueryFile(path)
	if err != nil {
		return nil, err
	}

	ns := cfg.Namespaces.Merge(qf.Namespaces)
	q, err := qf.Build(nil, ns)
	if err != nil {
		return nil, err
	}
	var display ir.Namespaces
	if compact {
		display = ns
	}
	text, err := q.Compile(display)
	if err != nil {
		return nil, err
	}
	vars, err := q.Variables()
	if err != nil {
		return nil, err
	}

	result := &CompileResult{Query: text, Variables: make([]string, len(vars))}
	for i, v := range vars {
		result.Variables[i] = v.String()
	}
	return result, nil
}
