package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/agraph/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Session    string // name the session is remembered under
	Metrics    bool   // dump request metrics to stderr after the command

	// Overrides for config file and environment.
	Server     string
	Catalog    string
	Repository string
	StatePath  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the agq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "agq",
		Short: "agq - Prolog select queries over graph store sessions",
		Long: `agq compiles graph patterns and Prolog relations into select queries
and runs them on a session of a graph store repository.

Sessions are remembered by name in a local state file, so commit,
rollback, generator registration and queries can be issued by separate
invocations against the same server-side session.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	flags.StringVarP(&opts.Session, "session", "s", config.DefaultSession, "session name")
	flags.StringVar(&opts.Server, "server", "", "server URL (overrides AGQ_SERVER)")
	flags.StringVar(&opts.Catalog, "catalog", "", "catalog name (overrides AGQ_CATALOG)")
	flags.StringVar(&opts.Repository, "repository", "", "repository name (overrides AGQ_REPOSITORY)")
	flags.StringVar(&opts.StatePath, "state", "", "state file path (overrides AGQ_STATE)")
	flags.BoolVar(&opts.Metrics, "metrics", false, "write request metrics to stderr in Prometheus text format")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSessionCommand(opts))
	cmd.AddCommand(NewCommitCommand(opts))
	cmd.AddCommand(NewRollbackCommand(opts))
	cmd.AddCommand(NewGeneratorCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	withMetrics(opts, cmd)

	return cmd
}
