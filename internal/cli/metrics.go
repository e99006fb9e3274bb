package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

// writeMetrics writes every metric family in g in the Prometheus text
// exposition format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// withMetrics wraps the RunE of cmd and its descendants so that, with
// --metrics, the default registry is dumped to stderr after the command
// runs, whether or not it failed.
func withMetrics(opts *RootOptions, cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		withMetrics(opts, c)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if !opts.Metrics {
			return err
		}
		if werr := writeMetrics(cmd.ErrOrStderr(), prometheus.DefaultGatherer); werr != nil && err == nil {
			return werr
		}
		return err
	}
}
