package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"firestige.xyz/tagger/internal/config"
	"firestige.xyz/tagger/internal/metrics"
	"firestige.xyz/tagger/internal/pipeline"
	"firestige.xyz/tagger/internal/source/file"
)

// tagCmd runs a full tagging pass and feeds the reporters.
var tagCmd = &cobra.Command{
	Use:   "tag <trace>",
	Short: "Tag every packet of a capture file",
	Long: `Tag every packet of a pcap or pcapng file and hand the results to the
configured reporters in capture order.

Examples:
  tagger tag smtp.pcap
  tagger tag --only-tagged --reporter summary http.pcap
  tagger tag --filter "port 21" --metrics mixed.pcapng`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTag(cmd.Context(), cfg, args[0], tagOpts, cmd.OutOrStdout())
	},
}

type tagOptions struct {
	filter     string
	workers    int
	onlyTagged bool
	reporters  []string
	metrics    bool
}

var tagOpts tagOptions

func init() {
	tagCmd.Flags().StringVar(&tagOpts.filter, "filter", "",
		"pre-filter expression (overrides capture.filter)")
	tagCmd.Flags().IntVarP(&tagOpts.workers, "workers", "w", -1,
		"tagging workers, 0 for one per CPU (overrides pipeline.workers)")
	tagCmd.Flags().BoolVar(&tagOpts.onlyTagged, "only-tagged", false,
		"report tagged packets only")
	tagCmd.Flags().StringSliceVarP(&tagOpts.reporters, "reporter", "r", nil,
		"reporters to use with default settings (overrides reporters)")
	tagCmd.Flags().BoolVar(&tagOpts.metrics, "metrics", false,
		"print tagging metrics when done")
}

func runTag(ctx context.Context, c *config.Config, path string, opts tagOptions, out io.Writer) error {
	filter := c.Capture.Filter
	if opts.filter != "" {
		filter = opts.filter
	}
	workers := c.Pipeline.Workers
	if opts.workers >= 0 {
		workers = opts.workers
	}
	reporterCfgs := c.Reporters
	if len(opts.reporters) > 0 {
		reporterCfgs = make([]config.ReporterConfig, 0, len(opts.reporters))
		for _, name := range opts.reporters {
			reporterCfgs = append(reporterCfgs, config.ReporterConfig{Name: name})
		}
	}

	src, err := file.Open(path, file.WithFilter(filter))
	if err != nil {
		return err
	}
	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	reporters, err := newReporters(reporterCfgs)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	p, err := pipeline.NewBuilder().
		WithEngine(engine).
		WithSource(src).
		WithReporters(reporters...).
		WithWorkers(workers).
		WithOnlyTagged(c.Pipeline.OnlyTagged || opts.onlyTagged).
		WithMetrics(metrics.New(reg)).
		Build()
	if err != nil {
		return err
	}

	if _, err := p.Run(ctx); err != nil {
		return err
	}

	if opts.metrics {
		return writeMetrics(out, reg)
	}
	return nil
}

// writeMetrics prints counters and histogram sample counts, one per line.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			var pairs []string
			for _, l := range m.GetLabel() {
				pairs = append(pairs, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			name := mf.GetName()
			if len(pairs) > 0 {
				name += "{" + strings.Join(pairs, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				lines = append(lines, fmt.Sprintf("%s_count %d", name, m.GetHistogram().GetSampleCount()))
			}
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
