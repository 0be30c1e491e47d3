package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/tagger/internal/config"
	"firestige.xyz/tagger/internal/core"
	"firestige.xyz/tagger/internal/source/file"
	"firestige.xyz/tagger/internal/tagger"
)

var countCmd = &cobra.Command{
	Use:   "count <trace>",
	Short: "Count tagged packets by family and role",
	Long: `Run a tagging pass over a capture file and count the tagged packets.

With --family and/or --role only the matching count is printed, as a bare
number. Without them a row per family and role is printed.

Examples:
  tagger count smtp.pcap --family smtp --role request
  tagger count http.pcap`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCount(cmd.Context(), cfg, args[0], countOpts, cmd.OutOrStdout())
	},
}

type countOptions struct {
	family string
	role   string
	filter string
}

var countOpts countOptions

func init() {
	countCmd.Flags().StringVar(&countOpts.family, "family", "", "protocol family: smtp, http or ftp")
	countCmd.Flags().StringVar(&countOpts.role, "role", "", "message role: request or response")
	countCmd.Flags().StringVar(&countOpts.filter, "filter", "", "pre-filter expression (overrides capture.filter)")
}

func runCount(ctx context.Context, c *config.Config, path string, opts countOptions, out io.Writer) error {
	var sel tagger.Selector
	if opts.family != "" {
		f, err := core.ParseFamily(opts.family)
		if err != nil {
			return err
		}
		sel.Family = f
	}
	if opts.role != "" {
		r, err := core.ParseRole(opts.role)
		if err != nil {
			return err
		}
		sel.Role = r
	}

	filter := c.Capture.Filter
	if opts.filter != "" {
		filter = opts.filter
	}
	src, err := file.Open(path, file.WithFilter(filter))
	if err != nil {
		return err
	}
	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	results, err := engine.TagAll(ctx, src)
	if err != nil {
		return err
	}

	if sel != (tagger.Selector{}) {
		_, err := fmt.Fprintln(out, results.Count(sel))
		return err
	}

	fmt.Fprintf(out, "%-8s %-10s %s\n", "FAMILY", "ROLE", "COUNT")
	for _, f := range core.Families() {
		for _, r := range core.Roles() {
			fmt.Fprintf(out, "%-8s %-10s %d\n", f, r, results.Count(tagger.Selector{Family: f, Role: r}))
		}
	}
	_, err = fmt.Fprintf(out, "%-8s %-10s %d\n", "total", "", results.Tagged())
	return err
}
