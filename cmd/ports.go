package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/tagger/internal/config"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the port to protocol family bindings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPorts(cfg, cmd.OutOrStdout())
	},
}

func runPorts(c *config.Config, out io.Writer) error {
	ports, err := newPorts(c)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%-6s %s\n", "PORT", "FAMILY")
	for _, b := range ports.Bindings() {
		if _, err := fmt.Fprintf(out, "%-6d %s\n", b.Port, b.Family); err != nil {
			return err
		}
	}
	return nil
}
