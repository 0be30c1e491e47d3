package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/tagger/internal/config"
	"firestige.xyz/tagger/internal/source/file"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without reading any capture.

Checks log settings, port bindings, the capture filter expression and
that every configured reporter exists and accepts its settings.

Examples:
  tagger validate -f tagger.yml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(validateConfigFile, cmd.OutOrStdout())
	},
}

var validateConfigFile string

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFile, "file", "f", "",
		"configuration file to validate (required)")
	_ = validateCmd.MarkFlagRequired("file")
}

func runValidate(path string, out io.Writer) error {
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}
	ports, err := newPorts(c)
	if err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}
	if _, err := file.CompileFilter(c.Capture.Filter); err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}
	if _, err := newReporters(c.Reporters); err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}

	_, err = fmt.Fprintf(out, "VALID: %d port binding(s), %d reporter(s)\n",
		len(ports.Bindings()), len(c.Reporters))
	return err
}
